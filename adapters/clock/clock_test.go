package clock

import (
	"testing"
	"time"
)

func TestFrozen(t *testing.T) {
	start := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	c := NewFrozen(start)

	if !c.Now().Equal(start) {
		t.Errorf("now = %v", c.Now())
	}
	c.Advance(time.Hour)
	if !c.Now().Equal(start.Add(time.Hour)) {
		t.Errorf("after advance = %v", c.Now())
	}
}

func TestReal(t *testing.T) {
	before := time.Now()
	got := Real{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("now = %v outside [%v, %v]", got, before, after)
	}
}
