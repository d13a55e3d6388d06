package brick

import (
	"testing"
	"time"
)

func TestSubscriptionRequest_Values(t *testing.T) {
	reg := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	req := SubscriptionRequest{
		Token:          "tok_1",
		Fingerprint:    "fp_1",
		Amount:         2999,
		Currency:       "USD",
		Email:          "buyer@example.com",
		Description:    "Acme Shop - Order #1001",
		Plan:           "order-1",
		Period:         "month",
		PeriodDuration: 1,
		Trial: &Trial{
			Amount:         500,
			Currency:       "USD",
			Period:         "day",
			PeriodDuration: 14,
		},
		Profile: Profile{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Country:      "GB",
			RegisteredAt: &reg,
		},
		UID: "user-1",
	}

	v := req.Values()

	want := map[string]string{
		"token":                      "tok_1",
		"fingerprint":                "fp_1",
		"amount":                     "29.99",
		"currency":                   "USD",
		"email":                      "buyer@example.com",
		"description":                "Acme Shop - Order #1001",
		"plan":                       "order-1",
		"period":                     "month",
		"period_duration":            "1",
		"trial[amount]":              "5.00",
		"trial[currency]":            "USD",
		"trial[period]":              "day",
		"trial[period_duration]":     "14",
		"customer[firstname]":        "Ada",
		"customer[lastname]":         "Lovelace",
		"customer[country]":          "GB",
		"history[registration_date]": "1685577600",
		"custom[integration_module]": "brickgate",
		"uid":                        "user-1",
	}
	for key, val := range want {
		if got := v.Get(key); got != val {
			t.Errorf("%s = %q, want %q", key, got, val)
		}
	}

	// Empty profile fields stay off the wire.
	for _, key := range []string{"customer[address]", "customer[city]", "customer[state]", "customer[zip]"} {
		if _, ok := v[key]; ok {
			t.Errorf("%s present for empty field", key)
		}
	}
}

func TestSubscriptionRequest_Values_NoTrial(t *testing.T) {
	req := SubscriptionRequest{Token: "tok_1", Amount: 100, Period: "month", PeriodDuration: 1}
	v := req.Values()

	if _, ok := v["trial[amount]"]; ok {
		t.Error("trial fields present without trial")
	}
}

func TestChargeRequest_Values(t *testing.T) {
	req := ChargeRequest{
		Token:       "tok_1",
		Fingerprint: "fp_1",
		Amount:      151,
		Currency:    "EUR",
		Email:       "buyer@example.com",
		Description: "Acme Shop - Order #7",
		UID:         "203.0.113.9",
	}

	v := req.Values()

	if got := v.Get("amount"); got != "1.51" {
		t.Errorf("amount = %q, want 1.51", got)
	}
	if got := v.Get("custom[integration_module]"); got != "brickgate" {
		t.Errorf("integration module = %q", got)
	}
	for _, key := range []string{"plan", "period", "period_duration"} {
		if _, ok := v[key]; ok {
			t.Errorf("%s present on charge payload", key)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{100, "1.00"},
		{999, "9.99"},
		{2999, "29.99"},
		{100000, "1000.00"},
		{-500, "-5.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.minor); got != tc.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tc.minor, got, tc.want)
		}
	}
}
