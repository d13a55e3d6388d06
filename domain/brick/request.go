// Package brick defines the wire model for the Brick tokenized-card API:
// typed request structs with an explicit flattening step to the provider's
// bracketed form encoding, and response parsing.
package brick

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Object type tags returned by the provider.
const (
	ObjectSubscription = "subscription"
	ObjectCharge       = "charge"
)

// IntegrationModule is the fixed custom tag identifying the source platform
// on every outbound request.
const IntegrationModule = "brickgate"

// Trial describes first-cycle billing terms distinct from the steady-state
// recurring terms.
type Trial struct {
	Amount         int64 // minor units
	Currency       string
	Period         string
	PeriodDuration int
}

// Profile carries optional customer history fields merged into payloads for
// the provider's risk scoring.
type Profile struct {
	FirstName    string
	LastName     string
	Address      string
	City         string
	State        string
	Zip          string
	Country      string
	RegisteredAt *time.Time
}

// SubscriptionRequest is the payload for the subscription-creation call.
type SubscriptionRequest struct {
	Token          string
	Fingerprint    string
	Amount         int64 // minor units
	Currency       string
	Email          string
	Description    string
	Plan           string // ad hoc plan, one per order
	Period         string
	PeriodDuration int
	Trial          *Trial
	Profile        Profile
	UID            string
}

// Values flattens the request to the provider's form encoding. Nested fields
// use bracketed keys: trial[amount], custom[integration_module],
// history[registration_date].
func (r SubscriptionRequest) Values() url.Values {
	v := url.Values{}
	v.Set("token", r.Token)
	v.Set("fingerprint", r.Fingerprint)
	v.Set("amount", FormatAmount(r.Amount))
	v.Set("currency", r.Currency)
	v.Set("email", r.Email)
	v.Set("description", r.Description)
	v.Set("plan", r.Plan)
	v.Set("period", r.Period)
	v.Set("period_duration", strconv.Itoa(r.PeriodDuration))
	if r.Trial != nil {
		v.Set("trial[amount]", FormatAmount(r.Trial.Amount))
		v.Set("trial[currency]", r.Trial.Currency)
		v.Set("trial[period]", r.Trial.Period)
		v.Set("trial[period_duration]", strconv.Itoa(r.Trial.PeriodDuration))
	}
	r.Profile.apply(v)
	v.Set("custom[integration_module]", IntegrationModule)
	v.Set("uid", r.UID)
	return v
}

// ChargeRequest is the payload for the one-time charge call.
type ChargeRequest struct {
	Token       string
	Fingerprint string
	Amount      int64 // minor units
	Currency    string
	Email       string
	Description string
	Profile     Profile
	UID         string
}

// Values flattens the request to the provider's form encoding.
func (r ChargeRequest) Values() url.Values {
	v := url.Values{}
	v.Set("token", r.Token)
	v.Set("fingerprint", r.Fingerprint)
	v.Set("amount", FormatAmount(r.Amount))
	v.Set("currency", r.Currency)
	v.Set("email", r.Email)
	v.Set("description", r.Description)
	r.Profile.apply(v)
	v.Set("custom[integration_module]", IntegrationModule)
	v.Set("uid", r.UID)
	return v
}

func (p Profile) apply(v url.Values) {
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("customer[firstname]", p.FirstName)
	set("customer[lastname]", p.LastName)
	set("customer[address]", p.Address)
	set("customer[city]", p.City)
	set("customer[state]", p.State)
	set("customer[zip]", p.Zip)
	set("customer[country]", p.Country)
	if p.RegisteredAt != nil && !p.RegisteredAt.IsZero() {
		v.Set("history[registration_date]", strconv.FormatInt(p.RegisteredAt.Unix(), 10))
	}
}

// FormatAmount renders minor units as the decimal string the provider
// expects, e.g. 999 -> "9.99".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
