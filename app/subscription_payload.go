package app

import (
	"fmt"
	"math"

	"github.com/merchantkit/brickgate/domain/brick"
	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/domain/subscription"
)

const secondsPerDay = 86400

// subscriptionRequest builds the provider payload for the
// subscription-creation call. The order ID doubles as the plan identifier:
// each order defines its own ad hoc plan.
func (s *PaymentService) subscriptionRequest(o order.Order, sub subscription.Subscription, bundle TokenBundle) (brick.SubscriptionRequest, error) {
	if bundle.Token == "" || bundle.Fingerprint == "" {
		return brick.SubscriptionRequest{}, fmt.Errorf("%w: token bundle missing from request", ErrValidation)
	}

	return brick.SubscriptionRequest{
		Token:          bundle.Token,
		Fingerprint:    bundle.Fingerprint,
		Amount:         sub.RecurringTotal,
		Currency:       o.Currency,
		Email:          o.Email,
		Description:    fmt.Sprintf("%s - Order #%s", s.site().SiteName, numberFor(o)),
		Plan:           o.ID,
		Period:         string(sub.Period),
		PeriodDuration: sub.Interval,
		Trial:          trialTerms(o, sub),
		Profile:        profileFor(o),
		UID:            uidFor(o, bundle),
	}, nil
}

// chargeRequest builds the provider payload for the one-time charge call.
func (s *PaymentService) chargeRequest(o order.Order, bundle TokenBundle) (brick.ChargeRequest, error) {
	if bundle.Token == "" || bundle.Fingerprint == "" {
		return brick.ChargeRequest{}, fmt.Errorf("%w: token bundle missing from request", ErrValidation)
	}

	return brick.ChargeRequest{
		Token:       bundle.Token,
		Fingerprint: bundle.Fingerprint,
		Amount:      o.Total,
		Currency:    o.Currency,
		Email:       o.Email,
		Description: fmt.Sprintf("%s - Order #%s", s.site().SiteName, numberFor(o)),
		Profile:     profileFor(o),
		UID:         uidFor(o, bundle),
	}, nil
}

// trialTerms decides whether the first payment is billed under trial terms
// distinct from steady-state recurring billing.
//
// With an explicit trial end, the first invoice runs for the day-rounded
// span between the order date and the trial end, priced at the order total.
// Without one, a pseudo-trial is synthesized only when the order total
// differs from the recurring total (signup fees, bundled one-time goods):
// the first invoice is then billed once under the subscription's own
// period/interval before regular recurring billing resumes.
func trialTerms(o order.Order, sub subscription.Subscription) *brick.Trial {
	period := sub.TrialPeriod
	duration := 0

	if sub.HasTrial() {
		// Half rounds away from zero.
		duration = int(math.Round(sub.TrialEnd.Sub(o.CreatedAt).Seconds() / secondsPerDay))
	} else {
		if o.Total == sub.RecurringTotal {
			// Pure standard recurring order, no trial fields.
			return nil
		}
		period = sub.Period
		duration = sub.Interval
	}

	return &brick.Trial{
		Amount:         o.Total,
		Currency:       o.Currency,
		Period:         string(period),
		PeriodDuration: duration,
	}
}

// profileFor maps the order's billing profile into the provider's customer
// history fields.
func profileFor(o order.Order) brick.Profile {
	return brick.Profile{
		FirstName:    o.Customer.FirstName,
		LastName:     o.Customer.LastName,
		Address:      o.Customer.Address,
		City:         o.Customer.City,
		State:        o.Customer.State,
		Zip:          o.Customer.Zip,
		Country:      o.Customer.Country,
		RegisteredAt: o.Customer.RegisteredAt,
	}
}

// uidFor picks the provider's fraud/velocity tracking key: the
// authenticated user when present, otherwise the caller's network address.
func uidFor(o order.Order, bundle TokenBundle) string {
	if o.UserID != "" {
		return o.UserID
	}
	return bundle.RemoteAddr
}
