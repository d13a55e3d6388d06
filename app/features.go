package app

import "github.com/merchantkit/brickgate/domain/subscription"

// QueryFeatureSupport answers the platform's capability query for a
// subscription. The policy only applies when the subscription is configured
// to renew through this gateway; otherwise the caller's existing answer
// passes through untouched.
//
// Scheduled payments are never supported: all recurring charging is
// provider-initiated.
func (s *PaymentService) QueryFeatureSupport(current bool, feature subscription.Feature, sub subscription.Subscription) bool {
	if sub.PaymentMethod != GatewayID {
		return current
	}

	if feature == subscription.FeatureScheduledPayments {
		return false
	}
	if containsFeature(subscription.CoreFeatures, feature) {
		return true
	}
	if containsFeature(subscription.ReferenceTransactionFeatures, feature) {
		return true
	}
	return current
}

func containsFeature(features []subscription.Feature, feature subscription.Feature) bool {
	for _, f := range features {
		if f == feature {
			return true
		}
	}
	return false
}
