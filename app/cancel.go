package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/domain/subscription"
	"github.com/merchantkit/brickgate/ports"
)

// OnSubscriptionCancelled propagates a platform-side cancellation to the
// provider. The stored transaction key on the originating order identifies
// the provider resource; without one the subscription never successfully
// charged through this gateway and the event is an idempotent no-op.
func (s *PaymentService) OnSubscriptionCancelled(ctx context.Context, sub subscription.Subscription) error {
	key, err := s.orders.GetMeta(ctx, sub.OrderID, order.MetaTransactionID)
	if errors.Is(err, ports.ErrNotFound) {
		s.logger.Info().Str("subscription_id", sub.ID).Str("order_id", sub.OrderID).
			Msg("no provider transaction for cancelled subscription")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction key: %w", err)
	}
	if key == "" {
		return nil
	}

	if err := s.provider.CancelSubscription(ctx, key); err != nil {
		return fmt.Errorf("cancel provider subscription %s: %w", key, err)
	}

	s.logger.Info().Str("subscription_id", sub.ID).Str("provider_subscription_id", key).
		Msg("provider subscription cancelled")
	return nil
}
