package payments

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"mixtape/internal/billing"
	"mixtape/internal/store"
)

// Users is the slice of the user service the payment flow needs.
type Users interface {
	ActivatePremium(ctx context.Context, userID, eventID string) error
}

// Service handles checkout creation and webhook processing.
type Service interface {
	Checkout(ctx context.Context, userID string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

type service struct {
	gateway billing.Gateway
	users   Users
}

// New wires a payment Service over the given gateway.
func New(gateway billing.Gateway, users Users) Service {
	return &service{gateway: gateway, users: users}
}

// Checkout starts a hosted checkout session and returns its URL.
func (s *service) Checkout(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.gateway.CreateCheckoutSession(ctx, userID)
}

// HandleWebhook verifies the provider signature, then applies the event.
// Events other than completed checkouts are acknowledged and dropped.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event, err := s.gateway.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return err
	}

	if event.Type != billing.EventCheckoutCompleted {
		log.Debug().Str("event_id", event.ID).Str("event_type", event.Type).Msg("ignoring webhook event")
		return nil
	}

	userID := event.Data.Object.Metadata["user_id"]
	if userID == "" {
		log.Warn().Str("event_id", event.ID).Msg("checkout event missing user metadata")
		return nil
	}

	if err := s.users.ActivatePremium(ctx, userID, event.ID); err != nil {
		// An unknown user cannot become known by redelivering the same
		// event; acknowledge it like missing metadata.
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn().Str("event_id", event.ID).Str("user_id", userID).Msg("checkout event for unknown user")
			return nil
		}
		return err
	}
	return nil
}
