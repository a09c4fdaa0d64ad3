package billing

import (
	"context"
	"errors"
)

// EventCheckoutCompleted is the event type emitted when a checkout session
// finishes successfully.
const EventCheckoutCompleted = "checkout.session.completed"

var (
	// ErrInvalidSignature signals the webhook payload failed signature
	// verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrUnavailable signals the payment provider could not be reached.
	ErrUnavailable = errors.New("payment provider unavailable")
)

// Event is a verified webhook event from the payment provider.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the object the event refers to.
type EventData struct {
	Object EventObject `json:"object"`
}

// EventObject is the checkout session embedded in an event. Metadata carries
// the application user id the session was created for.
type EventObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// Gateway defines the payment operations the application consumes.
type Gateway interface {
	// CreateCheckoutSession starts a subscription checkout for the user and
	// returns the hosted checkout URL.
	CreateCheckoutSession(ctx context.Context, userID string) (string, error)
	// VerifyWebhook checks the event signature and returns the decoded event.
	VerifyWebhook(payload []byte, sigHeader string) (*Event, error)
}
