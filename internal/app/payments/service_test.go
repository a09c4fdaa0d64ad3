package payments

import (
	"context"
	"errors"
	"testing"

	"mixtape/internal/billing"
	"mixtape/internal/store"
)

type fakeGateway struct {
	checkoutURL string
	checkoutErr error
	event       *billing.Event
	verifyErr   error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, _ string) (string, error) {
	return f.checkoutURL, f.checkoutErr
}

func (f *fakeGateway) VerifyWebhook(_ []byte, _ string) (*billing.Event, error) {
	return f.event, f.verifyErr
}

type fakeUsers struct {
	activations []string
	err         error
}

func (f *fakeUsers) ActivatePremium(_ context.Context, userID, eventID string) error {
	if f.err != nil {
		return f.err
	}
	f.activations = append(f.activations, userID+"/"+eventID)
	return nil
}

func checkoutEvent(id, userID string) *billing.Event {
	return &billing.Event{
		ID:   id,
		Type: billing.EventCheckoutCompleted,
		Data: billing.EventData{Object: billing.EventObject{
			ID:       "cs_1",
			Metadata: map[string]string{"user_id": userID},
		}},
	}
}

func TestCheckoutReturnsURL(t *testing.T) {
	svc := New(&fakeGateway{checkoutURL: "https://pay.example/cs_1"}, &fakeUsers{})

	url, err := svc.Checkout(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if url != "https://pay.example/cs_1" {
		t.Fatalf("url = %q", url)
	}
}

func TestHandleWebhookActivatesPremium(t *testing.T) {
	users := &fakeUsers{}
	svc := New(&fakeGateway{event: checkoutEvent("evt-1", "u1")}, users)

	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(users.activations) != 1 || users.activations[0] != "u1/evt-1" {
		t.Fatalf("activations = %v", users.activations)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	users := &fakeUsers{}
	svc := New(&fakeGateway{verifyErr: billing.ErrInvalidSignature}, users)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	if !errors.Is(err, billing.ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
	if len(users.activations) != 0 {
		t.Fatalf("activations = %v, want none", users.activations)
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	users := &fakeUsers{}
	event := &billing.Event{ID: "evt-2", Type: "invoice.paid"}
	svc := New(&fakeGateway{event: event}, users)

	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(users.activations) != 0 {
		t.Fatalf("activations = %v, want none", users.activations)
	}
}

func TestHandleWebhookAcksUnknownUser(t *testing.T) {
	users := &fakeUsers{err: store.ErrUserNotFound}
	svc := New(&fakeGateway{event: checkoutEvent("evt-4", "ghost")}, users)

	// Redelivering cannot resolve an unknown user; the provider must not
	// see an error and retry forever.
	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
}

func TestHandleWebhookPropagatesActivationFailure(t *testing.T) {
	users := &fakeUsers{err: errors.New("connection reset")}
	svc := New(&fakeGateway{event: checkoutEvent("evt-5", "u1")}, users)

	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err == nil {
		t.Fatal("HandleWebhook swallowed a transient activation failure")
	}
}

func TestHandleWebhookMissingUserMetadata(t *testing.T) {
	users := &fakeUsers{}
	event := &billing.Event{ID: "evt-3", Type: billing.EventCheckoutCompleted}
	svc := New(&fakeGateway{event: event}, users)

	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(users.activations) != 0 {
		t.Fatalf("activations = %v, want none", users.activations)
	}
}
