package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// signatureTolerance bounds how old a signed webhook timestamp may be.
// Providers redeliver events, but a signature far in the past is suspect.
const signatureTolerance = 5 * time.Minute

// StripeClient implements Gateway against the Stripe REST API.
type StripeClient struct {
	secretKey     string
	webhookSecret string
	priceID       string
	successURL    string
	cancelURL     string
	baseURL       string
	httpClient    *http.Client
	now           func() time.Time
}

// NewStripeClient creates a Stripe payment client.
func NewStripeClient(secretKey, webhookSecret, priceID, successURL, cancelURL string) *StripeClient {
	return &StripeClient{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		priceID:       priceID,
		successURL:    successURL,
		cancelURL:     cancelURL,
		baseURL:       "https://api.stripe.com",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession starts a subscription-mode checkout session carrying
// the user id in metadata, so the webhook can attribute the payment.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	data := url.Values{}
	data.Set("mode", "subscription")
	data.Set("success_url", c.successURL+"?session_id={CHECKOUT_SESSION_ID}")
	data.Set("cancel_url", c.cancelURL)
	data.Set("line_items[0][price]", c.priceID)
	data.Set("line_items[0][quantity]", "1")
	data.Set("metadata[user_id]", userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create session request: %w", err)
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: %s - %s", ErrUnavailable, resp.Status, string(body))
	}

	var session checkoutSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("%w: session has no checkout url", ErrUnavailable)
	}
	return session.URL, nil
}

// VerifyWebhook validates the provider signature header, which has the form
// "t=<unix>,v1=<hex hmac>[,v1=...]". The HMAC-SHA256 is computed over
// "<unix>.<payload>" with the webhook secret.
func (c *StripeClient) VerifyWebhook(payload []byte, sigHeader string) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	age := c.now().Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	verified := false
	for _, sig := range signatures {
		raw, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(raw, expected) {
			verified = true
			break
		}
	}
	if !verified {
		return nil, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &event, nil
}

func parseSignatureHeader(header string) (int64, []string, error) {
	var (
		timestamp  int64
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: missing timestamp or signature", ErrInvalidSignature)
	}
	return timestamp, signatures, nil
}
