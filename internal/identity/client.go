package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Client talks to the identity provider. Credential verification happens
// locally against the provider's signing secret; account creation is a call
// to the provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	secret     []byte
	issuer     string
	httpClient *http.Client
}

// NewClient builds an identity Client. The secret must match the key the
// provider signs id tokens with.
func NewClient(baseURL, apiKey, secret, issuer string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		secret:  []byte(secret),
		issuer:  issuer,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type idClaims struct {
	jwt.RegisteredClaims
}

// Verify parses the bearer credential and returns the subject it was issued
// for. Expired, malformed, or foreign tokens fail with ErrInvalidCredential.
func (c *Client) Verify(ctx context.Context, credential string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, err := jwt.ParseWithClaims(
		credential,
		&idClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(*idClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidCredential
	}
	return claims.Subject, nil
}

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createAccountResponse struct {
	SubjectID string `json:"subject_id"`
}

// CreateAccount registers a new account at the provider and returns the
// subject id it assigned.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(createAccountRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("marshal account request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/accounts", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create account request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusConflict:
		return "", ErrAccountExists
	default:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: %s - %s", ErrUnavailable, resp.Status, string(body))
	}

	var created createAccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode account response: %w", err)
	}
	if created.SubjectID == "" {
		return "", fmt.Errorf("%w: provider returned empty subject id", ErrUnavailable)
	}
	return created.SubjectID, nil
}
