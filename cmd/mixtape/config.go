package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL string
	Addr        string
	CORSOrigin  string

	LogLevel  string
	LogFormat string

	SpotifyClientID     string
	SpotifyClientSecret string

	IdentityBaseURL string
	IdentityAPIKey  string
	IdentitySecret  string
	IdentityIssuer  string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	StripeSuccessURL    string
	StripeCancelURL     string
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	cfg := Config{
		DatabaseURL: dsn,
		Addr:        fmt.Sprintf(":%s", envOrDefault("PORT", "8080")),
		CORSOrigin:  envOrDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),

		IdentityBaseURL: os.Getenv("IDENTITY_BASE_URL"),
		IdentityAPIKey:  os.Getenv("IDENTITY_API_KEY"),
		IdentitySecret:  os.Getenv("IDENTITY_SECRET"),
		IdentityIssuer:  envOrDefault("IDENTITY_ISSUER", "mixtape"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceID:       os.Getenv("STRIPE_PRICE_ID"),
		StripeSuccessURL:    envOrDefault("STRIPE_SUCCESS_URL", "http://localhost:5173/billing/success"),
		StripeCancelURL:     envOrDefault("STRIPE_CANCEL_URL", "http://localhost:5173/billing/cancel"),
	}

	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		return Config{}, errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET env vars are required")
	}
	if cfg.IdentitySecret == "" {
		return Config{}, errors.New("IDENTITY_SECRET env var is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
