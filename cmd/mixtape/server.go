package main

import (
	"database/sql"
	"net/http"

	"mixtape/internal/app/library"
	"mixtape/internal/app/payments"
	"mixtape/internal/app/playlists"
	"mixtape/internal/app/users"
	"mixtape/internal/billing"
	"mixtape/internal/catalog"
	"mixtape/internal/http/middleware"
	"mixtape/internal/httpapi"
	"mixtape/internal/identity"
	"mixtape/internal/search"
	"mixtape/internal/store"
)

func newHTTPHandler(cfg Config, db *sql.DB, dataStore *store.Store) http.Handler {
	catalogClient := catalog.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	identityClient := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityAPIKey, cfg.IdentitySecret, cfg.IdentityIssuer)
	paymentGateway := billing.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePriceID, cfg.StripeSuccessURL, cfg.StripeCancelURL)

	userSvc := users.New(dataStore, catalogClient, identityClient)
	librarySvc := library.New(dataStore)
	playlistSvc := playlists.New(dataStore, catalogClient)
	paymentSvc := payments.New(paymentGateway, userSvc)

	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/playlists/search", search.NewHandler(search.NewPGStore(db)))
	mux.Handle("/", httpapi.New(userSvc, librarySvc, playlistSvc, paymentSvc, catalogClient).Routes())

	handler := middleware.CORS(cfg.CORSOrigin)(mux)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}
