package external

import (
	"log/slog"
	"net/http"
	"time"

	"omc/internal/config"
	"omc/internal/types"
)

// ---------------------------------------------------------------------------
// Client Registry
//
// Central factory that instantiates the outbound clients from configuration.
// In test/local mode the delivery provider is replaced by a stub; the
// registers are always real since local setups run them in containers.
// ---------------------------------------------------------------------------

// ClientRegistry holds the outbound clients.
type ClientRegistry struct {
	Network NetworkService
	Notify  NotifyProvider
}

// NewClientRegistry initializes all outbound clients.
func NewClientRegistry(cfg *config.Config, logger *slog.Logger) (*ClientRegistry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: cfg.Server.UpstreamTimeout + time.Second}
	network := NewHTTPNetworkService(
		httpClient,
		NetworkTargets(cfg),
		cfg.Server.UpstreamTimeout,
		logger.With("client", "network"),
	)

	if cfg.UsesStubs() {
		logger.Info("initializing delivery provider in STUB mode",
			"is_test_mode", cfg.IsTestMode,
			"environment", cfg.Environment,
		)
		return &ClientRegistry{
			Network: network,
			Notify:  NewStubNotifyProvider(logger.With("mode", "stub")),
		}, nil
	}

	logger.Info("initializing delivery provider in PRODUCTION mode",
		"environment", cfg.Environment,
	)
	notify, err := NewNotifyClient(&http.Client{Timeout: 10 * time.Second}, NotifyClientConfig{
		APIKey:  cfg.Notify.APIKey,
		BaseURL: cfg.Notify.BaseURL,
		Logger:  logger.With("client", "notifynl"),
	})
	if err != nil {
		return nil, err
	}

	return &ClientRegistry{
		Network: network,
		Notify:  notify,
	}, nil
}

// NetworkTargets derives the domain and credentials of every register.
// Telemetry is written to OpenKlant with the OpenKlant credentials.
func NetworkTargets(cfg *config.Config) map[types.ClientType]Target {
	zgw := NewZGWAuthorizer(cfg.ZGW.ClientID, cfg.ZGW.Secret, cfg.ZGW.UserID, cfg.ZGW.UserName)
	klant := TokenAuthorizer{Token: cfg.Klant.Token}

	return map[types.ClientType]Target{
		types.ClientOpenZaak:    {Domain: cfg.ZGW.Domain, Authorizer: zgw},
		types.ClientBesluiten:   {Domain: cfg.ZGW.BesluitenHost(), Authorizer: zgw},
		types.ClientOpenKlant:   {Domain: cfg.Klant.Domain, Authorizer: klant},
		types.ClientTelemetry:   {Domain: cfg.Klant.Domain, Authorizer: klant},
		types.ClientObjecten:    {Domain: cfg.Objecten.Domain, Authorizer: TokenAuthorizer{Token: cfg.Objecten.Token}},
		types.ClientObjectTypen: {Domain: cfg.ObjectTypen.Domain, Authorizer: TokenAuthorizer{Token: cfg.ObjectTypen.Token}},
	}
}
