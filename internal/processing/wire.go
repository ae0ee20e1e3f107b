package processing

import (
	"omc/internal/config"
	"omc/internal/external"
	"omc/internal/notify"
	"omc/internal/queries"
	"omc/internal/scenarios"
	"omc/internal/telemetry"
	"omc/internal/types"
)

// Components is the processing core assembled from configuration.
type Components struct {
	Orchestrator *Orchestrator
	Sender       notify.Sender
	Reporter     telemetry.Reporter
	Adapters     queries.Adapters
}

// NewComponents assembles the processing core. Adapter versions are chosen
// here from configuration and never inside a workflow.
func NewComponents(cfg *config.Config, registry *external.ClientRegistry, metrics Metrics, logger types.Logger) (*Components, error) {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = types.NopLogger{}
	}

	base := queries.NewBase(registry.Network, logger.With("component", "queries"))
	adapters, err := queries.NewAdapters(base, queries.Settings{
		ZaakVersion:  types.APIVersion(cfg.ZGW.Version),
		KlantVersion: types.APIVersion(cfg.Klant.Version),
		OpenZaakURL:  "https://" + cfg.ZGW.Domain,
		KlantURL:     "https://" + cfg.Klant.Domain,
	})
	if err != nil {
		return nil, err
	}

	sender := notify.NewNotifySender(registry.Notify, logger.With("component", "notify"))
	reporter := telemetry.NewKlantReporter(adapters.Klant, telemetry.Settings{
		Enabled:   cfg.Telemetry.Enabled,
		SourceOrg: cfg.Telemetry.SourceOrg,
	}, logger.With("component", "telemetry"))

	settings := scenarios.SettingsFromConfig(cfg)
	dispatcher := scenarios.NewDispatcher(sender, reporter, settings.Templates, metrics, logger)
	resolver := scenarios.NewResolver(scenarios.NewStrategies(dispatcher, settings), settings.ObjectTypes)

	return &Components{
		Orchestrator: NewOrchestrator(resolver, adapters, cfg.ZGW.InitiatorRole, metrics, logger),
		Sender:       sender,
		Reporter:     reporter,
		Adapters:     adapters,
	}, nil
}
