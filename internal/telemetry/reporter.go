// Package telemetry writes completion feedback to the party register after
// every delivery attempt. Feedback is best effort: every error it returns is
// soft and must only be logged by the caller.
package telemetry

import (
	"context"
	"time"

	"omc/internal/queries"
	"omc/internal/types"
)

// Completion describes one delivery attempt.
type Completion struct {
	Party     types.CommonPartyData
	CaseURI   string
	Method    types.NotifyMethod
	Message   string
	Succeeded bool
	// SourceOrg overrides the configured source organization when set.
	SourceOrg string
}

// Reporter reports completed delivery attempts.
type Reporter interface {
	ReportCompletion(ctx context.Context, c Completion) (string, error)
}

// Settings controls the feedback writer.
type Settings struct {
	Enabled   bool
	SourceOrg string
}

// KlantReporter writes feedback through the party register adapter.
type KlantReporter struct {
	klant    queries.QueryKlant
	settings Settings
	logger   types.Logger
	now      func() time.Time
}

// NewKlantReporter creates a KlantReporter.
func NewKlantReporter(klant queries.QueryKlant, settings Settings, logger types.Logger) *KlantReporter {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &KlantReporter{
		klant:    klant,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// ReportCompletion registers the attempt and returns the URI of the feedback
// record. A disabled reporter returns an empty URI and no error.
func (r *KlantReporter) ReportCompletion(ctx context.Context, c Completion) (string, error) {
	if !r.settings.Enabled {
		return "", nil
	}
	if c.Party.URI == "" {
		return "", types.NewAppError(types.ErrCodeTelemetryFailed, "party has no register URI", nil)
	}

	sourceOrg := c.SourceOrg
	if sourceOrg == "" {
		sourceOrg = r.settings.SourceOrg
	}

	uri, err := r.klant.CreateFeedback(ctx, queries.Feedback{
		PartyURI:   c.Party.URI,
		CaseURI:    c.CaseURI,
		Method:     c.Method,
		Message:    c.Message,
		Succeeded:  c.Succeeded,
		SourceOrg:  sourceOrg,
		OccurredAt: r.now().UTC(),
	})
	if err != nil {
		r.logger.Warn("completion feedback failed",
			"party", c.Party.URI,
			"method", c.Method,
			"error", err,
		)
		if !types.IsSoft(err) {
			err = types.NewAppError(types.ErrCodeTelemetryFailed, "completion feedback failed", err)
		}
		return "", err
	}

	r.logger.Info("completion feedback registered", "feedback", uri, "method", c.Method)
	return uri, nil
}

var _ Reporter = (*KlantReporter)(nil)
