// Package scenarios implements the notification workflows.
//
// Every workflow runs in two phases. TryGetData gathers everything the message
// needs through a per-notification QueryContext and checks the business
// preconditions; ProcessData delivers the message over the recipient's
// preferred channels and reports each attempt. Errors returned from phase 1
// carry a types.ErrorCode whose prefix decides the outcome.
package scenarios

import (
	"context"
	"strings"

	"omc/internal/config"
	"omc/internal/queries"
	"omc/internal/types"
)

// Kind names a workflow. Its value is also the key of the workflow's
// templates in NOTIFY_TEMPLATES_JSON.
type Kind string

const (
	KindCaseCreated       Kind = "case_created"
	KindCaseStatusUpdated Kind = "case_status_updated"
	KindCaseClosed        Kind = "case_closed"
	KindDecisionMade      Kind = "decision_made"
	KindTaskAssigned      Kind = "task_assigned"
	KindMessageCreated    Kind = "message_created"
	KindProductGiven      Kind = "product_given"
	// KindUnsupported is reported for events no workflow accepts.
	KindUnsupported Kind = "unsupported"
)

// Kinds lists every implemented workflow.
var Kinds = []Kind{
	KindCaseCreated,
	KindCaseStatusUpdated,
	KindCaseClosed,
	KindDecisionMade,
	KindTaskAssigned,
	KindMessageCreated,
	KindProductGiven,
}

// PreparedData is the outcome of phase 1.
type PreparedData struct {
	Party types.CommonPartyData
	// CaseURI is empty for workflows that are not bound to a case.
	CaseURI string
	// Personalization holds the workflow specific template values. The party
	// values are added in phase 2.
	Personalization map[string]any
}

// Strategy is one workflow.
type Strategy interface {
	Kind() Kind
	TryGetData(ctx context.Context, qc *queries.QueryContext) (PreparedData, error)
	ProcessData(ctx context.Context, event types.NotificationEvent, data PreparedData) types.ProcessingResult
}

// Templates holds the provider template ids of one workflow. An empty id
// disables the channel for that workflow.
type Templates struct {
	Email string
	Sms   string
}

// ObjectTypes lists the object-type identifiers that dispatch object events.
// Entries are object-type UUIDs or full object-type URIs.
type ObjectTypes struct {
	Task    []string
	Message []string
	Product []string
}

// Settings is the read-only workflow configuration.
type Settings struct {
	Templates   map[Kind]Templates
	Whitelists  map[Kind][]string
	ObjectTypes ObjectTypes
}

// SettingsFromConfig extracts the workflow configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	templates := make(map[Kind]Templates, len(cfg.Notify.TemplateSet))
	for name, pair := range cfg.Notify.TemplateSet {
		templates[Kind(name)] = Templates{Email: pair.Email, Sms: pair.Sms}
	}

	return Settings{
		Templates: templates,
		Whitelists: map[Kind][]string{
			KindCaseCreated:       cfg.Whitelist.CaseCreated,
			KindCaseStatusUpdated: cfg.Whitelist.CaseStatusUpdated,
			KindCaseClosed:        cfg.Whitelist.CaseClosed,
			KindDecisionMade:      cfg.Whitelist.DecisionMade,
			KindTaskAssigned:      cfg.Whitelist.TaskAssigned,
		},
		ObjectTypes: ObjectTypes{
			Task:    cfg.Objecten.TaskObjectTypes,
			Message: cfg.Objecten.MessageObjectTypes,
			Product: cfg.Objecten.ProductObjectTypes,
		},
	}
}

// whitelist holds case-type identifications. "*" allows every case type; an
// empty whitelist allows none.
type whitelist []string

func (w whitelist) allows(identification string) bool {
	for _, entry := range w {
		entry = strings.TrimSpace(entry)
		if entry == "*" || (entry != "" && strings.EqualFold(entry, identification)) {
			return true
		}
	}
	return false
}

// base carries what every strategy shares.
type base struct {
	kind       Kind
	dispatcher *Dispatcher
	whitelist  whitelist
}

func (b base) Kind() Kind {
	return b.kind
}

func (b base) ProcessData(ctx context.Context, event types.NotificationEvent, data PreparedData) types.ProcessingResult {
	return b.dispatcher.Dispatch(ctx, b.kind, event, data)
}

// NewStrategies builds every workflow around one dispatcher.
func NewStrategies(d *Dispatcher, settings Settings) map[Kind]Strategy {
	mk := func(kind Kind) base {
		return base{kind: kind, dispatcher: d, whitelist: settings.Whitelists[kind]}
	}

	return map[Kind]Strategy{
		KindCaseCreated:       &caseCreated{base: mk(KindCaseCreated)},
		KindCaseStatusUpdated: &caseStatusUpdated{base: mk(KindCaseStatusUpdated)},
		KindCaseClosed:        &caseClosed{base: mk(KindCaseClosed)},
		KindDecisionMade:      &decisionMade{base: mk(KindDecisionMade)},
		KindTaskAssigned:      &taskAssigned{base: mk(KindTaskAssigned)},
		KindMessageCreated:    &messageCreated{base: mk(KindMessageCreated)},
		KindProductGiven:      &productGiven{base: mk(KindProductGiven)},
	}
}
