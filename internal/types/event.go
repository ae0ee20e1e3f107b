package types

import "time"

// Channel identifies the upstream system that emitted an event.
type Channel string

const (
	ChannelCases     Channel = "zaken"
	ChannelObjects   Channel = "objecten"
	ChannelDecisions Channel = "besluiten"
	// ChannelTest is used by the event source to verify a subscription.
	ChannelTest Channel = "test"
)

// Resource identifies the kind of entity that changed.
type Resource string

const (
	ResourceCase     Resource = "zaak"
	ResourceStatus   Resource = "status"
	ResourceObject   Resource = "object"
	ResourceDecision Resource = "besluit"
)

// Action identifies what happened to the resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"
)

// EventAttributes carries the "kenmerken" of an event. All fields are optional
// and depend on the channel.
type EventAttributes struct {
	SourceOrganization      string `json:"bronorganisatie,omitempty"`
	ResponsibleOrganization string `json:"verantwoordelijkeOrganisatie,omitempty"`
	ConfidentialityNotice   string `json:"vertrouwelijkheidaanduiding,omitempty"`
	CaseType                string `json:"zaaktype,omitempty"`
	ObjectType              string `json:"objectType,omitempty"`
	DecisionType            string `json:"besluittype,omitempty"`
}

// NotificationEvent is the immutable event delivered by the event source.
type NotificationEvent struct {
	Channel       Channel         `json:"kanaal" validate:"required"`
	Resource      Resource        `json:"resource" validate:"required"`
	Action        Action          `json:"actie" validate:"required"`
	MainObjectURI string          `json:"hoofdObject" validate:"required,url"`
	ResourceURI   string          `json:"resourceUrl" validate:"required,url"`
	CreateDate    time.Time       `json:"aanmaakdatum"`
	Attributes    EventAttributes `json:"kenmerken"`
}

// Key derives the scenario lookup key of the event.
func (e NotificationEvent) Key() ScenarioKey {
	return ScenarioKey{Channel: e.Channel, Resource: e.Resource, Action: e.Action}
}

// IsTest reports whether the event is a subscription check.
func (e NotificationEvent) IsTest() bool {
	return e.Channel == ChannelTest
}

// ScenarioKey is the (Channel, Resource, Action) lookup tuple.
type ScenarioKey struct {
	Channel  Channel
	Resource Resource
	Action   Action
}

// String renders the key as "channel/resource/action".
func (k ScenarioKey) String() string {
	return string(k.Channel) + "/" + string(k.Resource) + "/" + string(k.Action)
}
