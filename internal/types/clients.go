package types

// ClientType selects the credentials and base domain used for an outbound call.
type ClientType string

const (
	ClientOpenZaak    ClientType = "openzaak"
	ClientOpenKlant   ClientType = "openklant"
	ClientObjecten    ClientType = "objecten"
	ClientObjectTypen ClientType = "objecttypen"
	ClientBesluiten   ClientType = "besluiten"
	ClientNotify      ClientType = "notify"
	// ClientTelemetry posts completion feedback. Its failures are soft.
	ClientTelemetry ClientType = "telemetry"
)

// IsTelemetry reports whether failures of this client must stay soft.
func (c ClientType) IsTelemetry() bool {
	return c == ClientTelemetry
}

// APIVersion selects an upstream API generation at composition time.
type APIVersion string

const (
	APIVersionV1 APIVersion = "v1"
	APIVersionV2 APIVersion = "v2"
)

// NotifyMethod is the channel a notification was sent over.
type NotifyMethod string

const (
	NotifyMethodEmail NotifyMethod = "email"
	NotifyMethodSms   NotifyMethod = "sms"
)

// Metric names and dimensions.
const (
	MetricNamespace         = "OMC"
	MetricProcessingOutcome = "ProcessingOutcome"
	MetricProcessingLatency = "ProcessingLatency"
	MetricDeliveryAttempt   = "DeliveryAttempt"
	DimScenario             = "Scenario"
	DimStatus               = "Status"
	DimMethod               = "Method"
)
