package queries

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"omc/internal/types"
)

// Feedback is the completion record written back to the party register after
// a send attempt.
type Feedback struct {
	PartyURI   string
	CaseURI    string
	Method     types.NotifyMethod
	Message    string
	Succeeded  bool
	SourceOrg  string
	OccurredAt time.Time
}

// QueryKlant reads parties from OpenKlant and writes delivery feedback.
type QueryKlant interface {
	GetParty(ctx context.Context, id types.PartyIdentification) (types.CommonPartyData, error)
	// CreateFeedback registers a contact with the party and returns the URI of
	// the created record. Its errors are soft.
	CreateFeedback(ctx context.Context, fb Feedback) (string, error)
}

// klantV1 talks to the Klanten and Contactmomenten APIs.
type klantV1 struct {
	base    *Base
	baseURL string
}

// NewKlantV1 creates the v1 adapter.
func NewKlantV1(base *Base, baseURL string) QueryKlant {
	return &klantV1{base: base, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (q *klantV1) GetParty(ctx context.Context, id types.PartyIdentification) (types.CommonPartyData, error) {
	var param string
	switch id.Type {
	case types.IdentificationBSN:
		param = "subjectNatuurlijkPersoon__inpBsn"
	case types.IdentificationKVK:
		param = "subjectNietNatuurlijkPersoon__innNnpId"
	default:
		return types.CommonPartyData{}, unsupportedID(id)
	}

	uri := q.baseURL + "/klanten/api/v1/klanten?" + param + "=" + url.QueryEscape(id.Value)
	results, err := ProcessGet[types.CitizenResults](ctx, q.base, types.ClientOpenKlant, uri, "failed to retrieve party")
	if err != nil {
		return types.CommonPartyData{}, err
	}
	if len(results.Results) == 0 {
		return types.CommonPartyData{}, missingParty(id)
	}
	return results.Results[0].ToCommon(), nil
}

func (q *klantV1) CreateFeedback(ctx context.Context, fb Feedback) (string, error) {
	moment := types.ContactMoment{
		SourceOrg:        fb.SourceOrg,
		RegistrationDate: fb.OccurredAt.UTC().Format(time.RFC3339),
		Channel:          string(fb.Method),
		Text:             fb.Message,
		Initiator:        "gemeente",
	}
	created, err := ProcessPost[types.CreatedResource](ctx, q.base, types.ClientTelemetry,
		q.baseURL+"/contactmomenten/api/v1/contactmomenten", moment, "failed to register contact moment")
	if err != nil {
		return "", err
	}

	if fb.CaseURI != "" {
		link := types.ObjectContactMoment{
			ContactMoment: created.URI,
			Object:        fb.CaseURI,
			ObjectType:    "zaak",
		}
		if _, err := ProcessPost[types.CreatedResource](ctx, q.base, types.ClientTelemetry,
			q.baseURL+"/contactmomenten/api/v1/objectcontactmomenten", link, "failed to link contact moment to case"); err != nil {
			return created.URI, err
		}
	}
	return created.URI, nil
}

// klantV2 talks to the Klantinteracties API.
type klantV2 struct {
	base    *Base
	baseURL string
}

// NewKlantV2 creates the v2 adapter.
func NewKlantV2(base *Base, baseURL string) QueryKlant {
	return &klantV2{base: base, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (q *klantV2) GetParty(ctx context.Context, id types.PartyIdentification) (types.CommonPartyData, error) {
	var kind string
	switch id.Type {
	case types.IdentificationBSN:
		kind = "bsn"
	case types.IdentificationKVK:
		kind = "kvk_nummer"
	default:
		return types.CommonPartyData{}, unsupportedID(id)
	}

	params := url.Values{}
	params.Set("partijIdentificator__codeSoortObjectId", kind)
	params.Set("partijIdentificator__objectId", id.Value)
	params.Set("expand", "digitaleAdressen")
	uri := q.baseURL + "/klantinteracties/api/v1/partijen?" + params.Encode()

	results, err := ProcessGet[types.PartyResults](ctx, q.base, types.ClientOpenKlant, uri, "failed to retrieve party")
	if err != nil {
		return types.CommonPartyData{}, err
	}
	if len(results.Results) == 0 {
		return types.CommonPartyData{}, missingParty(id)
	}
	return results.Results[0].ToCommon(), nil
}

func (q *klantV2) CreateFeedback(ctx context.Context, fb Feedback) (string, error) {
	contact := types.CustomerContact{
		Channel:    string(fb.Method),
		Subject:    "Notificatie",
		Content:    fb.Message,
		Succeeded:  fb.Succeeded,
		Language:   "nld",
		Private:    false,
		OccurredAt: fb.OccurredAt.UTC().Format(time.RFC3339),
	}
	created, err := ProcessPost[types.CreatedResource](ctx, q.base, types.ClientTelemetry,
		q.baseURL+"/klantinteracties/api/v1/klantcontacten", contact, "failed to register customer contact")
	if err != nil {
		return "", err
	}

	contactID := created.UUID
	if contactID == "" {
		contactID = types.LastSegment(created.URI)
	}
	involvement := types.ContactInvolvement{
		WasParty:   types.UUIDRef{UUID: types.LastSegment(fb.PartyURI)},
		HadContact: types.UUIDRef{UUID: contactID},
		Role:       "klant",
		Initiator:  false,
	}
	if _, err := ProcessPost[types.CreatedResource](ctx, q.base, types.ClientTelemetry,
		q.baseURL+"/klantinteracties/api/v1/betrokkenen", involvement, "failed to link customer contact to party"); err != nil {
		return created.URI, err
	}
	return created.URI, nil
}

func unsupportedID(id types.PartyIdentification) error {
	return types.NewAppError(
		types.ErrCodeAbortUnsupportedIdType,
		fmt.Sprintf("identification type %q is not supported", id.Type),
		nil,
	)
}

func missingParty(id types.PartyIdentification) error {
	return types.NewAppErrorWithDetails(
		types.ErrCodeUpstreamMissingParty,
		"no party registered for the identification",
		nil,
		map[string]any{"type": string(id.Type)},
	)
}
