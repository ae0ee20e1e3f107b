package queries

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"omc/internal/types"
)

// QueryZaak reads cases and their catalogue data from OpenZaak.
type QueryZaak interface {
	GetCase(ctx context.Context, uri string) (types.Case, error)
	GetCaseType(ctx context.Context, uri string) (types.CaseType, error)
	GetCaseStatuses(ctx context.Context, caseURI string) (types.CaseStatuses, error)
	GetCaseStatus(ctx context.Context, uri string) (types.CaseStatus, error)
	GetCaseStatusType(ctx context.Context, uri string) (types.CaseStatusType, error)
	// GetCaseRole returns the role of the case whose generic description
	// equals initiatorRole.
	GetCaseRole(ctx context.Context, caseURI, initiatorRole string) (types.CaseRole, error)
}

// zaakV1 talks to the Zaken API 1.x and filters roles client side.
type zaakV1 struct {
	base    *Base
	baseURL string
}

// NewZaakV1 creates the v1 adapter. baseURL is scheme and host of OpenZaak.
func NewZaakV1(base *Base, baseURL string) QueryZaak {
	return &zaakV1{base: base, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (q *zaakV1) GetCase(ctx context.Context, uri string) (types.Case, error) {
	return ProcessGet[types.Case](ctx, q.base, types.ClientOpenZaak, uri, "failed to retrieve case")
}

func (q *zaakV1) GetCaseType(ctx context.Context, uri string) (types.CaseType, error) {
	return ProcessGet[types.CaseType](ctx, q.base, types.ClientOpenZaak, uri, "failed to retrieve case type")
}

func (q *zaakV1) GetCaseStatuses(ctx context.Context, caseURI string) (types.CaseStatuses, error) {
	uri := q.baseURL + "/zaken/api/v1/statussen?zaak=" + url.QueryEscape(caseURI)
	return ProcessGet[types.CaseStatuses](ctx, q.base, types.ClientOpenZaak, uri, "failed to retrieve case statuses")
}

func (q *zaakV1) GetCaseStatus(ctx context.Context, uri string) (types.CaseStatus, error) {
	return ProcessGet[types.CaseStatus](ctx, q.base, types.ClientOpenZaak, uri, "failed to retrieve case status")
}

func (q *zaakV1) GetCaseStatusType(ctx context.Context, uri string) (types.CaseStatusType, error) {
	return ProcessGet[types.CaseStatusType](ctx, q.base, types.ClientOpenZaak, uri, "failed to retrieve case status type")
}

func (q *zaakV1) GetCaseRole(ctx context.Context, caseURI, initiatorRole string) (types.CaseRole, error) {
	uri := q.baseURL + "/zaken/api/v1/rollen?zaak=" + url.QueryEscape(caseURI)
	roles, err := ProcessGet[types.CaseRoles](ctx, q.base, types.ClientOpenZaak, uri, "failed to retrieve case roles")
	if err != nil {
		return types.CaseRole{}, err
	}
	return selectInitiator(roles, caseURI, initiatorRole)
}

// zaakV2 lets OpenZaak filter the roles on their generic description. An
// empty filtered page is ambiguous, so it is followed by one unfiltered query
// that tells a case without roles from one without an initiator.
type zaakV2 struct {
	zaakV1
}

// NewZaakV2 creates the v2 adapter.
func NewZaakV2(base *Base, baseURL string) QueryZaak {
	return &zaakV2{zaakV1{base: base, baseURL: strings.TrimSuffix(baseURL, "/")}}
}

func (q *zaakV2) GetCaseRole(ctx context.Context, caseURI, initiatorRole string) (types.CaseRole, error) {
	params := url.Values{}
	params.Set("zaak", caseURI)
	params.Set("omschrijvingGeneriek", initiatorRole)
	uri := q.baseURL + "/zaken/api/v1/rollen?" + params.Encode()

	roles, err := ProcessGet[types.CaseRoles](ctx, q.base, types.ClientOpenZaak, uri, "failed to retrieve case roles")
	if err != nil {
		return types.CaseRole{}, err
	}
	if len(roles.Results) == 0 {
		return q.zaakV1.GetCaseRole(ctx, caseURI, initiatorRole)
	}
	return selectInitiator(roles, caseURI, initiatorRole)
}

// selectInitiator never falls back to an arbitrary role.
func selectInitiator(roles types.CaseRoles, caseURI, initiatorRole string) (types.CaseRole, error) {
	if len(roles.Results) == 0 {
		return types.CaseRole{}, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamEmptyRoles,
			"case has no roles",
			nil,
			map[string]any{"case": caseURI},
		)
	}
	for _, role := range roles.Results {
		if strings.EqualFold(role.GenericName, initiatorRole) {
			return role, nil
		}
	}
	return types.CaseRole{}, types.NewAppErrorWithDetails(
		types.ErrCodeUpstreamMissingRole,
		fmt.Sprintf("none of the %d case roles is %q", len(roles.Results), initiatorRole),
		nil,
		map[string]any{"case": caseURI},
	)
}
