package scenarios

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"omc/internal/queries"
	"omc/internal/types"
)

// caseBundle is the data every case-bound workflow needs.
type caseBundle struct {
	Case     types.Case
	CaseType types.CaseType
	Party    types.CommonPartyData
}

// gatherCase loads the case with its type and the initiating party
// concurrently. A case type outside allowed skips the notification, also when
// the party lookup failed.
//
// The case and case type are loaded with ctx rather than the group context so
// a failing sibling never cancels them; callers running gatherCase next to
// other queries pass their parent context for the same reason.
func gatherCase(ctx context.Context, qc *queries.QueryContext, caseURI string, allowed whitelist) (caseBundle, error) {
	var b caseBundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, ct, err := gatherLinkedCase(ctx, qc, caseURI)
		if err != nil {
			return err
		}
		b.Case, b.CaseType = c, ct
		return nil
	})
	g.Go(func() error {
		party, err := qc.CaseParty(gctx, caseURI)
		if err != nil {
			return err
		}
		b.Party = party
		return nil
	})
	if err := whitelistFirst(b.CaseType, allowed, g.Wait()); err != nil {
		return b, err
	}
	return b, checkContact(b.Party)
}

// whitelistFirst returns the whitelist skip for a loaded case type outside
// allowed, and err otherwise. A skip outranks any lookup failure.
func whitelistFirst(ct types.CaseType, allowed whitelist, err error) error {
	if ct.URI != "" && !allowed.allows(ct.Identification) {
		return notWhitelisted(ct)
	}
	return err
}

// gatherLinkedCase loads the case and case type an object points at.
func gatherLinkedCase(ctx context.Context, qc *queries.QueryContext, caseURI string) (types.Case, types.CaseType, error) {
	c, err := qc.Case(ctx, caseURI)
	if err != nil {
		return types.Case{}, types.CaseType{}, err
	}
	ct, err := qc.CaseType(ctx, c.CaseType)
	return c, ct, err
}

func notWhitelisted(ct types.CaseType) error {
	return types.NewAppErrorWithDetails(
		types.ErrCodeSkipNotWhitelisted,
		fmt.Sprintf("case type %q is not whitelisted", ct.Identification),
		nil,
		map[string]any{"case_type": ct.URI},
	)
}

// objectParty validates the identification carried by an object.
func objectParty(id types.PartyIdentification) (types.PartyIdentification, error) {
	id.Type = types.IdentificationType(strings.ToLower(strings.TrimSpace(string(id.Type))))
	id.Value = strings.TrimSpace(id.Value)
	switch id.Type {
	case types.IdentificationBSN, types.IdentificationKVK:
	default:
		return id, types.NewAppErrorWithDetails(
			types.ErrCodeAbortUnsupportedIdType,
			fmt.Sprintf("identification type %q is not supported", id.Type),
			nil,
			map[string]any{"type": string(id.Type)},
		)
	}
	if id.Value == "" {
		return id, types.NewAppError(types.ErrCodeAbortUnsupportedIdType, "identification has no value", nil)
	}
	return id, nil
}

// checkContact aborts when the preferred channel lacks its address. A party
// without a channel passes; phase 2 skips it.
func checkContact(p types.CommonPartyData) error {
	switch p.DistributionChannel {
	case types.DistributionEmail:
		if p.EmailAddress == "" {
			return types.NewAppError(types.ErrCodeAbortMissingEmail, "recipient prefers email but has no email address", nil)
		}
	case types.DistributionSms:
		if p.TelephoneNumber == "" {
			return types.NewAppError(types.ErrCodeAbortMissingPhone, "recipient prefers sms but has no telephone number", nil)
		}
	case types.DistributionBoth:
		if p.EmailAddress == "" && p.TelephoneNumber == "" {
			return types.NewAppError(types.ErrCodeAbortMissingContact, "recipient has neither an email address nor a telephone number", nil)
		}
	}
	return nil
}
