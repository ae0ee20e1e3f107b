package queries

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"omc/internal/queries/querytest"
	"omc/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCaseTypeURI = testOpenZaak + "/catalogi/api/v1/zaaktypen/ct1"

func newTestQueryContext(t *testing.T, network *querytest.Network) *QueryContext {
	t.Helper()
	adapters, err := NewAdapters(NewBase(network, nil), Settings{
		ZaakVersion:  types.APIVersionV1,
		KlantVersion: types.APIVersionV1,
		OpenZaakURL:  testOpenZaak,
		KlantURL:     testOpenKlant,
	})
	require.NoError(t, err)

	event := types.NotificationEvent{
		Channel:       types.ChannelCases,
		Resource:      types.ResourceCase,
		Action:        types.ActionCreate,
		MainObjectURI: testCaseURI,
		ResourceURI:   testCaseURI,
	}
	return NewQueryContext(event, adapters, "initiator")
}

func seedCase(network *querytest.Network) {
	network.OnGet(testCaseURI, http.StatusOK, types.Case{URI: testCaseURI, CaseType: testCaseTypeURI})
	network.OnGet(testCaseTypeURI, http.StatusOK, types.CaseType{URI: testCaseTypeURI, Identification: "AANVRAAG"})
	network.OnGet(rolesURIv1(), http.StatusOK, rolesOf("initiator"))
	network.OnGet(testOpenKlant+"/klanten/api/v1/klanten?subjectNatuurlijkPersoon__inpBsn=999993653", http.StatusOK,
		`{"count":1,"results":[{"url":"https://openklant.example.nl/klanten/api/v1/klanten/1","emailadres":"jan@example.nl","aanmaakkanaal":"email"}]}`)
}

func TestQueryContext_CachesSequentialLookups(t *testing.T) {
	network := querytest.NewNetwork()
	seedCase(network)
	qc := newTestQueryContext(t, network)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c, err := qc.MainCase(ctx)
		require.NoError(t, err)
		_, err = qc.CaseType(ctx, c.CaseType)
		require.NoError(t, err)
		_, err = qc.CaseParty(ctx, c.URI)
		require.NoError(t, err)
	}

	for key, calls := range network.CallCounts() {
		assert.Equal(t, 1, calls, key)
	}
	assert.Equal(t, 4, network.Total())
}

func TestQueryContext_OneCallPerKeyUnderConcurrency(t *testing.T) {
	network := querytest.NewNetwork()
	network.Delay = 20 * time.Millisecond
	seedCase(network)
	qc := newTestQueryContext(t, network)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := qc.MainCase(context.Background())
			assert.NoError(t, err)
			_, err = qc.CaseRole(context.Background(), testCaseURI)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, network.Calls(http.MethodGet, testCaseURI))
	assert.Equal(t, 1, network.Calls(http.MethodGet, rolesURIv1()))
}

func TestQueryContext_KindsAreDistinct(t *testing.T) {
	// The same URI looked up as a different kind is a different entity.
	network := querytest.NewNetwork()
	seedCase(network)
	network.OnGet(testOpenZaak+"/zaken/api/v1/statussen?zaak="+url.QueryEscape(testCaseURI), http.StatusOK, `{"count":0,"results":[]}`)
	qc := newTestQueryContext(t, network)

	_, err := qc.MainCase(context.Background())
	require.NoError(t, err)
	_, err = qc.CaseStatuses(context.Background(), testCaseURI)
	require.NoError(t, err)

	assert.Equal(t, 2, network.Total())
}

func TestQueryContext_ErrorsAreNotCached(t *testing.T) {
	network := querytest.NewNetwork()
	network.FailGet(testCaseURI, types.NewAppError(types.ErrCodeUpstreamUnavailable, "down", errors.New("boom")))
	qc := newTestQueryContext(t, network)

	_, err := qc.MainCase(context.Background())
	require.Error(t, err)

	_, err = qc.MainCase(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, network.Calls(http.MethodGet, testCaseURI))
}

func TestQueryContext_CasePartyWithoutIdentification(t *testing.T) {
	network := querytest.NewNetwork()
	network.OnGet(rolesURIv1(), http.StatusOK, types.CaseRoles{Count: 1, Results: []types.CaseRole{{GenericName: "initiator"}}})
	qc := newTestQueryContext(t, network)

	_, err := qc.CaseParty(context.Background(), testCaseURI)
	assert.Equal(t, types.ErrCodeAbortUnsupportedIdType, types.CodeOf(err))
	assert.Equal(t, types.StatusAborted, types.OutcomeOf(err))
}

func TestQueryContext_FeedbackIsNotCached(t *testing.T) {
	momentURI := testOpenKlant + "/contactmomenten/api/v1/contactmomenten"
	network := querytest.NewNetwork()
	network.OnPost(momentURI, http.StatusCreated, `{"url":"https://openklant.example.nl/contactmomenten/api/v1/contactmomenten/cm1"}`)
	qc := newTestQueryContext(t, network)

	for i := 0; i < 2; i++ {
		_, err := qc.CreateFeedback(context.Background(), Feedback{Method: types.NotifyMethodEmail})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, network.Calls(http.MethodPost, momentURI))
}
