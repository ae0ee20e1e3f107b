package scenarios

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"omc/internal/notify"
	"omc/internal/queries"
	"omc/internal/queries/querytest"
	"omc/internal/telemetry"
	"omc/internal/types"
)

const (
	testOpenZaak    = "https://openzaak.example.nl"
	testOpenKlant   = "https://openklant.example.nl"
	testObjecten    = "https://objecten.example.nl"
	testObjectTypen = "https://objecttypen.example.nl"

	testBSN           = "999993653"
	testCaseURI       = testOpenZaak + "/zaken/api/v1/zaken/c1"
	testCaseTypeURI   = testOpenZaak + "/catalogi/api/v1/zaaktypen/ct1"
	testStatusURI     = testOpenZaak + "/zaken/api/v1/statussen/s1"
	testStatusTypeURI = testOpenZaak + "/catalogi/api/v1/statustypen/st1"
	testDecisionURI   = testOpenZaak + "/besluiten/api/v1/besluiten/b1"
	testDecTypeURI    = testOpenZaak + "/catalogi/api/v1/besluittypen/bt1"
	testPartyURI      = testOpenKlant + "/klanten/api/v1/klanten/k1"
	testObjectURI     = testObjecten + "/api/v2/objects/o1"

	testTaskType    = "0f1e2d3c-task"
	testMessageType = "1a2b3c4d-message"
	testProductType = "5e6f7a8b-product"
)

func objectTypeURI(id string) string {
	return testObjectTypen + "/api/v2/objecttypes/" + id
}

func rolesURI() string {
	return testOpenZaak + "/zaken/api/v1/rollen?zaak=" + url.QueryEscape(testCaseURI)
}

func statusesURI() string {
	return testOpenZaak + "/zaken/api/v1/statussen?zaak=" + url.QueryEscape(testCaseURI)
}

func partyQueryURI() string {
	return testOpenKlant + "/klanten/api/v1/klanten?subjectNatuurlijkPersoon__inpBsn=" + testBSN
}

func contactMomentsURI() string {
	return testOpenKlant + "/contactmomenten/api/v1/contactmomenten"
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type recordingSender struct {
	mu        sync.Mutex
	emails    []notify.Package
	sms       []notify.Package
	failEmail bool
	failSms   bool
}

func (s *recordingSender) SendEmail(_ context.Context, pkg notify.Package) notify.SendResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, pkg)
	if s.failEmail {
		return notify.SendResult{ErrorMessage: "email rejected"}
	}
	return notify.SendResult{Success: true, NotificationID: "email-1"}
}

func (s *recordingSender) SendSms(_ context.Context, pkg notify.Package) notify.SendResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sms = append(s.sms, pkg)
	if s.failSms {
		return notify.SendResult{ErrorMessage: "sms rejected"}
	}
	return notify.SendResult{Success: true, NotificationID: "sms-1"}
}

func (s *recordingSender) PreviewTemplate(context.Context, string, map[string]any) notify.TemplateResult {
	return notify.TemplateResult{Success: true}
}

func (s *recordingSender) invocations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.emails) + len(s.sms)
}

type recordingReporter struct {
	mu          sync.Mutex
	completions []telemetry.Completion
	err         error
}

func (r *recordingReporter) ReportCompletion(_ context.Context, c telemetry.Completion) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, c)
	if r.err != nil {
		return "", r.err
	}
	return testOpenKlant + "/contactmomenten/api/v1/contactmomenten/1", nil
}

type countingObserver struct {
	mu       sync.Mutex
	observed map[types.NotifyMethod]int
}

func (o *countingObserver) ObserveDelivery(_ context.Context, _ Kind, method types.NotifyMethod, _ bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.observed == nil {
		o.observed = make(map[types.NotifyMethod]int)
	}
	o.observed[method]++
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	network  *querytest.Network
	sender   *recordingSender
	reporter telemetry.Reporter
	settings Settings
}

func testSettings() Settings {
	templates := make(map[Kind]Templates, len(Kinds))
	whitelists := make(map[Kind][]string, len(Kinds))
	for _, k := range Kinds {
		templates[k] = Templates{Email: "email-" + string(k), Sms: "sms-" + string(k)}
		whitelists[k] = []string{"*"}
	}
	return Settings{
		Templates:  templates,
		Whitelists: whitelists,
		ObjectTypes: ObjectTypes{
			Task:    []string{testTaskType},
			Message: []string{testMessageType},
			Product: []string{objectTypeURI(testProductType)},
		},
	}
}

func newFixture() *fixture {
	return &fixture{
		network:  querytest.NewNetwork(),
		sender:   &recordingSender{},
		reporter: &recordingReporter{},
		settings: testSettings(),
	}
}

func (f *fixture) adapters(t *testing.T) queries.Adapters {
	t.Helper()
	adapters, err := queries.NewAdapters(queries.NewBase(f.network, nil), queries.Settings{
		ZaakVersion:  types.APIVersionV1,
		KlantVersion: types.APIVersionV1,
		OpenZaakURL:  testOpenZaak,
		KlantURL:     testOpenKlant,
	})
	require.NoError(t, err)
	return adapters
}

func (f *fixture) resolver() *Resolver {
	d := NewDispatcher(f.sender, f.reporter, f.settings.Templates, nil, nil)
	return NewResolver(NewStrategies(d, f.settings), f.settings.ObjectTypes)
}

// run drives both phases the way the orchestrator does.
func (f *fixture) run(t *testing.T, event types.NotificationEvent) types.ProcessingResult {
	t.Helper()
	strategy, err := f.resolver().Resolve(event)
	if err != nil {
		return types.ResultFromError(err)
	}
	qc := queries.NewQueryContext(event, f.adapters(t), "initiator")
	data, err := strategy.TryGetData(context.Background(), qc)
	if err != nil {
		return types.ResultFromError(err)
	}
	return strategy.ProcessData(context.Background(), event, data)
}

func (f *fixture) seedCase(endDate string) {
	f.network.OnGet(testCaseURI, http.StatusOK, types.Case{
		URI:            testCaseURI,
		Identification: "ZAAK-2026-0001",
		Name:           "Aanvraag parkeervergunning",
		CaseType:       testCaseTypeURI,
		EndDate:        endDate,
	})
	f.network.OnGet(testCaseTypeURI, http.StatusOK, types.CaseType{
		URI:            testCaseTypeURI,
		Identification: "PARKEREN",
		Name:           "Parkeervergunning",
	})
}

func (f *fixture) seedRoles(names ...string) {
	roles := types.CaseRoles{Count: len(names), Results: []types.CaseRole{}}
	for _, n := range names {
		roles.Results = append(roles.Results, types.CaseRole{
			URI:         testOpenZaak + "/zaken/api/v1/rollen/" + n,
			GenericName: n,
			Subject:     types.RoleSubject{BSN: testBSN},
		})
	}
	f.network.OnGet(rolesURI(), http.StatusOK, roles)
}

func (f *fixture) seedParty(channel, email, phone string) {
	f.network.OnGet(partyQueryURI(), http.StatusOK, types.CitizenResults{
		Count: 1,
		Results: []types.CitizenData{{
			URI:                 testPartyURI,
			Name:                "Jan",
			SurnamePrefix:       "van der",
			Surname:             "Berg",
			EmailAddress:        email,
			TelephoneNumber:     phone,
			DistributionChannel: channel,
		}},
	})
}

func (f *fixture) seedStatus(informeren bool) {
	f.network.OnGet(testStatusURI, http.StatusOK, types.CaseStatus{
		URI:        testStatusURI,
		Case:       testCaseURI,
		StatusType: testStatusTypeURI,
		Comment:    "In behandeling genomen",
	})
	f.network.OnGet(testStatusTypeURI, http.StatusOK, types.CaseStatusType{
		URI:          testStatusTypeURI,
		Name:         "In behandeling",
		IsNotifiable: informeren,
	})
}

// seedCaseBound seeds a complete case-bound scenario with an email recipient.
func (f *fixture) seedCaseBound() {
	f.seedCase("")
	f.seedRoles("initiator")
	f.seedParty("email", "jan@example.nl", "")
}

func (f *fixture) seedObject(objectType string, data any) {
	f.network.OnGet(testObjectURI, http.StatusOK, map[string]any{
		"url":  testObjectURI,
		"uuid": "o1",
		"type": objectTypeURI(objectType),
		"record": map[string]any{
			"index":       1,
			"typeVersion": 1,
			"data":        data,
		},
	})
	f.network.OnGet(objectTypeURI(objectType), http.StatusOK, types.ObjectType{
		URI:  objectTypeURI(objectType),
		Name: "Objecttype " + objectType,
	})
}

func caseEvent(resource types.Resource, action types.Action, resourceURI string) types.NotificationEvent {
	return types.NotificationEvent{
		Channel:       types.ChannelCases,
		Resource:      resource,
		Action:        action,
		MainObjectURI: testCaseURI,
		ResourceURI:   resourceURI,
		Attributes: types.EventAttributes{
			SourceOrganization: "123456789",
			CaseType:           testCaseTypeURI,
		},
	}
}

func objectEvent(action types.Action, objectType string) types.NotificationEvent {
	return types.NotificationEvent{
		Channel:       types.ChannelObjects,
		Resource:      types.ResourceObject,
		Action:        action,
		MainObjectURI: testObjectURI,
		ResourceURI:   testObjectURI,
		Attributes:    types.EventAttributes{ObjectType: objectTypeURI(objectType)},
	}
}
