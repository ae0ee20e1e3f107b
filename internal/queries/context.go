package queries

import (
	"context"
	"sync"

	"omc/internal/types"

	"golang.org/x/sync/singleflight"
)

// EntityKind names a cached entity type.
type EntityKind string

const (
	KindCase         EntityKind = "case"
	KindCaseType     EntityKind = "case_type"
	KindCaseStatuses EntityKind = "case_statuses"
	KindCaseStatus   EntityKind = "case_status"
	KindStatusType   EntityKind = "status_type"
	KindCaseRole     EntityKind = "case_role"
	KindParty        EntityKind = "party"
	KindObject       EntityKind = "object"
	KindObjectType   EntityKind = "object_type"
	KindDecision     EntityKind = "decision"
	KindDecisionType EntityKind = "decision_type"
)

type cacheKey struct {
	kind EntityKind
	uri  string
}

// QueryContext binds one notification to the adapters. It caches every
// fetched entity by (kind, URI) and issues at most one call per key, also
// under concurrent use. Errors are not cached.
//
// A QueryContext lives for one notification and must not be shared.
type QueryContext struct {
	event         types.NotificationEvent
	adapters      Adapters
	initiatorRole string

	mu    sync.Mutex
	cache map[cacheKey]any
	group singleflight.Group
}

// NewQueryContext creates a QueryContext for event.
func NewQueryContext(event types.NotificationEvent, adapters Adapters, initiatorRole string) *QueryContext {
	return &QueryContext{
		event:         event,
		adapters:      adapters,
		initiatorRole: initiatorRole,
		cache:         make(map[cacheKey]any),
	}
}

// Event returns the bound notification.
func (q *QueryContext) Event() types.NotificationEvent {
	return q.event
}

func (q *QueryContext) cached(key cacheKey) (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	v, ok := q.cache[key]
	return v, ok
}

func load[T any](ctx context.Context, q *QueryContext, kind EntityKind, uri string, fetch func(context.Context) (T, error)) (T, error) {
	key := cacheKey{kind: kind, uri: uri}
	if v, ok := q.cached(key); ok {
		return v.(T), nil
	}

	v, err, _ := q.group.Do(string(kind)+"|"+uri, func() (any, error) {
		// A flight that finished between the lookup above and Do has already
		// filled the cache.
		if v, ok := q.cached(key); ok {
			return v, nil
		}
		out, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		q.mu.Lock()
		q.cache[key] = out
		q.mu.Unlock()
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// MainCase returns the case the notification is about (hoofdObject).
func (q *QueryContext) MainCase(ctx context.Context) (types.Case, error) {
	return q.Case(ctx, q.event.MainObjectURI)
}

// Case returns the case at uri.
func (q *QueryContext) Case(ctx context.Context, uri string) (types.Case, error) {
	return load(ctx, q, KindCase, uri, func(ctx context.Context) (types.Case, error) {
		return q.adapters.Zaak.GetCase(ctx, uri)
	})
}

// CaseType returns the case type at uri.
func (q *QueryContext) CaseType(ctx context.Context, uri string) (types.CaseType, error) {
	return load(ctx, q, KindCaseType, uri, func(ctx context.Context) (types.CaseType, error) {
		return q.adapters.Zaak.GetCaseType(ctx, uri)
	})
}

// CaseStatuses lists the statuses of the case at caseURI.
func (q *QueryContext) CaseStatuses(ctx context.Context, caseURI string) (types.CaseStatuses, error) {
	return load(ctx, q, KindCaseStatuses, caseURI, func(ctx context.Context) (types.CaseStatuses, error) {
		return q.adapters.Zaak.GetCaseStatuses(ctx, caseURI)
	})
}

// CaseStatus returns the status at uri.
func (q *QueryContext) CaseStatus(ctx context.Context, uri string) (types.CaseStatus, error) {
	return load(ctx, q, KindCaseStatus, uri, func(ctx context.Context) (types.CaseStatus, error) {
		return q.adapters.Zaak.GetCaseStatus(ctx, uri)
	})
}

// StatusType returns the status type at uri.
func (q *QueryContext) StatusType(ctx context.Context, uri string) (types.CaseStatusType, error) {
	return load(ctx, q, KindStatusType, uri, func(ctx context.Context) (types.CaseStatusType, error) {
		return q.adapters.Zaak.GetCaseStatusType(ctx, uri)
	})
}

// CaseRole returns the initiator role of the case at caseURI.
func (q *QueryContext) CaseRole(ctx context.Context, caseURI string) (types.CaseRole, error) {
	return load(ctx, q, KindCaseRole, caseURI, func(ctx context.Context) (types.CaseRole, error) {
		return q.adapters.Zaak.GetCaseRole(ctx, caseURI, q.initiatorRole)
	})
}

// Party returns the party identified by id.
func (q *QueryContext) Party(ctx context.Context, id types.PartyIdentification) (types.CommonPartyData, error) {
	return load(ctx, q, KindParty, string(id.Type)+":"+id.Value, func(ctx context.Context) (types.CommonPartyData, error) {
		return q.adapters.Klant.GetParty(ctx, id)
	})
}

// CaseParty resolves the initiator of the case at caseURI to a party.
func (q *QueryContext) CaseParty(ctx context.Context, caseURI string) (types.CommonPartyData, error) {
	role, err := q.CaseRole(ctx, caseURI)
	if err != nil {
		return types.CommonPartyData{}, err
	}
	id, ok := role.Subject.Identification()
	if !ok {
		return types.CommonPartyData{}, types.NewAppErrorWithDetails(
			types.ErrCodeAbortUnsupportedIdType,
			"initiator role carries neither a BSN nor a KVK number",
			nil,
			map[string]any{"role": role.URI, "subject_type": role.SubjectType},
		)
	}
	return q.Party(ctx, id)
}

// Object returns the object at uri.
func (q *QueryContext) Object(ctx context.Context, uri string) (types.Object, error) {
	return load(ctx, q, KindObject, uri, func(ctx context.Context) (types.Object, error) {
		return q.adapters.Objecten.GetObject(ctx, uri)
	})
}

// ObjectType returns the object type at uri.
func (q *QueryContext) ObjectType(ctx context.Context, uri string) (types.ObjectType, error) {
	return load(ctx, q, KindObjectType, uri, func(ctx context.Context) (types.ObjectType, error) {
		return q.adapters.ObjectTypen.GetObjectType(ctx, uri)
	})
}

// Decision returns the decision at uri.
func (q *QueryContext) Decision(ctx context.Context, uri string) (types.Decision, error) {
	return load(ctx, q, KindDecision, uri, func(ctx context.Context) (types.Decision, error) {
		return q.adapters.Besluiten.GetDecision(ctx, uri)
	})
}

// DecisionType returns the decision type at uri.
func (q *QueryContext) DecisionType(ctx context.Context, uri string) (types.DecisionType, error) {
	return load(ctx, q, KindDecisionType, uri, func(ctx context.Context) (types.DecisionType, error) {
		return q.adapters.Besluiten.GetDecisionType(ctx, uri)
	})
}

// CreateFeedback writes delivery feedback. It is never cached.
func (q *QueryContext) CreateFeedback(ctx context.Context, fb Feedback) (string, error) {
	return q.adapters.Klant.CreateFeedback(ctx, fb)
}
