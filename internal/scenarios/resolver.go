package scenarios

import (
	"fmt"
	"strings"

	"omc/internal/types"
)

// caseTable maps the fixed event shapes onto workflows. Object events are
// dispatched on their object type instead.
var caseTable = map[types.ScenarioKey]Kind{
	{Channel: types.ChannelCases, Resource: types.ResourceCase, Action: types.ActionCreate}:         KindCaseCreated,
	{Channel: types.ChannelCases, Resource: types.ResourceStatus, Action: types.ActionCreate}:       KindCaseStatusUpdated,
	{Channel: types.ChannelCases, Resource: types.ResourceStatus, Action: types.ActionUpdate}:       KindCaseStatusUpdated,
	{Channel: types.ChannelCases, Resource: types.ResourceCase, Action: types.ActionUpdate}:         KindCaseClosed,
	{Channel: types.ChannelDecisions, Resource: types.ResourceDecision, Action: types.ActionCreate}: KindDecisionMade,
}

// KindOf determines the workflow of event. It performs no I/O and is total:
// events no workflow accepts yield a scenario_not_implemented error and test
// events a skip_test_event error.
func KindOf(event types.NotificationEvent, objectTypes ObjectTypes) (Kind, error) {
	if event.IsTest() {
		return KindUnsupported, types.NewAppError(types.ErrCodeSkipTestEvent, "test notification acknowledged", nil)
	}

	key := event.Key()
	if kind, ok := caseTable[key]; ok {
		return kind, nil
	}

	if key.Channel == types.ChannelObjects && key.Resource == types.ResourceObject &&
		(key.Action == types.ActionCreate || key.Action == types.ActionUpdate) {
		objectType := event.Attributes.ObjectType
		switch {
		case matchesObjectType(objectTypes.Task, objectType):
			// Tasks are also announced when they are reassigned.
			return KindTaskAssigned, nil
		case key.Action == types.ActionCreate && matchesObjectType(objectTypes.Message, objectType):
			return KindMessageCreated, nil
		case key.Action == types.ActionCreate && matchesObjectType(objectTypes.Product, objectType):
			return KindProductGiven, nil
		}
		return KindUnsupported, notImplemented(key, map[string]any{"object_type": objectType})
	}

	return KindUnsupported, notImplemented(key, nil)
}

func notImplemented(key types.ScenarioKey, details map[string]any) error {
	merged := map[string]any{"scenario_key": key.String()}
	for k, v := range details {
		merged[k] = v
	}
	return types.NewAppErrorWithDetails(
		types.ErrCodeScenarioNotImplemented,
		fmt.Sprintf("no scenario for %s", key),
		nil,
		merged,
	)
}

// matchesObjectType compares the objectType attribute (an object-type URI)
// with configured UUIDs or URIs.
func matchesObjectType(configured []string, objectType string) bool {
	if objectType == "" {
		return false
	}
	id := types.LastSegment(objectType)
	for _, entry := range configured {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.EqualFold(entry, id) || strings.EqualFold(strings.TrimSuffix(entry, "/"), strings.TrimSuffix(objectType, "/")) {
			return true
		}
	}
	return false
}

// Resolver maps events onto registered strategies.
type Resolver struct {
	strategies  map[Kind]Strategy
	objectTypes ObjectTypes
}

// NewResolver creates a Resolver.
func NewResolver(strategies map[Kind]Strategy, objectTypes ObjectTypes) *Resolver {
	return &Resolver{strategies: strategies, objectTypes: objectTypes}
}

// Resolve returns the strategy for event.
func (r *Resolver) Resolve(event types.NotificationEvent) (Strategy, error) {
	kind, err := KindOf(event, r.objectTypes)
	if err != nil {
		return nil, err
	}
	strategy, ok := r.strategies[kind]
	if !ok {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeScenarioNotImplemented,
			fmt.Sprintf("scenario %s is not registered", kind),
			nil,
			map[string]any{"scenario_key": event.Key().String()},
		)
	}
	return strategy, nil
}
