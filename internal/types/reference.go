package types

import (
	"encoding/base64"
	"encoding/json"
)

// NotifyReference is attached to every outbound notification so that
// delivery-status callbacks can be correlated with the originating event.
// CaseID and PartyID hold the register URIs of the case and the recipient.
type NotifyReference struct {
	Notification NotificationEvent `json:"notification"`
	CaseID       string            `json:"caseId,omitempty"`
	PartyID      string            `json:"partyId"`
}

// Encode renders the reference as URL-safe base64 JSON, the form in which
// the delivery provider echoes it back.
func (r NotifyReference) Encode() (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", NewAppError(ErrCodeSerializationFailed, "failed to encode notify reference", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// DecodeNotifyReference is the inverse of NotifyReference.Encode.
func DecodeNotifyReference(encoded string) (NotifyReference, error) {
	var ref NotifyReference
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return ref, NewAppError(ErrCodeValidationReference, "reference is not valid base64", err)
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return ref, NewAppError(ErrCodeValidationReference, "reference is not valid JSON", err)
	}
	return ref, nil
}
