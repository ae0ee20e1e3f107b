package types

import "encoding/json"

// ObjectRecord is the versioned payload of an object in the Objecten API.
type ObjectRecord struct {
	Index       int             `json:"index"`
	TypeVersion int             `json:"typeVersion"`
	Data        json.RawMessage `json:"data"`
	StartAt     string          `json:"startAt"`
}

// Object is an entry of the Objecten API. Its data is decoded by the caller
// into one of the typed payloads below.
type Object struct {
	URI    string       `json:"url" validate:"required"`
	UUID   string       `json:"uuid"`
	Type   string       `json:"type" validate:"required"`
	Record ObjectRecord `json:"record"`
}

// Task states.
const (
	TaskStatusOpen   = "open"
	TaskStatusClosed = "afgerond"
)

// CaseLink couples an object to a case.
type CaseLink struct {
	Registration string `json:"registratie"`
	UUID         string `json:"uuid"`
	URI          string `json:"url,omitempty"`
}

// TaskData is the payload of a "taak" object.
type TaskData struct {
	Title          string              `json:"titel" validate:"required"`
	Status         string              `json:"status" validate:"required"`
	ExpirationDate string              `json:"verloopdatum"`
	Identification PartyIdentification `json:"identificatie"`
	Link           CaseLink            `json:"koppeling"`
}

// MessageData is the payload of a "bericht" object.
type MessageData struct {
	Subject         string              `json:"onderwerp" validate:"required"`
	Body            string              `json:"berichtTekst"`
	PublicationDate string              `json:"publicatiedatum"`
	Identification  PartyIdentification `json:"identificatie"`
	Reference       string              `json:"referentie"`
}

// ProductData is the payload of a "product" object.
type ProductData struct {
	Name           string              `json:"naam" validate:"required"`
	Status         string              `json:"status"`
	Identification PartyIdentification `json:"identificatie"`
	Link           CaseLink            `json:"koppeling"`
}

// ObjectType is an entry of the ObjectTypen API.
type ObjectType struct {
	URI         string `json:"url" validate:"required"`
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	NamePlural  string `json:"namePlural"`
	Description string `json:"description"`
}
