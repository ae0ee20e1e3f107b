package types

import (
	"strings"
	"time"
)

// Case is a "zaak" from the OpenZaak Zaken API.
type Case struct {
	URI              string `json:"url" validate:"required"`
	Identification   string `json:"identificatie"`
	Name             string `json:"omschrijving"`
	CaseType         string `json:"zaaktype" validate:"required"`
	RegistrationDate string `json:"registratiedatum"`
	StartDate        string `json:"startdatum"`
	EndDate          string `json:"einddatum,omitempty"`
	Status           string `json:"status,omitempty"`
	SourceOrg        string `json:"bronorganisatie"`
}

// ID returns the trailing UUID segment of the case URI.
func (c Case) ID() string {
	return LastSegment(c.URI)
}

// IsClosed reports whether the case has an end date.
func (c Case) IsClosed() bool {
	return strings.TrimSpace(c.EndDate) != ""
}

// CaseType is a "zaaktype" from the Catalogi API.
type CaseType struct {
	URI            string `json:"url" validate:"required"`
	Identification string `json:"identificatie"`
	Name           string `json:"omschrijving"`
	GenericName    string `json:"omschrijvingGeneriek"`
}

// CaseStatus is a "status" of a case.
type CaseStatus struct {
	URI        string    `json:"url" validate:"required"`
	Case       string    `json:"zaak"`
	StatusType string    `json:"statustype" validate:"required"`
	SetAt      time.Time `json:"datumStatusGezet"`
	Comment    string    `json:"statustoelichting"`
}

// CaseStatuses is a paginated status listing.
type CaseStatuses struct {
	Count   int          `json:"count"`
	Results []CaseStatus `json:"results" validate:"dive"`
}

// Latest returns the most recently set status.
func (s CaseStatuses) Latest() (CaseStatus, bool) {
	if len(s.Results) == 0 {
		return CaseStatus{}, false
	}
	latest := s.Results[0]
	for _, st := range s.Results[1:] {
		if st.SetAt.After(latest.SetAt) {
			latest = st
		}
	}
	return latest, true
}

// CaseStatusType is a "statustype" from the Catalogi API.
type CaseStatusType struct {
	URI          string `json:"url" validate:"required"`
	Name         string `json:"omschrijving"`
	GenericName  string `json:"omschrijvingGeneriek"`
	Number       int    `json:"volgnummer"`
	IsFinal      bool   `json:"isEindstatus"`
	IsNotifiable bool   `json:"informeren"`
}

// RoleSubject identifies the party behind a case role.
type RoleSubject struct {
	BSN           string `json:"inpBsn,omitempty"`
	KVK           string `json:"innNnpId,omitempty"`
	FirstNames    string `json:"voornamen,omitempty"`
	SurnamePrefix string `json:"voorvoegselGeslachtsnaam,omitempty"`
	Surname       string `json:"geslachtsnaam,omitempty"`
}

// Identification returns the party identification carried by the subject.
func (s RoleSubject) Identification() (PartyIdentification, bool) {
	switch {
	case s.BSN != "":
		return PartyIdentification{Type: IdentificationBSN, Value: s.BSN}, true
	case s.KVK != "":
		return PartyIdentification{Type: IdentificationKVK, Value: s.KVK}, true
	default:
		return PartyIdentification{}, false
	}
}

// CaseRole is a "rol" of a case.
type CaseRole struct {
	URI         string      `json:"url"`
	Case        string      `json:"zaak"`
	SubjectType string      `json:"betrokkeneType"`
	RoleType    string      `json:"roltype"`
	Name        string      `json:"omschrijving"`
	GenericName string      `json:"omschrijvingGeneriek"`
	Subject     RoleSubject `json:"betrokkeneIdentificatie"`
}

// CaseRoles is a paginated role listing.
type CaseRoles struct {
	Count   int        `json:"count"`
	Results []CaseRole `json:"results"`
}

// Decision is a "besluit" from the Besluiten API.
type Decision struct {
	URI             string `json:"url" validate:"required"`
	Identification  string `json:"identificatie"`
	DecisionType    string `json:"besluittype" validate:"required"`
	Case            string `json:"zaak"`
	Date            string `json:"datum"`
	Explanation     string `json:"toelichting"`
	EffectiveDate   string `json:"ingangsdatum"`
	ExpiryDate      string `json:"vervaldatum,omitempty"`
	PublicationDate string `json:"publicatiedatum,omitempty"`
}

// DecisionType is a "besluittype" from the Catalogi API.
type DecisionType struct {
	URI                 string `json:"url" validate:"required"`
	Name                string `json:"omschrijving"`
	GenericName         string `json:"omschrijvingGeneriek"`
	PublicationRequired bool   `json:"publicatieIndicatie"`
}

// LastSegment returns the final path segment of a URI, ignoring a trailing slash.
func LastSegment(uri string) string {
	uri = strings.TrimSuffix(uri, "/")
	if idx := strings.LastIndexByte(uri, '/'); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}
