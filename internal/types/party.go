package types

import "strings"

// DistributionChannel is the recipient's preferred way of being notified.
type DistributionChannel string

const (
	DistributionNone  DistributionChannel = "none"
	DistributionEmail DistributionChannel = "email"
	DistributionSms   DistributionChannel = "sms"
	DistributionBoth  DistributionChannel = "both"
)

// ParseDistributionChannel maps the loosely formatted values found in the
// party registers onto a DistributionChannel. Unknown values map to None.
func ParseDistributionChannel(raw string) DistributionChannel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "email", "e-mail", "mail":
		return DistributionEmail
	case "sms", "telefoon", "telnr":
		return DistributionSms
	case "both", "beide", "email_sms":
		return DistributionBoth
	default:
		return DistributionNone
	}
}

// CommonPartyData is the normalized identity of a citizen or organization,
// regardless of which party register version it came from. Fields are never
// absent: missing upstream values become empty strings.
type CommonPartyData struct {
	URI                 string              `json:"uri"`
	Name                string              `json:"name"`
	SurnamePrefix       string              `json:"surnamePrefix"`
	Surname             string              `json:"surname"`
	DistributionChannel DistributionChannel `json:"distributionChannel"`
	EmailAddress        string              `json:"emailAddress"`
	TelephoneNumber     string              `json:"telephoneNumber"`
}

// FullSurname joins the Dutch surname prefix and surname ("van der" + "Berg").
func (p CommonPartyData) FullSurname() string {
	return strings.TrimSpace(p.SurnamePrefix + " " + p.Surname)
}

// Normalize returns a copy with trimmed fields and a defined channel.
func (p CommonPartyData) Normalize() CommonPartyData {
	p.URI = strings.TrimSpace(p.URI)
	p.Name = strings.TrimSpace(p.Name)
	p.SurnamePrefix = strings.TrimSpace(p.SurnamePrefix)
	p.Surname = strings.TrimSpace(p.Surname)
	p.EmailAddress = strings.TrimSpace(p.EmailAddress)
	p.TelephoneNumber = strings.TrimSpace(p.TelephoneNumber)
	if p.DistributionChannel == "" {
		p.DistributionChannel = DistributionNone
	}
	return p
}

// IdentificationType identifies the kind of party identifier.
type IdentificationType string

const (
	IdentificationBSN IdentificationType = "bsn"
	IdentificationKVK IdentificationType = "kvk"
)

// PartyIdentification points at a party in the party register.
type PartyIdentification struct {
	Type  IdentificationType `json:"type"`
	Value string             `json:"value"`
}
