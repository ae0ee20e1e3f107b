package types

// CitizenData is a "klant" from the OpenKlant v1 API.
type CitizenData struct {
	URI                 string `json:"url" validate:"required"`
	CustomerNumber      string `json:"klantnummer"`
	Name                string `json:"voornaam"`
	SurnamePrefix       string `json:"voorvoegselAchternaam"`
	Surname             string `json:"achternaam"`
	TelephoneNumber     string `json:"telefoonnummer"`
	EmailAddress        string `json:"emailadres"`
	DistributionChannel string `json:"aanmaakkanaal"`
}

// CitizenResults is the OpenKlant v1 listing.
type CitizenResults struct {
	Count   int           `json:"count"`
	Results []CitizenData `json:"results" validate:"dive"`
}

// ToCommon maps a v1 citizen onto the normalized party shape.
func (c CitizenData) ToCommon() CommonPartyData {
	return CommonPartyData{
		URI:                 c.URI,
		Name:                c.Name,
		SurnamePrefix:       c.SurnamePrefix,
		Surname:             c.Surname,
		DistributionChannel: ParseDistributionChannel(c.DistributionChannel),
		EmailAddress:        c.EmailAddress,
		TelephoneNumber:     c.TelephoneNumber,
	}.Normalize()
}

// Digital address kinds in OpenKlant v2.
const (
	DigitalAddressEmail = "email"
	DigitalAddressPhone = "telefoonnummer"
)

// DigitalAddress is a "digitaal adres" of a party.
type DigitalAddress struct {
	UUID    string `json:"uuid"`
	URI     string `json:"url"`
	Address string `json:"adres"`
	Kind    string `json:"soortDigitaalAdres"`
}

// ContactName carries the name parts of a natural person party.
type ContactName struct {
	FirstName     string `json:"voornaam"`
	SurnamePrefix string `json:"voorvoegselAchternaam"`
	Surname       string `json:"achternaam"`
}

// PartyIdentificationV2 holds the person specific data of a party.
type PartyIdentificationV2 struct {
	ContactName ContactName `json:"contactnaam"`
}

// UUIDRef is a reference by UUID as used throughout OpenKlant v2.
type UUIDRef struct {
	UUID string `json:"uuid"`
}

// PartyExpansion holds the expanded relations of a party.
type PartyExpansion struct {
	DigitalAddresses []DigitalAddress `json:"digitaleAdressen"`
}

// PartyResult is a "partij" from the OpenKlant v2 API.
type PartyResult struct {
	URI              string                `json:"url" validate:"required"`
	UUID             string                `json:"uuid"`
	PreferredAddress *UUIDRef              `json:"voorkeursDigitaalAdres"`
	Identification   PartyIdentificationV2 `json:"partijIdentificatie"`
	Expansion        PartyExpansion        `json:"_expand"`
}

// PartyResults is the OpenKlant v2 listing.
type PartyResults struct {
	Count   int           `json:"count"`
	Results []PartyResult `json:"results" validate:"dive"`
}

// ToCommon maps a v2 party onto the normalized party shape. A preferred
// digital address decides the channel; without one the available addresses
// do.
func (p PartyResult) ToCommon() CommonPartyData {
	party := CommonPartyData{
		URI:           p.URI,
		Name:          p.Identification.ContactName.FirstName,
		SurnamePrefix: p.Identification.ContactName.SurnamePrefix,
		Surname:       p.Identification.ContactName.Surname,
	}

	var preferredKind string
	for _, addr := range p.Expansion.DigitalAddresses {
		switch addr.Kind {
		case DigitalAddressEmail:
			if party.EmailAddress == "" {
				party.EmailAddress = addr.Address
			}
		case DigitalAddressPhone:
			if party.TelephoneNumber == "" {
				party.TelephoneNumber = addr.Address
			}
		}
		if p.PreferredAddress != nil && addr.UUID == p.PreferredAddress.UUID {
			preferredKind = addr.Kind
			// The preferred address wins over the first one of its kind.
			if addr.Kind == DigitalAddressEmail {
				party.EmailAddress = addr.Address
			} else if addr.Kind == DigitalAddressPhone {
				party.TelephoneNumber = addr.Address
			}
		}
	}

	switch {
	case preferredKind == DigitalAddressEmail:
		party.DistributionChannel = DistributionEmail
	case preferredKind == DigitalAddressPhone:
		party.DistributionChannel = DistributionSms
	case party.EmailAddress != "" && party.TelephoneNumber != "":
		party.DistributionChannel = DistributionBoth
	case party.EmailAddress != "":
		party.DistributionChannel = DistributionEmail
	case party.TelephoneNumber != "":
		party.DistributionChannel = DistributionSms
	default:
		party.DistributionChannel = DistributionNone
	}

	return party.Normalize()
}

// ContactMoment is the OpenKlant v1 "contactmoment" feedback record.
type ContactMoment struct {
	SourceOrg        string `json:"bronorganisatie"`
	RegistrationDate string `json:"registratiedatum"`
	Channel          string `json:"kanaal"`
	Text             string `json:"tekst"`
	Initiator        string `json:"initiatiefnemer"`
}

// ObjectContactMoment links a contact moment to a case.
type ObjectContactMoment struct {
	ContactMoment string `json:"contactmoment"`
	Object        string `json:"object"`
	ObjectType    string `json:"objectType"`
}

// CustomerContact is the OpenKlant v2 "klantcontact" feedback record.
type CustomerContact struct {
	Channel    string `json:"kanaal"`
	Subject    string `json:"onderwerp"`
	Content    string `json:"inhoud"`
	Succeeded  bool   `json:"indicatieContactGelukt"`
	Language   string `json:"taal"`
	Private    bool   `json:"vertrouwelijk"`
	OccurredAt string `json:"plaatsgevondenOp"`
}

// ContactInvolvement links a customer contact to a party.
type ContactInvolvement struct {
	WasParty   UUIDRef `json:"wasPartij"`
	HadContact UUIDRef `json:"hadKlantcontact"`
	Role       string  `json:"rol"`
	Initiator  bool    `json:"initiator"`
}

// CreatedResource is the minimal response of a create call.
type CreatedResource struct {
	URI  string `json:"url" validate:"required"`
	UUID string `json:"uuid,omitempty"`
}
