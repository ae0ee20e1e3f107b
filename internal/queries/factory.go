package queries

import (
	"fmt"

	"omc/internal/types"
)

// Adapters is the set of register adapters selected for this deployment.
type Adapters struct {
	Zaak        QueryZaak
	Klant       QueryKlant
	Objecten    QueryObjecten
	ObjectTypen QueryObjectTypen
	Besluiten   QueryBesluiten
}

// Settings selects adapter versions and register locations.
type Settings struct {
	ZaakVersion  types.APIVersion
	KlantVersion types.APIVersion
	// OpenZaakURL and KlantURL are scheme and host, e.g. "https://openzaak.example.nl".
	OpenZaakURL string
	KlantURL    string
}

var (
	zaakFactories = map[types.APIVersion]func(*Base, string) QueryZaak{
		types.APIVersionV1: NewZaakV1,
		types.APIVersionV2: NewZaakV2,
	}
	klantFactories = map[types.APIVersion]func(*Base, string) QueryKlant{
		types.APIVersionV1: NewKlantV1,
		types.APIVersionV2: NewKlantV2,
	}
)

// NewAdapters builds the adapters for s. Unknown versions are rejected.
func NewAdapters(base *Base, s Settings) (Adapters, error) {
	newZaak, ok := zaakFactories[s.ZaakVersion]
	if !ok {
		return Adapters{}, unknownVersion("OpenZaak", s.ZaakVersion)
	}
	newKlant, ok := klantFactories[s.KlantVersion]
	if !ok {
		return Adapters{}, unknownVersion("OpenKlant", s.KlantVersion)
	}

	return Adapters{
		Zaak:        newZaak(base, s.OpenZaakURL),
		Klant:       newKlant(base, s.KlantURL),
		Objecten:    NewObjectenV1(base),
		ObjectTypen: NewObjectTypenV1(base),
		Besluiten:   NewBesluitenV1(base),
	}, nil
}

func unknownVersion(register string, v types.APIVersion) error {
	return types.NewAppError(
		types.ErrCodeValidationUnknownVersion,
		fmt.Sprintf("no %s adapter for version %q", register, v),
		nil,
	)
}
