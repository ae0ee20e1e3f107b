package scenarios

import (
	"maps"

	"omc/internal/types"
)

// Template placeholders.
const (
	keyFirstName     = "klant.voornaam"
	keySurnamePrefix = "klant.voorvoegselAchternaam"
	keySurname       = "klant.achternaam"

	keyCaseID           = "zaak.identificatie"
	keyCaseName         = "zaak.omschrijving"
	keyCaseRegistration = "zaak.registratiedatum"
	keyCaseEndDate      = "zaak.einddatum"
	keyCaseTypeName     = "zaaktype.omschrijving"

	keyStatusName    = "status.omschrijving"
	keyStatusComment = "status.toelichting"

	keyDecisionID          = "besluit.identificatie"
	keyDecisionDate        = "besluit.datum"
	keyDecisionExplanation = "besluit.toelichting"
	keyDecisionEffective   = "besluit.ingangsdatum"
	keyDecisionTypeName    = "besluittype.omschrijving"

	keyTaskTitle      = "taak.titel"
	keyTaskExpiration = "taak.verloopdatum"

	keyMessageSubject     = "bericht.onderwerp"
	keyMessagePublication = "bericht.publicatiedatum"

	keyProductName = "product.naam"

	keyObjectTypeName = "objecttype.naam"
)

// personalize merges the party values into a copy of values.
func personalize(party types.CommonPartyData, values map[string]any) map[string]any {
	out := make(map[string]any, len(values)+3)
	maps.Copy(out, values)
	out[keyFirstName] = party.Name
	out[keySurnamePrefix] = party.SurnamePrefix
	out[keySurname] = party.Surname
	return out
}

func caseValues(c types.Case, ct types.CaseType) map[string]any {
	return map[string]any{
		keyCaseID:           c.Identification,
		keyCaseName:         c.Name,
		keyCaseRegistration: c.RegistrationDate,
		keyCaseTypeName:     ct.Name,
	}
}
