package casefile

import (
	"encoding/json"
	"fmt"
	"slices"
)

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

type Sex string

const (
	SexMale           Sex = "Male"
	SexFemale         Sex = "Female"
	SexOther          Sex = "Other"
	SexPreferNotToSay Sex = "Prefer Not To Say"
)

type CivilStatus string

const (
	CivilSingle    CivilStatus = "Single"
	CivilMarried   CivilStatus = "Married"
	CivilWidowed   CivilStatus = "Widowed"
	CivilSeparated CivilStatus = "Separated"
	CivilOther     CivilStatus = "Other"
)

type ArrestType string

const (
	ArrestWarrant            ArrestType = "Warrant"
	ArrestInFlagrante        ArrestType = "InFlagranteDelicto"
	ArrestHotPursuit         ArrestType = "HotPursuit"
	ArrestVoluntarySurrender ArrestType = "VoluntarySurrender"
	ArrestNotYet             ArrestType = "Not yet arrested"
)

type WitnessType string

const (
	WitnessCivilian         WitnessType = "CivilianEyewitness"
	WitnessArrestingOfficer WitnessType = "ArrestingOfficer"
	WitnessPoseurBuyer      WitnessType = "PoseurBuyer"
	WitnessExpert           WitnessType = "Expert"
	WitnessOther            WitnessType = "Other"
)

type ComplainantRole string

const (
	RolePrivate        ComplainantRole = "PrivateComplainant"
	RoleLawEnforcement ComplainantRole = "LawEnforcementComplainant"
)

type IdentificationMethod string

const (
	IDCaughtInTheAct          IdentificationMethod = "CaughtInTheAct"
	IDIdentifiedByComplainant IdentificationMethod = "IdentifiedByComplainant"
	IDIdentifiedByWitness     IdentificationMethod = "IdentifiedByWitness"
	IDIdentifiedByInformant   IdentificationMethod = "IdentifiedByInformant"
	IDPhotoLineup             IdentificationMethod = "PhotoLineup"
	IDInPersonLineup          IdentificationMethod = "InPersonLineup"
	IDOther                   IdentificationMethod = "Other"
)

type SearchType string

const (
	SearchNone     SearchType = "None"
	SearchBody     SearchType = "BodySearch"
	SearchVehicle  SearchType = "VehicleSearch"
	SearchPremises SearchType = "PremisesSearch"
)

type InventoryType string

const (
	InventoryNone        InventoryType = "None"
	InventoryOnly        InventoryType = "InventoryOnly"
	InventoryPhotography InventoryType = "PhotographyOnly"
	InventoryBoth        InventoryType = "InventoryAndPhotography"
)

// decodeEnum unmarshals a string that must be empty or one of allowed.
func decodeEnum[T ~string](data []byte, dst *T, allowed ...T) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := T(s)
	if v != "" && !slices.Contains(allowed, v) {
		return fmt.Errorf("unknown %T value %q", v, s)
	}
	*dst = v
	return nil
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, p, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical)
}

func (s *Sex) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, s, SexMale, SexFemale, SexOther, SexPreferNotToSay)
}

func (c *CivilStatus) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, c, CivilSingle, CivilMarried, CivilWidowed, CivilSeparated, CivilOther)
}

func (a *ArrestType) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, a, ArrestWarrant, ArrestInFlagrante, ArrestHotPursuit, ArrestVoluntarySurrender, ArrestNotYet)
}

func (w *WitnessType) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, w, WitnessCivilian, WitnessArrestingOfficer, WitnessPoseurBuyer, WitnessExpert, WitnessOther)
}

func (r *ComplainantRole) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, r, RolePrivate, RoleLawEnforcement)
}

func (m *IdentificationMethod) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, m, IDCaughtInTheAct, IDIdentifiedByComplainant, IDIdentifiedByWitness,
		IDIdentifiedByInformant, IDPhotoLineup, IDInPersonLineup, IDOther)
}

func (s *SearchType) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, s, SearchNone, SearchBody, SearchVehicle, SearchPremises)
}

func (i *InventoryType) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, i, InventoryNone, InventoryOnly, InventoryPhotography, InventoryBoth)
}
