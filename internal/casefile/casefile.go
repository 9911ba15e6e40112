// Package casefile holds the structured case record that affidavits are
// filled from. Field names follow the JSON the report forms submit.
package casefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// PhilippineAddress is a structured mailing address.
type PhilippineAddress struct {
	BuildingOrHouse      string `json:"buildingOrHouse,omitempty"`
	Street               string `json:"street,omitempty"`
	SubdivisionOrVillage string `json:"subdivisionOrVillage,omitempty"`
	SitioOrPurok         string `json:"sitioOrPurok,omitempty"`
	Barangay             string `json:"barangay"`
	CityOrMunicipality   string `json:"cityOrMunicipality"`
	Province             string `json:"province"`
	Region               string `json:"region,omitempty"`
	PostalCode           string `json:"postalCode,omitempty"`
	Country              string `json:"country"`
}

// MunicipalityProvince renders "City, Province", skipping empty parts.
func (a *PhilippineAddress) MunicipalityProvince() string {
	if a == nil {
		return ""
	}
	return joinNonEmpty(", ", a.CityOrMunicipality, a.Province)
}

// Format renders the full address on one line.
func (a *PhilippineAddress) Format() string {
	if a == nil {
		return ""
	}
	return joinNonEmpty(", ",
		a.BuildingOrHouse, a.Street, a.SubdivisionOrVillage, a.SitioOrPurok,
		a.Barangay, a.CityOrMunicipality, a.Province, a.PostalCode)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

type Person struct {
	FullName        string             `json:"fullName"`
	Age             *int               `json:"age,omitempty"`
	DateOfBirth     string             `json:"dateOfBirth,omitempty"`
	Sex             Sex                `json:"sex,omitempty"`
	Citizenship     string             `json:"citizenship,omitempty"`
	CivilStatus     CivilStatus        `json:"civilStatus,omitempty"`
	Address         string             `json:"address"`
	CompleteAddress *PhilippineAddress `json:"completeAddress,omitempty"`
	ContactNumber   string             `json:"contactNumber,omitempty"`
	Email           string             `json:"email,omitempty"`
}

// HomeAddress prefers the structured address and falls back to the free
// text one.
func (p *Person) HomeAddress() string {
	if s := p.CompleteAddress.Format(); s != "" {
		return s
	}
	return p.Address
}

type Officer struct {
	Person
	RankOrPosition string `json:"rankOrPosition"`
	UnitOrStation  string `json:"unitOrStation"`
	BadgeNumber    string `json:"badgeNumber"`
}

type Complainant struct {
	Person
	IsVictim bool            `json:"isVictim"`
	Role     ComplainantRole `json:"role"`
}

type Suspect struct {
	FullName                             string               `json:"fullName"`
	Aliases                              []string             `json:"aliases,omitempty"`
	Sex                                  Sex                  `json:"sex,omitempty"`
	Occupation                           string               `json:"occupation,omitempty"`
	Address                              string               `json:"address,omitempty"`
	IdentificationMethod                 IdentificationMethod `json:"identificationMethod,omitempty"`
	IdentificationDetails                string               `json:"identificationDetails,omitempty"`
	RelationshipToComplainantOrWitnesses string               `json:"relationshipToComplainantOrWitnesses,omitempty"`
	SuspectEventsNarrative               string               `json:"suspectEventsNarrative,omitempty"`
}

type Witness struct {
	Person
	WitnessType                    WitnessType `json:"witnessType"`
	RelationToComplainantOrAccused string      `json:"relationToComplainantOrAccused,omitempty"`
	LocationDuringIncident         string      `json:"locationDuringIncident"`
	ObservationNarrative           string      `json:"observationNarrative"`
	ObservationConditions          string      `json:"observationConditions,omitempty"`
}

type PoseurBuyer struct {
	Officer
	IsConfidential       bool   `json:"isConfidential"`
	CodeName             string `json:"codeName,omitempty"`
	PoseurBuyerNarrative string `json:"poseurBuyerNarrative,omitempty"`
}

type ChainOfCustodyEntry struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Purpose   string `json:"purpose"`
	Reference string `json:"reference,omitempty"`
}

type EvidenceItem struct {
	Label                         string                `json:"label"`
	Description                   string                `json:"description"`
	QuantityOrWeight              string                `json:"quantityOrWeight,omitempty"`
	RecoveryLocation              string                `json:"recoveryLocation"`
	SeizureDate                   string                `json:"seizureDate"`
	SeizureTime                   string                `json:"seizureTime"`
	FirstCustodianName            string                `json:"firstCustodianName"`
	ChainOfCustody                []ChainOfCustodyEntry `json:"chainOfCustody"`
	InventoryType                 InventoryType         `json:"inventoryType,omitempty"`
	PersonsPresentDuringInventory string                `json:"personsPresentDuringInventory,omitempty"`
}

type OfficerEvent struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	Location       string `json:"location"`
	Action         string `json:"action"`
	PeopleInvolved string `json:"peopleInvolved"`
	MaterialsUsed  string `json:"materialsUsed"`
}

type ArrestDetails struct {
	ArrestType                 ArrestType `json:"arrestType"`
	WarrantDetails             string     `json:"warrantDetails,omitempty"`
	ArrestDate                 string     `json:"arrestDate"`
	ArrestTime                 string     `json:"arrestTime"`
	ArrestLocation             string     `json:"arrestLocation"`
	ArrestingOfficer           Officer    `json:"arrestingOfficer"`
	ArrestExecutionNarrative   string     `json:"arrestExecutionNarrative"`
	RightsInformed             bool       `json:"rightsInformed"`
	RightsExplanationDetails   string     `json:"rightsExplanationDetails,omitempty"`
	SearchType                 SearchType `json:"searchType"`
	SearchBasis                string     `json:"searchBasis,omitempty"`
	SearchNarrative            string     `json:"searchNarrative,omitempty"`
	TransportAndBookingDetails string     `json:"transportAndBookingDetails,omitempty"`
	MedicalExaminationDetails  string     `json:"medicalExaminationDetails,omitempty"`
	SpontaneousStatements      string     `json:"spontaneousStatements,omitempty"`
}

type PreOperationDetails struct {
	IsBuyBustOperation          bool     `json:"isBuyBustOperation"`
	PreOperationReportNumber    string   `json:"preOperationReportNumber,omitempty"`
	BriefingDate                string   `json:"briefingDate,omitempty"`
	BriefingTime                string   `json:"briefingTime,omitempty"`
	PreOperationPlanSummary     string   `json:"preOperationPlanSummary,omitempty"`
	InformantUsed               *bool    `json:"informantUsed,omitempty"`
	MarkedMoneyTotalAmount      *float64 `json:"markedMoneyTotalAmount,omitempty"`
	MarkedMoneyDetails          string   `json:"markedMoneyDetails,omitempty"`
	MarkedMoneyMarkings         string   `json:"markedMoneyMarkings,omitempty"`
	IntendedTransactionLocation string   `json:"intendedTransactionLocation,omitempty"`
	NegotiationSummary          string   `json:"negotiationSummary,omitempty"`
	SaleOrDeliveryNarrative     string   `json:"saleOrDeliveryNarrative,omitempty"`
	CompletionSignalDescription string   `json:"completionSignalDescription,omitempty"`
}

// CaseDetails is the aggregate case record.
type CaseDetails struct {
	CaseNumber        string             `json:"caseNumber"`
	CaseTitle         string             `json:"caseTitle"`
	IncidentDate      string             `json:"incidentDate"`
	IncidentTime      string             `json:"incidentTime"`
	ReportDate        string             `json:"reportDate"`
	ReportTime        string             `json:"reportTime"`
	IncidentType      string             `json:"incidentType"`
	IncidentLocation  string             `json:"incidentLocation"`
	IncidentAddress   *PhilippineAddress `json:"incidentAddress,omitempty"`
	InvestigatingUnit string             `json:"investigatingUnit"`
	Priority          Priority           `json:"priority"`

	Complainant Complainant `json:"complainant"`
	Suspects    []Suspect   `json:"suspects"`
	Witnesses   []Witness   `json:"witnesses"`

	AssignedOfficer      Officer      `json:"assignedOfficer"`
	ArrestingOfficers    []Officer    `json:"arrestingOfficers"`
	PoseurBuyer          *PoseurBuyer `json:"poseurBuyer,omitempty"`
	AdministeringOfficer *Officer     `json:"administeringOfficer,omitempty"`

	PreOperationDetails *PreOperationDetails `json:"preOperationDetails,omitempty"`
	ArrestDetails       *ArrestDetails       `json:"arrestDetails,omitempty"`

	Evidence        []EvidenceItem `json:"evidence"`
	EvidenceSummary string         `json:"evidenceSummary"`
	IncidentSummary string         `json:"incidentSummary"`
	Narrative       string         `json:"narrative"`
	OfficerEvents   []OfficerEvent `json:"officerEvents"`
}

// PoliceStation is the station the affidavits are sworn at.
type PoliceStation struct {
	Name          string            `json:"name"`
	Address       PhilippineAddress `json:"address"`
	ContactNumber string            `json:"contactNumber,omitempty"`
	Email         string            `json:"email,omitempty"`
}

// FirstArrestingOfficer returns the lead arresting officer, or the zero
// officer when none is recorded.
func (c *CaseDetails) FirstArrestingOfficer() Officer {
	if len(c.ArrestingOfficers) == 0 {
		return Officer{}
	}
	return c.ArrestingOfficers[0]
}

// IncidentPlace renders the incident's municipality and province when a
// structured address is present, otherwise the free text location.
func (c *CaseDetails) IncidentPlace() string {
	if s := c.IncidentAddress.MunicipalityProvince(); s != "" {
		return s
	}
	return c.IncidentLocation
}

// Decode reads a case record. Unknown fields are ignored; unknown enum
// values are an error.
func Decode(r io.Reader) (*CaseDetails, error) {
	var c CaseDetails
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode case details: %w", err)
	}
	return &c, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte) (*CaseDetails, error) {
	return Decode(bytes.NewReader(data))
}

// ParseDate accepts a calendar date ("2006-01-02") or an RFC 3339 time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
