package narrative

import (
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
)

func baseCase() *casefile.CaseDetails {
	return &casefile.CaseDetails{
		CaseNumber:       "2025-0117",
		CaseTitle:        "People vs. Juan Dela Cruz",
		IncidentDate:     "2025-03-10",
		IncidentTime:     "21:30",
		IncidentType:     "Sale of Illegal Drugs",
		IncidentLocation: "Brgy. Poblacion, Mansalay",
		Priority:         casefile.PriorityHigh,
		ReportDate:       "2025-03-11",
		ReportTime:       "08:00",
		Complainant: casefile.Complainant{
			Person: casefile.Person{FullName: "PSSg Pedro Santos"},
			Role:   casefile.RoleLawEnforcement,
		},
		AssignedOfficer: casefile.Officer{
			Person:         casefile.Person{FullName: "Pedro Santos"},
			RankOrPosition: "PSSg",
			BadgeNumber:    "B-1029",
		},
	}
}

func TestCaseNarrative_RequiredSections(t *testing.T) {
	got := CaseNarrative(baseCase())
	paras := strings.Split(got, "\n\n")
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d:\n%s", len(paras), got)
	}
	wantFirst := "Ito ay tumutukoy sa kasong may bilang 2025-0117 na may pamagat na “People vs. Juan Dela Cruz”. " +
		"Ang insidente ay naganap noong 2025-03-10 bandang 21:30 sa Brgy. Poblacion, Mansalay. " +
		"Ang insidenteng ito ay na iniuuri bilang sale of illegal drugs. " +
		"Ang kasong ito ay may antas ng prayoridad na High."
	if paras[0] != wantFirst {
		t.Errorf("unexpected overview:\n%s", paras[0])
	}
	if paras[1] != "Ang nagrereklamo sa kasong ito ay si PSSg Pedro Santos. Siya ay isang complainant mula sa law enforcement." {
		t.Errorf("unexpected complainant paragraph:\n%s", paras[1])
	}
	if paras[2] != "Ang ulat na ito ay inihanda noong 2025-03-11 bandang 08:00. Ito ay inihanda ni PSSg Pedro Santos. May badge/ID number na B-1029." {
		t.Errorf("unexpected preparation paragraph:\n%s", paras[2])
	}
}

func TestCaseNarrative_OptionalSections(t *testing.T) {
	c := baseCase()
	yes := true
	amount := 1500.0
	c.Suspects = []casefile.Suspect{{FullName: "Juan Dela Cruz", Aliases: []string{"Jun"}}, {}}
	c.PreOperationDetails = &casefile.PreOperationDetails{IsBuyBustOperation: true, InformantUsed: &yes, MarkedMoneyTotalAmount: &amount}
	c.ArrestDetails = &casefile.ArrestDetails{ArrestType: casefile.ArrestInFlagrante, ArrestLocation: "tindahan", RightsInformed: true, SearchType: casefile.SearchBody}
	c.Evidence = []casefile.EvidenceItem{{
		Label: "Sachet", Description: "heat-sealed", RecoveryLocation: "bulsa",
		ChainOfCustody: []casefile.ChainOfCustodyEntry{{From: "A", To: "B", Purpose: "lab", Reference: "R-1"}},
	}}
	c.Narrative = "Detalye."

	got := CaseNarrative(c)
	for _, want := range []string{
		"(1) si Juan Dela Cruz, na kilala rin sa alyas na Jun.",
		"(2) ang isang hindi pa kilalang suspek.",
		"Isang informant ang ginamit upang makipag-ugnayan sa suspek.",
		"Ang kabuuang halagang ginamit bilang marked money ay 1500.",
		"Ang pag-aresto ay isinagawa sa paraang InFlagranteDelicto.",
		"isinagawa ang isang bodysearch alinsunod sa legal na batayan.",
		"(Ref: R-1).",
		"Ang mga ebidensiya na nakalap sa kasong ito ay ang mga sumusunod:\n\nSachet, heat-sealed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected narrative to contain %q", want)
		}
	}
	if !strings.HasSuffix(got, "ang detalyadong salaysay ng pangyayari ay ang sumusunod:\n\nDetalye.") {
		t.Error("expected free narrative last")
	}
}

func TestOfficerIntro(t *testing.T) {
	asOf := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	o := casefile.Officer{
		Person:        casefile.Person{FullName: " Pedro Santos ", DateOfBirth: "1990-03-17", Address: "Mansalay"},
		UnitOrStation: "Mansalay MPS",
	}
	want := "AKO, Pedro Santos, 34 taong-gulang, isang kagawad ng Pulisya na nakatalaga sa Mansalay MPS, naninirahan sa Mansalay" + oath
	if got := OfficerIntro(o, asOf); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}

	if got := OfficerIntro(casefile.Officer{}, asOf); got != "AKO"+oath {
		t.Errorf("expected bare intro, got %q", got)
	}
}
