package assembly

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/placeholder"
)

var now = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

func sampleCase() *casefile.CaseDetails {
	return &casefile.CaseDetails{
		CaseNumber:       "2025-0117",
		CaseTitle:        "People vs. Juan Dela Cruz",
		ReportDate:       "2025-03-16",
		IncidentLocation: "Brgy. Poblacion, Mansalay",
		IncidentAddress:  &casefile.PhilippineAddress{Barangay: "Poblacion", CityOrMunicipality: "Mansalay", Province: "Oriental Mindoro"},
		Complainant:      casefile.Complainant{Person: casefile.Person{FullName: "Maria Reyes", Address: "Roxas"}},
		AssignedOfficer: casefile.Officer{
			Person:        casefile.Person{FullName: "Pedro Santos", DateOfBirth: "1990-03-17", Address: "Mansalay"},
			UnitOrStation: "Mansalay MPS",
		},
		ArrestingOfficers: []casefile.Officer{{
			Person: casefile.Person{
				FullName:        "Jose Rizal",
				DateOfBirth:     "1985-06-19",
				CompleteAddress: &casefile.PhilippineAddress{CityOrMunicipality: "Bongabong", Province: "Oriental Mindoro"},
			},
			UnitOrStation: "PDEU",
		}},
		AdministeringOfficer: &casefile.Officer{Person: casefile.Person{FullName: "Atty. Cruz"}},
	}
}

func TestNumberParagraphs(t *testing.T) {
	body := []*doctree.Block{doctree.NewParagraph("A"), doctree.NewParagraph("B")}
	got := NumberParagraphs(body)
	if got[0].Children[0].Text != "1. A" || got[1].Children[0].Text != "2. B" {
		t.Errorf("expected 1. A / 2. B, got %q / %q", got[0].Children[0].Text, got[1].Children[0].Text)
	}
	if body[0].Children[0].Text != "A" {
		t.Error("input body was modified")
	}

	again := NumberParagraphs(got)
	if again[0].Children[0].Text != "1. 1. A" {
		t.Errorf("expected numbering to stack, got %q", again[0].Children[0].Text)
	}
}

func TestNumberParagraphs_SkipsLists(t *testing.T) {
	body := []*doctree.Block{
		doctree.NewParagraph("A"),
		{Kind: doctree.KindBulletedList, Items: []*doctree.Block{{Kind: doctree.KindListItem, Children: []*doctree.Text{{Text: "x"}}}}},
		{Kind: doctree.KindHeading, Level: 1, Children: []*doctree.Text{{Text: "B", Bold: true}}},
	}
	got := NumberParagraphs(body)
	if got[1].Items[0].Children[0].Text != "x" {
		t.Errorf("expected list untouched, got %q", got[1].Items[0].Children[0].Text)
	}
	if r := got[2].Children[0]; r.Text != "2. B" || !r.Bold {
		t.Errorf("expected bold '2. B', got %+v", r)
	}
}

func TestAssemble_Order(t *testing.T) {
	doc := Assemble(
		[]*doctree.Block{doctree.NewParagraph("h")},
		[]*doctree.Block{doctree.NewParagraph("b1"), doctree.NewParagraph("b2")},
		[]*doctree.Block{doctree.NewParagraph("f")},
	)
	if got := doc.PlainText(); got != "h\nb1\nb2\nf" {
		t.Errorf("unexpected order %q", got)
	}
}

func TestPoseurBuyerAffidavit(t *testing.T) {
	station := &casefile.PoliceStation{Name: "Mansalay MPS", Address: casefile.PhilippineAddress{CityOrMunicipality: "Mansalay", Province: "Oriental Mindoro"}}
	body := []*doctree.Block{doctree.NewParagraph("Una."), doctree.NewParagraph("Ikalawa.")}

	doc := PoseurBuyerAffidavit(sampleCase(), station, body, now)
	if len(doc) != 6+2+10 {
		t.Fatalf("expected 18 blocks, got %d", len(doc))
	}
	if doc[0].Text() != "Lalawigan ng Oriental Mindoro" || !doc[0].Children[0].Bold {
		t.Errorf("unexpected province line %q", doc[0].Text())
	}
	if doc[1].Text() != "Bayan ng Mansalay" {
		t.Errorf("unexpected town line %q", doc[1].Text())
	}
	intro := doc[5].Text()
	if !strings.HasPrefix(intro, "AKO, JOSE RIZAL 39 taong-gulang, kagawad ng Pulisya at nakatalaga sa PDEU, naninirahan sa Bongabong, Oriental Mindoro,") {
		t.Errorf("unexpected intro %q", intro)
	}
	if doc[6].Text() != "1. Una." || doc[7].Text() != "2. Ikalawa." {
		t.Errorf("expected numbered body, got %q %q", doc[6].Text(), doc[7].Text())
	}
	if got := doc[9].Text(); got != "SA KATUNAYAN NG LAHAT ay lumagda ako ng aking pangalan at apelyido ngayong ika-16 ng 3 2025 dito sa Mansalay, Oriental Mindoro." {
		t.Errorf("unexpected signature line %q", got)
	}
	if got := doc[11].Text(); got != "Jose Rizal" {
		t.Errorf("expected affiant name, got %q", got)
	}
	if got := doc[14].Text(); !strings.Contains(got, "this 16 day of 3 2025 at Mansalay, Oriental Mindoro and further") {
		t.Errorf("unexpected jurat %q", got)
	}
	if got := doc[14].Text(); !strings.Contains(got, "examined the affiant and that I am fully satisfied that the affiant voluntarily executed") {
		t.Errorf("expected neutral certification wording, got %q", got)
	}
	if got := doc[16].Text(); got != "Pedro Santos" {
		t.Errorf("expected administering officer, got %q", got)
	}
}

func TestTemplateNames(t *testing.T) {
	got := strings.Join(TemplateNames(), ",")
	if got != "arresting-officer,complainant,poseur-buyer,witness" {
		t.Errorf("unexpected template names %s", got)
	}
	if _, err := Template("nope"); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestBuiltinTemplatesUseKnownTokens(t *testing.T) {
	tmpl, err := Template(TemplateArrestingOfficer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	missing := placeholder.Missing(tmpl, placeholder.BuildLookup(sampleCase(), now))
	if len(missing) != 0 {
		t.Errorf("arresting officer template uses unknown keys %v", missing)
	}
}

func TestFastAffidavit_ArrestingOfficer(t *testing.T) {
	doc, err := FastAffidavit(TemplateArrestingOfficer, sampleCase(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 17 {
		t.Fatalf("expected 17 blocks, got %d", len(doc))
	}
	if !strings.HasPrefix(doc[5].Text(), "AKO, Pedro Santos 34 taong-gulang, kagawad ng Pulisya at nakatalaga sa Mansalay MPS, naninirahan sa Mansalay,") {
		t.Errorf("unexpected intro %q", doc[5].Text())
	}
	if !strings.HasPrefix(doc[6].Text(), "Ito ay tumutukoy sa kasong may bilang 2025-0117") {
		t.Errorf("expected generated narration, got %q", doc[6].Text())
	}
	if got := doc[15].Text(); got != "Atty. Cruz" {
		t.Errorf("expected administering officer, got %q", got)
	}
	if strings.Contains(doc.PlainText(), "{{") {
		t.Error("unfilled placeholder left in document")
	}
	if text := doc.PlainText(); strings.Contains(text, "affaint") || strings.Contains(text, " she ") {
		t.Error("certification still uses the misspelled or gendered wording")
	}
}

func TestFastAffidavit_PathTemplates(t *testing.T) {
	doc, err := FastAffidavit(TemplateComplainant, sampleCase(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "AKO, Maria Reyes,  taong-gulang, na may tirahan sa Roxas,"
	if !strings.HasPrefix(doc[0].Text(), want) {
		t.Errorf("expected prefix %q, got %q", want, doc[0].Text())
	}

	doc, err = FastAffidavit(TemplateWitness, sampleCase(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(doc[0].Text(), "AKO, ,  taong-gulang") {
		t.Errorf("expected empty witness fields, got %q", doc[0].Text())
	}
}

func TestArrestingOfficerAffidavit(t *testing.T) {
	body := []*doctree.Block{doctree.NewParagraph("Una."), doctree.NewParagraph("Ikalawa.")}
	doc, err := ArrestingOfficerAffidavit(sampleCase(), body, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 17-1+2 {
		t.Fatalf("expected 18 blocks, got %d", len(doc))
	}
	if doc[6].Text() != "1. Una." || doc[7].Text() != "2. Ikalawa." {
		t.Errorf("expected numbered body in place of narration, got %q %q", doc[6].Text(), doc[7].Text())
	}
	if got := doc[16].Text(); got != "Atty. Cruz" {
		t.Errorf("expected administering officer, got %q", got)
	}
	if strings.Contains(doc.PlainText(), "{{") {
		t.Error("unfilled placeholder left in document")
	}
}
