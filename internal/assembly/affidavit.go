package assembly

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/placeholder"
)

const (
	separator = "x -------------------------------- x"
	certText  = "SWORN AND SUBSCRIBED TO BEFORE ME this %d day of %d %d at %s and further certify that I personally examined the affiant and that I am fully satisfied that the affiant voluntarily executed and understood the contents of the foregoing statements."
)

func line(text string, align doctree.Align, marks doctree.Marks) *doctree.Block {
	t := &doctree.Text{Text: text}
	t.SetMarks(marks)
	return &doctree.Block{Kind: doctree.KindParagraph, Align: align, Children: []*doctree.Text{t}}
}

var (
	bold          = doctree.Marks{Bold: true}
	boldUnderline = doctree.Marks{Bold: true, Underline: true}
	plain         = doctree.Marks{}
)

// swornDate is the report date, or now when it is missing or invalid.
func swornDate(c *casefile.CaseDetails, now time.Time) time.Time {
	if d, err := casefile.ParseDate(c.ReportDate); err == nil {
		return d
	}
	return now
}

func officerHome(o casefile.Officer) string {
	if s := o.CompleteAddress.MunicipalityProvince(); s != "" {
		return s
	}
	return o.Address
}

// PoseurBuyerHeader is the caption and sworn intro of the poseur buyer
// affidavit, spoken by the lead arresting officer.
func PoseurBuyerHeader(c *casefile.CaseDetails, now time.Time) []*doctree.Block {
	var province, town string
	if a := c.IncidentAddress; a != nil {
		province, town = a.Province, a.CityOrMunicipality
	}
	o := c.FirstArrestingOfficer()
	age := placeholder.OfficerAge(o.Person, swornDate(c, now))

	intro := fmt.Sprintf("AKO, %s %s taong-gulang, kagawad ng Pulisya at nakatalaga sa %s, naninirahan sa %s, "+
		"matapos na makapanumpa alinsunod sa ipinag-uutos ng Saligang Batas ng Pilipinas ay malaya at kusang loob na nagsasalaysay gaya ng mga sumusunod:",
		strings.ToUpper(o.FullName), age, o.UnitOrStation, officerHome(o))

	return []*doctree.Block{
		line("Lalawigan ng "+province, doctree.AlignNone, bold),
		line("Bayan ng "+town, doctree.AlignNone, plain),
		line(separator, doctree.AlignNone, plain),
		line("SINUMPAANG SALAYSAY", doctree.AlignCenter, boldUnderline),
		line("(Affidavit of Poseur Buyer)", doctree.AlignCenter, plain),
		line(intro, doctree.AlignJustify, plain),
	}
}

// PoseurBuyerFooter is the signature and jurat block. The affiant signs at
// the incident's town; the oath is administered at the station.
func PoseurBuyerFooter(c *casefile.CaseDetails, station *casefile.PoliceStation, now time.Time) []*doctree.Block {
	d := swornDate(c, now)
	day, month, year := d.Day(), int(d.Month()), d.Year()

	stationPlace := ""
	if station != nil {
		stationPlace = station.Address.MunicipalityProvince()
	}

	signed := &doctree.Block{Kind: doctree.KindParagraph, Align: doctree.AlignJustify, Children: []*doctree.Text{
		{Text: "SA KATUNAYAN NG LAHAT", Bold: true},
		{Text: fmt.Sprintf(" ay lumagda ako ng aking pangalan at apelyido ngayong ika-%d ng %d %d dito sa %s.", day, month, year, c.IncidentPlace())},
	}}

	return []*doctree.Block{
		line("", doctree.AlignJustify, plain),
		signed,
		line("", doctree.AlignLeft, plain),
		line(c.FirstArrestingOfficer().FullName, doctree.AlignRight, plain),
		line("(Nagsalaysay)", doctree.AlignRight, plain),
		line("CERTIFICATION", doctree.AlignCenter, boldUnderline),
		line(fmt.Sprintf(certText, day, month, year, stationPlace), doctree.AlignJustify, plain),
		line("", doctree.AlignLeft, plain),
		line(c.AssignedOfficer.FullName, doctree.AlignRight, plain),
		line("Administering Officer", doctree.AlignRight, plain),
	}
}

// PoseurBuyerAffidavit wraps a generated body in the poseur buyer
// boilerplate. The body is numbered; body itself is not modified.
func PoseurBuyerAffidavit(c *casefile.CaseDetails, station *casefile.PoliceStation, body []*doctree.Block, now time.Time) doctree.Document {
	return Assemble(
		PoseurBuyerHeader(c, now),
		NumberParagraphs(body),
		PoseurBuyerFooter(c, station, now),
	)
}
