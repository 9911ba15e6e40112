// Package narrative writes the Tagalog prose that fills the body of an
// affidavit when no generation service is used.
package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/affigen/internal/casefile"
)

func hasText(s string) bool { return strings.TrimSpace(s) != "" }

// sentences collects the parts of one paragraph.
type sentences []string

func (s *sentences) addf(format string, args ...any) {
	*s = append(*s, fmt.Sprintf(format, args...))
}

func (s sentences) join(sep string) string { return strings.Join(s, sep) }

// indexLabel numbers entries only when there is more than one.
func indexLabel(i, n int) string {
	if n > 1 {
		return fmt.Sprintf("(%d) ", i+1)
	}
	return ""
}

// CaseNarrative renders the case record as prose. Paragraphs are separated
// by a blank line and optional sections appear only when their data does.
func CaseNarrative(c *casefile.CaseDetails) string {
	paras := []string{
		overview(c),
		complainant(&c.Complainant),
	}
	if len(c.Suspects) > 0 {
		paras = append(paras, suspects(c.Suspects))
	}
	if len(c.Witnesses) > 0 {
		paras = append(paras, witnesses(c.Witnesses))
	}
	if p := c.PreOperationDetails; p != nil && p.IsBuyBustOperation {
		paras = append(paras, buyBust(p))
	}
	if c.ArrestDetails != nil {
		paras = append(paras, arrest(c.ArrestDetails))
	}
	if len(c.Evidence) > 0 {
		paras = append(paras, evidence(c.Evidence, c.EvidenceSummary))
	}
	if len(c.OfficerEvents) > 0 {
		paras = append(paras, timeline(c.OfficerEvents))
	}
	paras = append(paras, preparation(c))
	if hasText(c.Narrative) {
		paras = append(paras, "Bilang karagdagan, ang detalyadong salaysay ng pangyayari ay ang sumusunod:\n\n"+c.Narrative)
	}
	return strings.Join(paras, "\n\n")
}

func overview(c *casefile.CaseDetails) string {
	var s sentences
	s.addf("Ito ay tumutukoy sa kasong may bilang %s na may pamagat na “%s”.", c.CaseNumber, c.CaseTitle)

	var when []string
	if hasText(c.IncidentDate) {
		when = append(when, "noong "+c.IncidentDate)
	}
	if hasText(c.IncidentTime) {
		when = append(when, "bandang "+c.IncidentTime)
	}
	if len(when) > 0 {
		s.addf("Ang insidente ay naganap %s sa %s.", strings.Join(when, " "), c.IncidentLocation)
	} else {
		s.addf("Ang insidente ay naganap sa %s.", c.IncidentLocation)
	}

	var kind []string
	if hasText(c.IncidentType) {
		kind = append(kind, "na iniuuri bilang "+strings.ToLower(c.IncidentType))
	}
	if hasText(c.InvestigatingUnit) {
		kind = append(kind, "na kasalukuyang iniimbestigahan ng "+c.InvestigatingUnit)
	}
	if len(kind) > 0 {
		s.addf("Ang insidenteng ito ay %s.", strings.Join(kind, " at "))
	}
	s.addf("Ang kasong ito ay may antas ng prayoridad na %s.", c.Priority)
	return s.join(" ")
}

func complainant(c *casefile.Complainant) string {
	var who []string
	if hasText(c.FullName) {
		who = append(who, c.FullName)
	}
	if c.Age != nil {
		who = append(who, fmt.Sprintf("%d taong-gulang", *c.Age))
	}
	if c.Citizenship != "" {
		who = append(who, c.Citizenship)
	}
	if c.CivilStatus != "" {
		who = append(who, strings.ToLower(string(c.CivilStatus)))
	}
	if hasText(c.Address) {
		who = append(who, "nakatira sa "+c.Address)
	}

	var s sentences
	if len(who) > 0 {
		s.addf("Ang nagrereklamo sa kasong ito ay si %s.", strings.Join(who, ", "))
	} else {
		s.addf("May isang nagrereklamong partido sa kasong ito.")
	}

	role := []string{"isang complainant mula sa law enforcement"}
	if c.Role == casefile.RolePrivate {
		role[0] = "isang pribadong complainant"
	}
	if c.IsVictim {
		role = append(role, "na siya ring biktima ng insidente")
	}
	s.addf("Siya ay %s.", strings.Join(role, " at "))
	return s.join(" ")
}

func suspects(list []casefile.Suspect) string {
	lines := make([]string, 0, len(list))
	for i, sp := range list {
		var s sentences
		label := indexLabel(i, len(list))
		if hasText(sp.FullName) {
			s.addf("%ssi %s", label, sp.FullName)
		} else {
			s.addf("%sang isang hindi pa kilalang suspek", label)
		}
		if len(sp.Aliases) > 0 {
			s.addf("na kilala rin sa alyas na %s", strings.Join(sp.Aliases, ", "))
		}
		if sp.Sex != "" {
			s.addf("na may kasariang %s", strings.ToLower(string(sp.Sex)))
		}
		if sp.Occupation != "" {
			s.addf("at ang kanyang trabaho ay %s", sp.Occupation)
		}
		if sp.Address != "" {
			s.addf("na nakatira o huling nanirahan sa %s", sp.Address)
		}
		if sp.IdentificationMethod != "" {
			s.addf("na nakilala sa pamamagitan ng %s", strings.ToLower(string(sp.IdentificationMethod)))
		}
		if sp.IdentificationDetails != "" {
			s.addf("(%s)", sp.IdentificationDetails)
		}
		if sp.RelationshipToComplainantOrWitnesses != "" {
			s.addf("na may ugnayan sa complainant/saksi bilang %s", sp.RelationshipToComplainantOrWitnesses)
		}
		lines = append(lines, s.join(", ")+".")
	}
	return "Ang sumusunod ang kinikilalang suspek/suspek sa kasong ito:\n\n" + strings.Join(lines, "\n")
}

func witnesses(list []casefile.Witness) string {
	lines := make([]string, 0, len(list))
	for i, w := range list {
		var s sentences
		label := indexLabel(i, len(list))
		if hasText(w.FullName) {
			s.addf("%ssi %s", label, w.FullName)
		} else {
			s.addf("%sisang saksi", label)
		}
		addr := w.Address
		if addr == "" {
			addr = "hindi matukoy na tirahan"
		}
		s.addf("na isang %s at naninirahan sa %s", w.WitnessType, addr)
		if w.RelationToComplainantOrAccused != "" {
			s.addf("na may ugnayan sa complainant/akusado bilang %s", w.RelationToComplainantOrAccused)
		}
		s.addf("Na sa oras ng insidente, siya ay nasa %s at personal na %s.", w.LocationDuringIncident, w.ObservationNarrative)
		if w.ObservationConditions != "" {
			s.addf("Ang kanyang obserbasyon ay naapektuhan ng mga sumusunod na kondisyon: %s.", w.ObservationConditions)
		}
		lines = append(lines, s.join(" "))
	}
	return "May mga sumusunod na saksi na may mahalagang kaalaman sa insidente:\n\n" + strings.Join(lines, "\n\n")
}

func buyBust(p *casefile.PreOperationDetails) string {
	var s sentences
	s.addf("Bago ang mismong insidente, isinagawa ang isang buy-bust/entrapment operation.")
	if p.PreOperationReportNumber != "" {
		s.addf("Ito ay nakasaad sa Pre-Operation Report na may bilang %s.", p.PreOperationReportNumber)
	}
	if p.BriefingDate != "" || p.BriefingTime != "" {
		var when []string
		if p.BriefingDate != "" {
			when = append(when, "noong "+p.BriefingDate)
		}
		if p.BriefingTime != "" {
			when = append(when, "bandang "+p.BriefingTime)
		}
		s.addf("Nagkaroon ng pre-operation briefing %s kung saan tinalakay ang plano ng operasyon.", strings.Join(when, " "))
	}
	if p.PreOperationPlanSummary != "" {
		s.addf("Sa naturang briefing, napagkasunduan ang sumusunod na plano: %s.", p.PreOperationPlanSummary)
	}
	if p.InformantUsed != nil {
		if *p.InformantUsed {
			s.addf("Isang informant ang ginamit upang makipag-ugnayan sa suspek.")
		} else {
			s.addf("Walang informant na ginamit sa operasyong ito.")
		}
	}
	if p.MarkedMoneyTotalAmount != nil {
		s.addf("Ang kabuuang halagang ginamit bilang marked money ay %s.", strconv.FormatFloat(*p.MarkedMoneyTotalAmount, 'f', -1, 64))
	}
	if p.MarkedMoneyDetails != "" {
		s.addf("Ang denominasyon at serial number ng marked money ay ang mga sumusunod: %s.", p.MarkedMoneyDetails)
	}
	if p.MarkedMoneyMarkings != "" {
		s.addf("Ang marked money ay may natatanging marka: %s.", p.MarkedMoneyMarkings)
	}
	if p.IntendedTransactionLocation != "" {
		s.addf("Ang napagkasunduang lugar ng transaksyon ay sa %s.", p.IntendedTransactionLocation)
	}
	if p.NegotiationSummary != "" {
		s.addf("Bago ang aktuwal na bentahan, nagkaroon ng pag-uusap na ganito ang buod: %s.", p.NegotiationSummary)
	}
	if p.SaleOrDeliveryNarrative != "" {
		s.addf("Sa mismong bentahan/delivery, ang mga sumunod na pangyayari ay: %s.", p.SaleOrDeliveryNarrative)
	}
	if p.CompletionSignalDescription != "" {
		s.addf("Ang napagkasunduang hudyat ng pagkumpleto ng transaksyon ay: %s.", p.CompletionSignalDescription)
	}
	return s.join(" ")
}

func arrest(a *casefile.ArrestDetails) string {
	var s sentences
	s.addf("Ang pag-aresto ay isinagawa sa paraang %s.", a.ArrestType)
	if a.WarrantDetails != "" {
		s.addf("Ang detalye ng warrant, kung mayroon, ay: %s.", a.WarrantDetails)
	}

	var when []string
	if a.ArrestDate != "" {
		when = append(when, "noong "+a.ArrestDate)
	}
	if a.ArrestTime != "" {
		when = append(when, "bandang "+a.ArrestTime)
	}
	if len(when) > 0 {
		s.addf("Ang aresto ay isinagawa %s sa %s.", strings.Join(when, " "), a.ArrestLocation)
	} else {
		s.addf("Ang aresto ay isinagawa sa %s.", a.ArrestLocation)
	}

	o := a.ArrestingOfficer
	var by []string
	if hasText(o.RankOrPosition) {
		by = append(by, o.RankOrPosition)
	}
	if hasText(o.FullName) {
		by = append(by, o.FullName)
	}
	if hasText(o.UnitOrStation) {
		by = append(by, "ng "+o.UnitOrStation)
	}
	if len(by) > 0 {
		s.addf("Ang pisikal na pag-aresto ay isinagawa ni %s.", strings.Join(by, " "))
	}

	if a.ArrestExecutionNarrative != "" {
		s.addf("Sa pag-aresto, ang mga ginawa at sinabi ng mga pulis ay ang mga sumusunod: %s.", a.ArrestExecutionNarrative)
	}
	if a.RightsInformed {
		s.addf("Ipinaalam sa inarestong suspek ang kanyang mga karapatan alinsunod sa Konstitusyon.")
	} else {
		s.addf("Hindi naipaliwanag sa suspek ang kanyang mga karapatan sa oras ng pag-aresto.")
	}
	if a.RightsExplanationDetails != "" {
		s.addf("Ang pagpapaliwanag sa karapatan ay ginawa sa/wika: %s.", a.RightsExplanationDetails)
	}
	if a.SearchType != "" && a.SearchType != casefile.SearchNone {
		basis := a.SearchBasis
		if basis == "" {
			basis = "legal na batayan"
		}
		s.addf("Matapos ang pag-aresto, isinagawa ang isang %s alinsunod sa %s.", strings.ToLower(string(a.SearchType)), basis)
	}
	if a.SearchNarrative != "" {
		s.addf("Ang detalye ng isinagawang paghahalughog ay ang mga sumusunod: %s.", a.SearchNarrative)
	}
	if a.TransportAndBookingDetails != "" {
		s.addf("Pagkatapos maaresto, ang suspek ay dinala sa %s.", a.TransportAndBookingDetails)
	}
	if a.MedicalExaminationDetails != "" {
		s.addf("Isinailalim ang suspek sa medikal na eksaminasyon na may mga sumusunod na detalye: %s.", a.MedicalExaminationDetails)
	}
	if a.SpontaneousStatements != "" {
		s.addf("Sa panahon ng pag-aresto/pagdadala, ang suspek ay boluntaryong nagbigay ng mga pahayag: %s.", a.SpontaneousStatements)
	}
	return s.join(" ")
}

func evidence(items []casefile.EvidenceItem, summary string) string {
	lines := make([]string, 0, len(items))
	for i, e := range items {
		var s sentences
		s.addf("%s%s, %s", indexLabel(i, len(items)), e.Label, e.Description)
		if e.QuantityOrWeight != "" {
			s.addf("na may sukat/dami na %s", e.QuantityOrWeight)
		}
		s.addf("na narekober sa %s", e.RecoveryLocation)
		s.addf("noong %s bandang %s mula sa kustodiya ni %s", e.SeizureDate, e.SeizureTime, e.FirstCustodianName)
		if e.InventoryType != "" && e.InventoryType != casefile.InventoryNone {
			s.addf("kung saan isinagawa ang %s na inventory/photography", strings.ToLower(string(e.InventoryType)))
		}
		if e.PersonsPresentDuringInventory != "" {
			s.addf("na dinaluhan nina %s sa panahon ng inventory/photography", e.PersonsPresentDuringInventory)
		}
		if len(e.ChainOfCustody) > 0 {
			var chain sentences
			for _, c := range e.ChainOfCustody {
				ref := ""
				if c.Reference != "" {
					ref = " (Ref: " + c.Reference + ")"
				}
				chain.addf("Mula kay %s patungo kay %s noong %s bandang %s para sa layuning %s%s.", c.From, c.To, c.Date, c.Time, c.Purpose, ref)
			}
			s.addf("Ang chain of custody para sa item na ito ay ang mga sumusunod: %s", chain.join(" "))
		}
		lines = append(lines, s.join(", ")+".")
	}

	head := "Ang mga ebidensiya na nakalap sa kasong ito ay ang mga sumusunod:"
	if hasText(summary) {
		head = summary
	}
	return head + "\n\n" + strings.Join(lines, "\n\n")
}

func timeline(events []casefile.OfficerEvent) string {
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf("Noong %s bandang %s, sa %s, isinagawa ang %s na kinabibilangan nina %s gamit ang %s.",
			ev.Date, ev.Time, ev.Location, ev.Action, ev.PeopleInvolved, ev.MaterialsUsed))
	}
	return "Ang kronolohiya ng mga kilos ng mga operatiba sa kasong ito ay ang mga sumusunod:\n\n" + strings.Join(lines, "\n")
}

func preparation(c *casefile.CaseDetails) string {
	var s sentences
	s.addf("Ang ulat na ito ay inihanda noong %s bandang %s.", c.ReportDate, c.ReportTime)

	o := c.AssignedOfficer
	var by []string
	if o.RankOrPosition != "" {
		by = append(by, o.RankOrPosition)
	}
	if o.FullName != "" {
		by = append(by, o.FullName)
	}
	if len(by) > 0 {
		s.addf("Ito ay inihanda ni %s.", strings.Join(by, " "))
	}
	if o.UnitOrStation != "" {
		s.addf("Siya ay nakatalaga sa %s.", o.UnitOrStation)
	}
	if o.BadgeNumber != "" {
		s.addf("May badge/ID number na %s.", o.BadgeNumber)
	}
	return s.join(" ")
}
