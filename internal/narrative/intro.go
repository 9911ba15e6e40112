package narrative

import (
	"strings"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/placeholder"
)

const oath = ", matapos na makapanumpa alinsunod sa ipinag-uutos ng Saligang Batas ng Pilipinas ay malaya at kusang loob na nagsasalaysay gaya ng mga sumusunod:"

// OfficerIntro is the sworn opening line of an officer's affidavit. Blank
// fields drop their clause; the age is derived from the date of birth as
// of asOf when no explicit age is recorded.
func OfficerIntro(o casefile.Officer, asOf time.Time) string {
	var b strings.Builder
	b.WriteString("AKO")

	if name := strings.TrimSpace(o.FullName); name != "" {
		b.WriteString(", " + name)
	}
	if age := placeholder.OfficerAge(o.Person, asOf); age != "" {
		b.WriteString(", " + age + " taong-gulang")
	}

	rank := strings.TrimSpace(o.RankOrPosition)
	station := strings.TrimSpace(o.UnitOrStation)
	if rank != "" || station != "" {
		if rank == "" {
			rank = "kagawad ng Pulisya"
		}
		b.WriteString(", isang " + rank)
		if station != "" {
			b.WriteString(" na nakatalaga sa " + station)
		}
	}

	if addr := strings.TrimSpace(o.Address); addr != "" {
		b.WriteString(", naninirahan sa " + addr)
	}
	b.WriteString(oath)
	return b.String()
}
