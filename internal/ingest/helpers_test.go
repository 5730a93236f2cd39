package ingest

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const header = "property_address,rent_per_month,property_type,available_date," +
	"preferred_nationality,preferred_profession,preferred_race,pets_allowed"

// validLine renders a data line that passes every rule.
func validLine(n int) string {
	return fmt.Sprintf("%d Orchard Rd,%d,HDB,2025-01-01,Singaporean,PROFESSIONAL,CHINESE,yes", n, 2000+n)
}

// csvOf joins header and lines into file content.
func csvOf(lines ...string) []byte {
	return []byte(header + "\n" + strings.Join(lines, "\n") + "\n")
}

func quietLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

type logrusHook struct{ *test.Hook }

func (h *logrusHook) has(level logrus.Level, msg string) bool {
	for _, e := range h.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
