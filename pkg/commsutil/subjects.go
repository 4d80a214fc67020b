package commsutil

import (
	"fmt"
	"strings"
)

// DefaultSubjectPrefix is the subject namespace under which controller services listen.
const DefaultSubjectPrefix = "ockam.controller"

// BuildServiceSubject builds the subject addressing a named controller service.
// Dots and whitespace inside the service name are replaced so the name stays one token.
func BuildServiceSubject(prefix, service string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '\t', '*', '>':
			return '_'
		}
		return r
	}, service)
	return fmt.Sprintf("%s.%s", prefix, safe)
}
