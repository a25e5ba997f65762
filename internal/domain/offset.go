package domain

import (
	"fmt"
	"strings"
	"time"
)

// bstOffsetSeconds is the assumed offset for warnings issued outside GMT.
// The source covers one region whose only alternative to GMT is British
// Summer Time; other offsets are out of scope.
const bstOffsetSeconds = 3600

// ForecastOffset derives the signed UTC offset, in seconds, from the
// forecast's issue datetime (RFC 3339 with an embedded offset). The payload
// carries exactly one such value per fetch; the caller attaches the result
// to every record of that fetch rather than re-deriving per record.
func ForecastOffset(issueDate string) (int, error) {
	t, err := time.Parse(time.RFC3339, issueDate)
	if err != nil {
		return 0, fmt.Errorf("parse issue datetime %q: %w", issueDate, err)
	}
	_, off := t.Zone()
	return off, nil
}

// WarningOffset derives a whole warning's UTC offset from its issued-at
// text: a literal "GMT" marker means zero, anything else is taken as BST
// (+1 hour). Known single-region simplification; see the package doc.
func WarningOffset(issuedText string) int {
	if strings.Contains(issuedText, "GMT") {
		return 0
	}
	return bstOffsetSeconds
}
