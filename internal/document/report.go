package document

import (
	"errors"
	"fmt"
	"strings"
)

// Report aggregates the non-fatal issues encountered while loading a schema
// family (unresolved hints, failed reads, broken parses). Every issue is
// local to one import occurrence; the presence of issues never invalidates
// the rest of the family.
type Report struct {
	issues []string
}

// Add records one issue.
func (r *Report) Add(msg string) {
	if msg == "" {
		return
	}
	r.issues = append(r.issues, msg)
}

// Addf records one formatted issue.
func (r *Report) Addf(format string, args ...any) {
	r.Add(fmt.Sprintf(format, args...))
}

// Issues returns the recorded issues in encounter order.
func (r *Report) Issues() []string {
	return append([]string(nil), r.issues...)
}

// Empty reports whether nothing went wrong.
func (r *Report) Empty() bool { return len(r.issues) == 0 }

// Err folds all issues into a single error, or nil when the report is empty.
func (r *Report) Err() error {
	if len(r.issues) == 0 {
		return nil
	}
	return errors.New("document: " + strings.Join(r.issues, "; "))
}
