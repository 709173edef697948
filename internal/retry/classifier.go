package retry

import (
	"strings"

	"github.com/stratadb/strata-go/pkg/strata"
)

// transientPhrases is the vocabulary of transient-network phrases matched
// (case-insensitively) against unstructured error messages. This is a
// compatibility shim for errors that cross a boundary without structured
// kind information; the kind table is the primary classification path.
var transientPhrases = []string{
	"connection refused",
	"timeout",
	"connection reset",
	"unreachable",
}

// KindClassifier implements strata.ErrorClassifier for the Strata error
// taxonomy.
//
// Retryability per kind:
//
//	connection error      yes
//	timeout error         yes
//	resource limit        yes
//	authentication error  no
//	permission error      no
//	invalid query         no
//	stream error          no
//
// Errors without a structured kind are retryable only when their message
// contains one of the transient-network phrases.
type KindClassifier struct{}

// NewKindClassifier creates a new classifier for strata error kinds.
func NewKindClassifier() *KindClassifier {
	return &KindClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *KindClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if kind, ok := strata.KindOf(err); ok {
		switch kind {
		case strata.KindConnection, strata.KindTimeout, strata.KindResourceLimit:
			return true
		default:
			return false
		}
	}

	return isTransientMessage(err.Error())
}

// isTransientMessage reports whether an unstructured error message matches
// the transient-network vocabulary. Kept as a standalone function so the
// fallback path can be unit-tested independently of the kind table.
func isTransientMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, phrase := range transientPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

var _ strata.ErrorClassifier = (*KindClassifier)(nil)
