package booking

import "strings"

// Classifier maps the confirmation dialog's error text to an Outcome.
//
// Only text containing ConflictMessage is AlreadyBooked. Everything else, empty or not,
// is Success unless Strict is set, in which case non-empty unknown text is Unexpected.
type Classifier struct {
	ConflictMessage string
	Strict          bool
}

func (c Classifier) Classify(text string) Outcome {
	if c.ConflictMessage != "" && strings.Contains(text, c.ConflictMessage) {
		return OutcomeAlreadyBooked
	}
	if c.Strict && strings.TrimSpace(text) != "" {
		return OutcomeUnexpected
	}
	return OutcomeSuccess
}
