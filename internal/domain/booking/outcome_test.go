package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifierDefault(t *testing.T) {
	c := Classifier{ConflictMessage: "Ya existe una reserva"}

	tests := []struct {
		name string
		text string
		want Outcome
	}{
		{"conflict message", "Ya existe una reserva para este horario.", OutcomeAlreadyBooked},
		{"conflict inside whitespace", "\n  Ya existe una reserva  \n", OutcomeAlreadyBooked},
		{"empty text", "", OutcomeSuccess},
		{"unrelated error is fail-open", "Error interno del servidor", OutcomeSuccess},
		{"case differs", "ya existe una reserva", OutcomeSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifierStrict(t *testing.T) {
	c := Classifier{ConflictMessage: "Ya existe una reserva", Strict: true}

	assert.Equal(t, OutcomeAlreadyBooked, c.Classify("Ya existe una reserva"))
	assert.Equal(t, OutcomeSuccess, c.Classify("   "))
	assert.Equal(t, OutcomeUnexpected, c.Classify("Cupo agotado"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "unmatched", OutcomeUnmatched.String())
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "already_booked", OutcomeAlreadyBooked.String())
	assert.Equal(t, "unexpected", OutcomeUnexpected.String())
}

func TestReportCount(t *testing.T) {
	r := Report{Results: []DayResult{
		{Day: 12, Outcome: OutcomeSuccess},
		{Day: 13, Outcome: OutcomeUnmatched},
		{Day: 14, Outcome: OutcomeSuccess},
	}}
	assert.Equal(t, 2, r.Count(OutcomeSuccess))
	assert.Equal(t, 0, r.Count(OutcomeAlreadyBooked))
}
