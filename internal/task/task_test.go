package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	s, err := ParseScope(" Professional ")
	require.NoError(t, err)
	assert.Equal(t, Professional, s)

	_, err = ParseScope("work")
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestParsePriority(t *testing.T) {
	tests := map[string]Priority{"": Medium, "low": Low, "HIGH": High, "m": Medium}
	for in, want := range tests {
		got, err := ParsePriority(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrUnknownPriority)
}

func TestValidatePriority(t *testing.T) {
	for _, p := range Priorities {
		got, err := ValidatePriority(p)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ValidatePriority("")
	require.NoError(t, err)
	assert.Equal(t, Medium, got)

	_, err = ValidatePriority("Urgent")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "priority", verr.Field)
	assert.ErrorIs(t, err, ErrUnknownPriority)

	_, err = ValidatePriority("high")
	assert.Error(t, err, "stored priorities are case-sensitive")
}

func TestPriorityCycle(t *testing.T) {
	assert.Equal(t, High, Medium.Next())
	assert.Equal(t, Low, High.Next())
	assert.Equal(t, High, Low.Prev())
}

func TestValidateText(t *testing.T) {
	got, err := ValidateText("  Buy milk ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got)

	_, err = ValidateText(" \t ")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "text", verr.Field)
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestParseDue(t *testing.T) {
	d, err := ParseDue("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDue("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", d.Format(DateLayout))

	_, err = ParseDue("05/01/2024")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCloneDetachesDue(t *testing.T) {
	d, _ := ParseDue("2024-05-01")
	orig := Task{ID: "a", Due: d}

	c := orig.Clone()
	*c.Due = c.Due.AddDate(0, 0, 1)

	assert.Equal(t, "2024-05-01", orig.DueLabel())
}
