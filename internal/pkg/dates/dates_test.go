package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-01-15", "01/15/2024", "1/15/2024", " 2024-01-15 ", "2024-01-15T00:00:00Z", "2024-01-15T00:00:00.000Z"} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s -> %s", in, got)
	}

	got, err := Parse("2024-01-15T05:30:00+05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 30, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "yesterday", "2024-13-01", "15/01/2024"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseEnd(t *testing.T) {
	got, err := ParseEnd("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", ISO(got))
	assert.True(t, got.After(time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)))

	got, err = ParseEnd("2024-01-15T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
}

func TestFormat(t *testing.T) {
	d := time.Date(2024, 3, 7, 22, 0, 0, 0, time.FixedZone("X", -5*3600))
	assert.Equal(t, "2024-03-08", ISO(d))
	assert.Equal(t, "03/08/2024", US(d))
	assert.Equal(t, "", ISOPtr(nil))
	assert.Equal(t, "", USPtr(nil))
	assert.Equal(t, "03/08/2024", USPtr(&d))
}

func TestParseLoose(t *testing.T) {
	tests := map[string]time.Time{
		"2024-01-15":       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"01/15/2024":       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"March 4, 1980":    time.Date(1980, 3, 4, 0, 0, 0, 0, time.UTC),
		"1980-03-04 05:00": time.Date(1980, 3, 4, 5, 0, 0, 0, time.UTC),
	}
	for in, want := range tests {
		got, err := ParseLoose(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLoose("not a date")
	assert.Error(t, err)

	_, err = Parse("March 4, 1980")
	assert.Error(t, err, "strict parsing stays limited to ISO and US slash dates")
}
