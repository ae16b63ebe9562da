package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00:30", 30},
		{"01:02:03", 3723},
		{"1:02:03", 3723},
		{"02:30", 150},
		{"90", 90},
		{"0", 0},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2:3", "00:61:00", "00:00:61", "02:75", "-5", "1.5"} {
		_, err := ParseClock(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:30", FormatClock(30))
	assert.Equal(t, "00:01:30", FormatClock(90))
	assert.Equal(t, "01:02:03", FormatClock(3723))
}

func TestTimeRange_Section(t *testing.T) {
	assert.Equal(t, "*00:00:30-00:01:30", TimeRange{Start: 30, End: 90}.Section())
	assert.Equal(t, "*00:01:00-inf", TimeRange{Start: 60, End: -1}.Section())
	assert.Equal(t, "*0-00:00:45", TimeRange{Start: -1, End: 45}.Section())
}
