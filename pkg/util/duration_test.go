package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"1d2h30m", 86400 + 7200 + 1800},
		{"45m", 2700},
		{"10s", 10},
		{"1D", 86400},
		{"2h2h", 14400},
		{"1d and 2h", 93600},
		{"x5mz", 300},
		{"0m5s", 5},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDuration(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "0m", "0d0h", "12", "h", "99999999999999999999999d"} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDuration(in)
			assert.ErrorIs(t, err, ErrInvalidDuration)
			assert.Zero(t, got)
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0s", FormatSeconds(0))
	assert.Equal(t, "1d2h30m", FormatSeconds(95400))
	assert.Equal(t, "45m", FormatSeconds(2700))
	assert.Equal(t, "1h1s", FormatSeconds(3601))

	back, err := ParseDuration(FormatSeconds(93784))
	require.NoError(t, err)
	assert.EqualValues(t, 93784, back)
}
