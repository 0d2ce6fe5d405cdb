package util

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned when a duration expression holds no usable tokens.
var ErrInvalidDuration = errors.New("invalid duration")

var durationToken = regexp.MustCompile(`(\d+)([dhms])`)

var unitSeconds = map[string]uint64{
	"d": 86400,
	"h": 3600,
	"m": 60,
	"s": 1,
}

// ParseDuration converts a compact expression such as "1d2h30m" or "45m" into
// seconds. Tokens are <integer><unit> with unit one of d, h, m, s (any case) and
// may repeat. Characters between tokens are skipped, so "1d and 2h" is 93600.
//
// The result is never zero: an expression without tokens, or one that sums to
// zero, yields ErrInvalidDuration. There is no upper bound other than uint64.
func ParseDuration(text string) (uint64, error) {
	matches := durationToken.FindAllStringSubmatch(strings.ToLower(text), -1)
	if len(matches) == 0 {
		return 0, ErrInvalidDuration
	}

	var total uint64
	for _, m := range matches {
		value, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return 0, ErrInvalidDuration
		}
		unit := unitSeconds[m[2]]
		if value > math.MaxUint64/unit {
			return 0, ErrInvalidDuration
		}
		add := value * unit
		if total > math.MaxUint64-add {
			return 0, ErrInvalidDuration
		}
		total += add
	}

	if total == 0 {
		return 0, ErrInvalidDuration
	}
	return total, nil
}

// FormatSeconds renders seconds in the compact form ParseDuration accepts,
// largest unit first and zero units omitted: 95400 becomes "1d2h30m".
func FormatSeconds(seconds uint64) string {
	if seconds == 0 {
		return "0s"
	}
	var b strings.Builder
	for _, unit := range []string{"d", "h", "m", "s"} {
		size := unitSeconds[unit]
		if n := seconds / size; n > 0 {
			b.WriteString(strconv.FormatUint(n, 10))
			b.WriteString(unit)
			seconds -= n * size
		}
	}
	return b.String()
}
