// FILE: lixenwraith/mapconf/units/units.go

// Package units parses the human-readable duration and data-size literals used
// in configuration files ("1h30m", "2d", "512MiB"). Malformed input yields
// zero rather than an error.
package units

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

var durationUnits = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond, "µs": time.Microsecond,
	"ms": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": Day, "day": Day, "days": Day,
	"w": Week, "week": Week, "weeks": Week,
}

// ParseDuration parses text into a duration. A bare number is read as
// seconds. Otherwise the text is a sequence of number+unit terms, optionally
// separated by spaces, where the units are those of time.ParseDuration plus
// d (day), w (week) and their long spellings.
func ParseDuration(text string) time.Duration {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n < 0 {
			return 0
		}
		return FromSeconds(n)
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0
		}
		return d
	}

	var total float64
	rest := s
	for rest != "" {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}

		i := 0
		for i < len(rest) && (rest[i] == '.' || (rest[i] >= '0' && rest[i] <= '9')) {
			i++
		}
		if i == 0 {
			return 0
		}
		n, err := strconv.ParseFloat(rest[:i], 64)
		if err != nil {
			return 0
		}
		rest = strings.TrimLeftFunc(rest[i:], unicode.IsSpace)

		j := 0
		for j < len(rest) {
			r := rune(rest[j])
			if rest[j] >= 0x80 {
				// µ is the only multibyte unit rune
				if strings.HasPrefix(rest[j:], "µ") {
					j += len("µ")
					continue
				}
				return 0
			}
			if !unicode.IsLetter(r) {
				break
			}
			j++
		}
		unit, ok := durationUnits[strings.ToLower(rest[:j])]
		if !ok {
			return 0
		}
		rest = rest[j:]
		total += n * float64(unit)
	}

	return fromNanos(total)
}

// FromSeconds converts a float count of seconds into a duration. NaN,
// infinities and values outside the int64 nanosecond range yield zero.
func FromSeconds(n float64) time.Duration {
	return fromNanos(n * float64(time.Second))
}

func fromNanos(ns float64) time.Duration {
	// float64(MaxInt64) rounds up to 2^63, so the bound is exclusive
	if math.IsNaN(ns) || ns >= math.MaxInt64 || ns < math.MinInt64 {
		return 0
	}
	return time.Duration(ns)
}

// Seconds parses text with ParseDuration and truncates to whole seconds.
func Seconds(text string) int64 {
	return int64(ParseDuration(text) / time.Second)
}

// ParseDataSize parses text such as "512", "64KiB", "10 MB" or "1.5GiB" into
// a byte count. SI units (kB, MB) are powers of 1000 and IEC units (KiB, MiB)
// powers of 1024.
func ParseDataSize(text string) int64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	n, err := humanize.ParseBytes(s)
	if err != nil || n > math.MaxInt64 {
		return 0
	}
	return int64(n)
}

// FormatDataSize renders a byte count with IEC units, the inverse of
// ParseDataSize for whole-unit values.
func FormatDataSize(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}
