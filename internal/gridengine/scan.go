// Package gridengine reinterprets legacy GridEngine (SGE) submission
// conventions embedded in a job script's leading comment block and
// rewrites the job descriptor's fields to the scheduler's native
// representation. Parsing tolerates arbitrary, possibly malformed script
// text; anything a scanner cannot recognize is "no match", never a crash.
package gridengine

import (
	"strings"
)

const mib = uint64(1024 * 1024)

// Unit suffix scale factors. Uppercase suffixes are binary, lowercase
// decimal; the multiplier is the unit's full power rather than a
// fall-through accumulation.
var memUnitScale = map[byte]uint64{
	'K': 1024,
	'M': 1024 * 1024,
	'G': 1024 * 1024 * 1024,
	'k': 1000,
	'm': 1000 * 1000,
	'g': 1000 * 1000 * 1000,
}

// scanUint consumes a leading run of digits. ok is false when no digit
// was consumed or the value overflows uint64.
func scanUint(s string) (val uint64, consumed int, ok bool) {
	for consumed < len(s) && s[consumed] >= '0' && s[consumed] <= '9' {
		d := uint64(s[consumed] - '0')
		if val > (^uint64(0)-d)/10 {
			return 0, 0, false
		}
		val = val*10 + d
		consumed++
	}
	return val, consumed, consumed > 0
}

// ScanInt is the generic signed-integer scanner over a bounded span.
func ScanInt(s string) (val int64, consumed int, ok bool) {
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		consumed = 1
	}
	u, n, ok := scanUint(s[consumed:])
	if !ok || u > 1<<63-1 {
		return 0, 0, false
	}
	consumed += n
	val = int64(u)
	if neg {
		val = -val
	}
	return val, consumed, true
}

// ScanMemoryMB scans a GridEngine memory quantity: a sign-free integer
// with an optional K/M/G (binary) or k/m/g (decimal) suffix. The result
// is whole MiB, rounded up, and clamped upward to floorMB when positive
// but below it. A non-numeric leading token is no match.
func ScanMemoryMB(s string, floorMB uint64) (mb uint64, consumed int, ok bool) {
	n, consumed, ok := scanUint(s)
	if !ok {
		return 0, 0, false
	}
	bytes := n
	if consumed < len(s) {
		if scale, found := memUnitScale[s[consumed]]; found {
			if n > 0 && scale > ^uint64(0)/n {
				return 0, 0, false
			}
			bytes = n * scale
			consumed++
		}
	}
	mb = bytes / mib
	if bytes%mib != 0 {
		mb++
	}
	if mb > 0 && mb < floorMB {
		mb = floorMB
	}
	return mb, consumed, true
}

// ScanTimeMinutes scans a GridEngine h_rt value: either H:M:S with fixed
// positions (each part may be empty) or a bare seconds count. The result
// is whole minutes, rounded up. A colon sequence that is not a complete
// H:M:S triple, or a minute count that does not fit 32 bits, is no match.
func ScanTimeMinutes(s string) (minutes uint32, consumed int, ok bool) {
	var parts [3]uint64
	field := 0
	for {
		v, n, numOK := scanUint(s[consumed:])
		if numOK {
			parts[field] = v
			consumed += n
		}
		if consumed < len(s) && s[consumed] == ':' {
			field++
			if field > 2 {
				return 0, 0, false
			}
			consumed++
			continue
		}
		break
	}
	if consumed == 0 {
		return 0, 0, false
	}
	var seconds uint64
	switch field {
	case 0:
		// bare seconds count
		seconds = parts[0]
	case 2:
		if parts[0] > ^uint64(0)/3600 {
			return 0, 0, false
		}
		seconds = 3600 * parts[0]
		if parts[1] > (^uint64(0)-seconds)/60 {
			return 0, 0, false
		}
		seconds += 60 * parts[1]
		if parts[2] > ^uint64(0)-seconds {
			return 0, 0, false
		}
		seconds += parts[2]
	default:
		// a colon not followed by the remaining components
		return 0, 0, false
	}
	min64 := seconds / 60
	if seconds%60 != 0 {
		min64++
	}
	if min64 > uint64(^uint32(0)) {
		return 0, 0, false
	}
	return uint32(min64), consumed, true
}

// ScanBool recognizes exactly the case-insensitive literals TRUE, FALSE,
// 1 and 0 with nothing trailing. Anything else is no match, which callers
// must keep distinct from an explicit false.
func ScanBool(s string) (val bool, ok bool) {
	switch strings.ToUpper(s) {
	case "TRUE", "1":
		return true, true
	case "FALSE", "0":
		return false, true
	}
	return false, false
}
