// Package timestamps turns free-text comments into ordered time-range
// candidates. Viewers mark moments with lines like "2:45 tingles";
// consecutive timestamp lines chain into ranges, and a single line may
// carry an explicit "0:10 - 0:45 desc" pair.
package timestamps

import (
	"iter"
	"strconv"
	"strings"
	"time"

	"clipstamp/internal/types"
)

// leadingTrim covers bullets and minor punctuation commenters put in
// front of a timestamp.
const leadingTrim = " \t-*•>—–~([“\"'"

var pairSeparators = []string{" - ", " – ", " — ", " ~ ", "-", "–", "—", "~"}

// Parse returns a lazy, restartable sequence of ranges found in one
// comment. Each iteration re-walks the text; nothing is shared between
// parses, so the same sequence can be ranged over more than once.
//
// Chaining rule: a line whose token parses defines the start of a
// range, the next timestamp line's token defines its end, and the
// description is the free text on the line that closes the range. A
// trailing timestamp line with no successor yields nothing. Malformed
// tokens are skipped without failing the comment.
func Parse(text string) iter.Seq[types.TimeRange] {
	return func(yield func(types.TimeRange) bool) {
		var (
			prev     time.Duration
			havePrev bool
		)
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimLeft(line, leadingTrim)

			if start, end, desc, ok := parsePairLine(line); ok {
				// An explicit pair stands alone and does not chain.
				havePrev = false
				if start < end {
					if !yield(types.TimeRange{Start: start, End: end, Description: desc}) {
						return
					}
				}
				continue
			}

			at, desc, ok := parseStampLine(line)
			if !ok {
				continue
			}
			if havePrev && prev < at {
				if !yield(types.TimeRange{Start: prev, End: at, Description: desc}) {
					return
				}
			}
			prev = at
			havePrev = true
		}
	}
}

// parseStampLine splits a line into a leading timestamp token and the
// trimmed description that follows it.
func parseStampLine(line string) (time.Duration, string, bool) {
	token, rest := splitToken(line)
	at, ok := ParseToken(token)
	if !ok {
		return 0, "", false
	}
	return at, strings.TrimSpace(rest), true
}

// parsePairLine recognizes "H:MM:SS - H:MM:SS desc" style lines.
func parsePairLine(line string) (start, end time.Duration, desc string, ok bool) {
	token, rest := splitToken(line)
	start, ok = ParseToken(token)
	if !ok {
		return 0, 0, "", false
	}
	for _, sep := range pairSeparators {
		after, found := strings.CutPrefix(strings.TrimSpace(rest), sep)
		if !found {
			continue
		}
		after = strings.TrimSpace(after)
		endToken, tail := splitToken(after)
		end, ok = ParseToken(endToken)
		if !ok {
			return 0, 0, "", false
		}
		return start, end, strings.TrimSpace(tail), true
	}
	return 0, 0, "", false
}

// splitToken cuts the candidate timestamp token off the front of a
// line. The token runs up to the first rune that is neither a digit
// nor a colon; a trailing "]" or ")" bullet close is tolerated.
func splitToken(line string) (token, rest string) {
	i := 0
	for i < len(line) && (isDigit(line[i]) || line[i] == ':') {
		i++
	}
	token = line[:i]
	rest = line[i:]
	rest = strings.TrimLeft(rest, "])")
	return token, rest
}

// ParseToken converts an H:MM:SS, M:SS or MM:SS token to an offset.
// Minutes and seconds must be below 60; anything else is malformed.
func ParseToken(token string) (time.Duration, bool) {
	parts := strings.Split(token, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		if p == "" || len(p) > 2 {
			return 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		vals[i] = n
	}

	var hours, minutes, seconds int
	if len(vals) == 2 {
		minutes, seconds = vals[0], vals[1]
	} else {
		hours, minutes, seconds = vals[0], vals[1], vals[2]
	}
	if minutes >= 60 || seconds >= 60 {
		return 0, false
	}
	total := hours*3600 + minutes*60 + seconds
	return time.Duration(total) * time.Second, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
