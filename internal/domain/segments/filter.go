// Package segments narrows parsed time ranges to the ones worth
// clipping: keyword-matched, not excluded, clamped to the real video
// duration, and ordered deterministically for assembly.
package segments

import (
	"iter"
	"slices"
	"strings"
	"time"

	"clipstamp/internal/types"
)

// MinDuration is the shortest segment worth encoding. Clamping against
// the video duration can shrink a range below this; such ranges are
// dropped rather than failing the run.
const MinDuration = time.Second

// Filter converts candidate ranges for one source video into validated
// segments. Keywords and exclude keywords are matched case-insensitively
// as substrings of the range description; an empty keyword list passes
// every range. End offsets are clamped to duration. Output is sorted by
// ascending start with the original order breaking ties, so compilation
// ordering does not depend on which comment contributed a range.
// Overlapping ranges are kept distinct: different commenters may label
// the same moment differently.
func Filter(videoID string, ranges iter.Seq[types.TimeRange], duration time.Duration, keywords, exclude []string) []types.Segment {
	var out []types.Segment
	for r := range ranges {
		if !matches(r.Description, keywords, exclude) {
			continue
		}
		end := min(r.End, duration)
		if end-r.Start < MinDuration {
			continue
		}
		out = append(out, types.Segment{
			VideoID:     videoID,
			Start:       r.Start,
			End:         end,
			Description: r.Description,
		})
	}
	slices.SortStableFunc(out, func(a, b types.Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
	return out
}

func matches(desc string, keywords, exclude []string) bool {
	d := strings.ToLower(desc)
	for _, k := range exclude {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(d, k) {
			return false
		}
	}
	if len(keywords) == 0 {
		return true
	}
	anyKeyword := false
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		anyKeyword = true
		if strings.Contains(d, k) {
			return true
		}
	}
	return !anyKeyword
}
