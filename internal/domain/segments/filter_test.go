package segments

import (
	"iter"
	"slices"
	"testing"
	"time"

	"clipstamp/internal/types"
)

func sec(n float64) time.Duration { return time.Duration(n * float64(time.Second)) }

func ranges(rs ...types.TimeRange) iter.Seq[types.TimeRange] {
	return slices.Values(rs)
}

func TestFilter_Keywords(t *testing.T) {
	t.Parallel()

	in := []types.TimeRange{
		{Start: sec(120), End: sec(165), Description: "tingles"},
		{Start: sec(165), End: sec(300), Description: "outro"},
	}

	cases := []struct {
		name     string
		keywords []string
		exclude  []string
		want     []string
	}{
		{name: "include match", keywords: []string{"tingles"}, want: []string{"tingles"}},
		{name: "case insensitive", keywords: []string{"TINGLES"}, want: []string{"tingles"}},
		{name: "empty keywords pass all", want: []string{"tingles", "outro"}},
		{name: "exclude wins", keywords: nil, exclude: []string{"outro"}, want: []string{"tingles"}},
		{name: "exclude beats include", keywords: []string{"tingles", "outro"}, exclude: []string{"out"}, want: []string{"tingles"}},
		{name: "no match", keywords: []string{"slime"}, want: nil},
		{name: "blank keywords ignored", keywords: []string{" ", ""}, want: []string{"tingles", "outro"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Filter("v1", ranges(in...), sec(600), tc.keywords, tc.exclude)
			var descs []string
			for _, s := range got {
				descs = append(descs, s.Description)
			}
			if !slices.Equal(descs, tc.want) {
				t.Fatalf("got %v, want %v", descs, tc.want)
			}
		})
	}
}

func TestFilter_ClampsToDuration(t *testing.T) {
	t.Parallel()

	got := Filter("v1", ranges(
		types.TimeRange{Start: sec(590), End: sec(605), Description: "tail"},
	), sec(600), nil, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(got))
	}
	if got[0].End != sec(600) {
		t.Fatalf("end = %v, want %v", got[0].End, sec(600))
	}
}

func TestFilter_DropsSubSecondAfterClamp(t *testing.T) {
	t.Parallel()

	// Clamped to [599.5, 600): shorter than a second, so dropped.
	got := Filter("v1", ranges(
		types.TimeRange{Start: sec(599.5), End: sec(605), Description: "sliver"},
	), sec(600), nil, nil)
	if len(got) != 0 {
		t.Fatalf("expected segment dropped, got %v", got)
	}
}

func TestFilter_NeverExceedsDuration(t *testing.T) {
	t.Parallel()

	in := []types.TimeRange{
		{Start: sec(10), End: sec(700), Description: "a"},
		{Start: sec(550), End: sec(900), Description: "b"},
		{Start: sec(100), End: sec(200), Description: "c"},
	}
	for _, s := range Filter("v1", ranges(in...), sec(600), nil, nil) {
		if s.End > sec(600) {
			t.Fatalf("segment end %v exceeds duration", s.End)
		}
	}
}

func TestFilter_StableStartOrder(t *testing.T) {
	t.Parallel()

	// Two comments label the same start; original order breaks the tie,
	// and overlapping ranges stay distinct.
	in := []types.TimeRange{
		{Start: sec(300), End: sec(360), Description: "late"},
		{Start: sec(100), End: sec(160), Description: "early first"},
		{Start: sec(100), End: sec(200), Description: "early second"},
	}
	got := Filter("v1", ranges(in...), sec(600), nil, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	wantOrder := []string{"early first", "early second", "late"}
	for i, s := range got {
		if s.Description != wantOrder[i] {
			t.Fatalf("position %d = %q, want %q", i, s.Description, wantOrder[i])
		}
	}
}

func TestFilter_Idempotent(t *testing.T) {
	t.Parallel()

	in := []types.TimeRange{
		{Start: sec(10), End: sec(700), Description: "tingles intro"},
		{Start: sec(50), End: sec(60), Description: "skip me"},
		{Start: sec(200), End: sec(260), Description: "more tingles"},
	}
	keywords := []string{"tingles"}

	first := Filter("v1", ranges(in...), sec(600), keywords, nil)

	asRanges := make([]types.TimeRange, len(first))
	for i, s := range first {
		asRanges[i] = types.TimeRange{Start: s.Start, End: s.End, Description: s.Description}
	}
	second := Filter("v1", ranges(asRanges...), sec(600), keywords, nil)

	if !slices.Equal(first, second) {
		t.Fatalf("filter not idempotent:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestFilter_BindsVideoID(t *testing.T) {
	t.Parallel()

	got := Filter("vid42", ranges(
		types.TimeRange{Start: 0, End: sec(30), Description: "x"},
	), sec(600), nil, nil)
	if len(got) != 1 || got[0].VideoID != "vid42" {
		t.Fatalf("unexpected segments: %v", got)
	}
}
