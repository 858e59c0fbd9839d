package types

import "time"

// TimeRange is one highlight candidate extracted from a comment.
// Start < End always holds for ranges produced by the parser; the
// filter clamps by producing a new value, never by mutating.
type TimeRange struct {
	Start       time.Duration
	End         time.Duration
	Description string
}

// Comment is a read-only viewer comment fetched from the video source.
type Comment struct {
	Author   string
	Text     string
	PostedAt time.Time
}

// SourceVideo is a candidate video on the watched channel.
type SourceVideo struct {
	ID       string
	Title    string
	Duration time.Duration
}

// Segment is a validated TimeRange bound to a source video.
// End never exceeds the video duration.
type Segment struct {
	VideoID     string
	Start       time.Duration
	End         time.Duration
	Description string
}

// Compilation is the single concatenated output for one source video,
// built from Clips in ascending start-time order.
type Compilation struct {
	SourceVideoID string
	Path          string
	Clips         []string
}

// ProcessingRecord is the ledger's unit of durable state. Records are
// append-only; reprocessing is prevented by existence, not mutation.
type ProcessingRecord struct {
	SourceVideoID string
	Title         string
	OutputVideoID string
	ProcessedAt   time.Time
}

// DerivativeMarker prefixes the source video URL embedded in every
// published description. The publisher's duplicate detection searches
// for it, so a compilation is findable even after ledger loss.
const DerivativeMarker = "Original video: https://youtu.be/"

// UploadMeta describes the published compilation.
type UploadMeta struct {
	Title       string
	Description string
	Tags        []string
	Privacy     string
	PlaylistID  string
}
