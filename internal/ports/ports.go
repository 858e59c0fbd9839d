package ports

import (
	"context"
	"time"

	"clipstamp/internal/types"
)

// VideoSource lists candidate videos and their comments on the watched
// channel. Implementations surface types.CollaboratorError so callers
// can tell rate limits, auth failures and missing videos apart.
type VideoSource interface {
	ListCandidateVideos(ctx context.Context, channelID string, max int64) ([]types.SourceVideo, error)
	ListComments(ctx context.Context, videoID string) ([]types.Comment, error)
}

// MediaFetcher produces a complete local media file for a source video.
type MediaFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// VideoTool drives the media encoder for probing, clip extraction and
// concatenation.
type VideoTool interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	ExtractClip(ctx context.Context, inPath string, seg types.Segment, outPath string) error
	Concat(ctx context.Context, clipPaths []string, outPath string) error
}

// Publisher uploads a compilation to the destination channel and can
// look for an existing derivative of a source video there. Playlist
// membership is the implementation's concern, driven by the upload
// metadata.
type Publisher interface {
	Upload(ctx context.Context, path string, meta types.UploadMeta) (string, error)
	FindDerivative(ctx context.Context, sourceVideoID string) (string, error)
}

// Ledger is the durable record of fully processed source videos.
// Record is atomic and idempotent; once it returns, Has reports true
// across process restarts. Failed runs leave no record and are retried
// on the next pass.
type Ledger interface {
	Has(ctx context.Context, sourceVideoID string) (bool, error)
	Record(ctx context.Context, rec types.ProcessingRecord) error
}
