// Package usecase orchestrates the per-video pipeline: parse viewer
// timestamps, filter them into segments, extract clips, assemble one
// compilation, publish it and record the source video in the ledger.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"clipstamp/internal/domain/segments"
	"clipstamp/internal/domain/timestamps"
	"clipstamp/internal/ledger"
	"clipstamp/internal/logging"
	"clipstamp/internal/ports"
	"clipstamp/internal/retry"
	"clipstamp/internal/types"
)

// Skip reasons: the video is left unrecorded and picked up again on a
// later pass.
var (
	ErrNoTimestamps = errors.New("no timestamp ranges found in comments")
	ErrNoSegments   = errors.New("no segments survived filtering")
	ErrNoClips      = errors.New("no clips could be extracted")
)

// MaxTitleRunes is the destination platform's title length limit.
const MaxTitleRunes = 100

type Deps struct {
	Source    ports.VideoSource
	Media     ports.MediaFetcher
	Video     ports.VideoTool
	Publisher ports.Publisher
	Ledger    ports.Ledger

	Logger *slog.Logger
	Retry  retry.Config

	// SkipTTL bounds how long a NotFound video is ignored before it is
	// looked at again. Zero means a day.
	SkipTTL time.Duration
}

type Usecase struct {
	d     Deps
	log   *slog.Logger
	skips *ledger.SkipList
}

func New(d Deps) *Usecase {
	log := d.Logger
	if log == nil {
		log = logging.Discard()
	}
	ttl := d.SkipTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Usecase{
		d:     d,
		log:   logging.WithComponent(log, "usecase"),
		skips: ledger.NewSkipList(ttl),
	}
}

type Input struct {
	ChannelID       string
	Commenters      []string
	Keywords        []string
	ExcludeKeywords []string

	WorkDir     string
	TitlePrefix string
	Tags        []string
	Privacy     string
	PlaylistID  string
	MaxVideos   int64
}

type Result struct {
	Processed []types.ProcessingRecord
	Skipped   int
}

// Run performs one scheduled pass over the channel. Videos are handled
// strictly one at a time; cancellation is honored between videos and
// between segments, never mid-encode. Any failure short of an auth
// failure moves on to the next video.
func (u *Usecase) Run(ctx context.Context, in Input) (Result, error) {
	var videos []types.SourceVideo
	err := retry.Do(ctx, u.d.Retry, types.IsRateLimited, func(ctx context.Context) error {
		var err error
		videos, err = u.d.Source.ListCandidateVideos(ctx, in.ChannelID, in.MaxVideos)
		return err
	})
	if err != nil {
		if types.IsAuthFailure(err) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("list candidate videos: %w", err)
	}

	var res Result
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		log := logging.WithVideoID(u.log, video.ID)
		if u.skips.Skipped(video.ID) {
			log.Debug("video in skip list, ignoring")
			res.Skipped++
			continue
		}

		done, err := u.alreadyProcessed(ctx, video)
		if err != nil {
			if types.IsAuthFailure(err) {
				return res, err
			}
			log.Error("idempotence check failed", "error", err)
			res.Skipped++
			continue
		}
		if done {
			log.Debug("already processed")
			res.Skipped++
			continue
		}

		rec, err := u.processVideo(ctx, in, video)
		switch {
		case err == nil:
			res.Processed = append(res.Processed, rec)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return res, err
		case types.IsAuthFailure(err):
			return res, err
		case types.IsNotFound(err):
			log.Warn("video not found, adding to skip list", "error", err)
			u.skips.Skip(video.ID)
			res.Skipped++
		default:
			log.Error("video skipped this run", "error", err)
			res.Skipped++
		}
	}
	return res, nil
}

// alreadyProcessed consults the ledger first, then falls back to
// searching the destination channel for an existing derivative. A
// derivative hit is recorded so the next pass stops at the ledger.
func (u *Usecase) alreadyProcessed(ctx context.Context, video types.SourceVideo) (bool, error) {
	has, err := u.d.Ledger.Has(ctx, video.ID)
	if err != nil {
		return false, err
	}
	if has {
		return true, nil
	}

	outputID, err := u.d.Publisher.FindDerivative(ctx, video.ID)
	if err != nil {
		return false, err
	}
	if outputID == "" {
		return false, nil
	}
	if err := u.d.Ledger.Record(ctx, types.ProcessingRecord{
		SourceVideoID: video.ID,
		Title:         video.Title,
		OutputVideoID: outputID,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (u *Usecase) processVideo(ctx context.Context, in Input, video types.SourceVideo) (types.ProcessingRecord, error) {
	log := logging.WithVideoID(u.log, video.ID)

	var comments []types.Comment
	err := retry.Do(ctx, u.d.Retry, types.IsRateLimited, func(ctx context.Context) error {
		var err error
		comments, err = u.d.Source.ListComments(ctx, video.ID)
		return err
	})
	if err != nil {
		return types.ProcessingRecord{}, fmt.Errorf("list comments: %w", err)
	}

	ranges := collectRanges(comments, in.Commenters)
	if len(ranges) == 0 {
		return types.ProcessingRecord{}, ErrNoTimestamps
	}

	segs := segments.Filter(video.ID, slices.Values(ranges), video.Duration, in.Keywords, in.ExcludeKeywords)
	if len(segs) == 0 {
		return types.ProcessingRecord{}, ErrNoSegments
	}
	log.Info("segments selected", "candidates", len(ranges), "segments", len(segs))

	mediaPath, err := u.d.Media.Fetch(ctx, video.ID)
	if err != nil {
		return types.ProcessingRecord{}, fmt.Errorf("fetch media: %w", err)
	}

	runDir := filepath.Join(in.WorkDir, "runs", uuid.NewString())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return types.ProcessingRecord{}, fmt.Errorf("create run dir: %w", err)
	}
	// Clip files are scoped to this run on every exit path, including
	// cancellation. The compilation lives in the same directory, so a
	// failed upload leaves nothing behind either.
	defer os.RemoveAll(runDir)

	clipPaths, err := u.extractClips(ctx, mediaPath, segs, runDir, log)
	if err != nil {
		return types.ProcessingRecord{}, err
	}
	if len(clipPaths) == 0 {
		return types.ProcessingRecord{}, ErrNoClips
	}

	comp := types.Compilation{
		SourceVideoID: video.ID,
		Path:          filepath.Join(runDir, "compilation.mp4"),
		Clips:         clipPaths,
	}
	if err := u.d.Video.Concat(ctx, comp.Clips, comp.Path); err != nil {
		return types.ProcessingRecord{}, err
	}
	log.Info("compilation assembled", "clips", len(comp.Clips))

	meta := types.UploadMeta{
		Title:       BuildTitle(in.TitlePrefix, video.Title),
		Description: buildDescription(video, segs),
		Tags:        in.Tags,
		Privacy:     in.Privacy,
		PlaylistID:  in.PlaylistID,
	}

	var outputID string
	err = retry.Do(ctx, u.d.Retry, types.IsRateLimited, func(ctx context.Context) error {
		var err error
		outputID, err = u.d.Publisher.Upload(ctx, comp.Path, meta)
		return err
	})
	if err != nil {
		return types.ProcessingRecord{}, fmt.Errorf("publish compilation: %w", err)
	}
	log.Info("compilation published", "output_video_id", outputID)

	rec := types.ProcessingRecord{
		SourceVideoID: video.ID,
		Title:         video.Title,
		OutputVideoID: outputID,
		ProcessedAt:   time.Now(),
	}
	if err := u.d.Ledger.Record(ctx, rec); err != nil {
		return types.ProcessingRecord{}, err
	}

	// The download is only removed once the record is durable; until
	// then a re-run reuses it instead of fetching again.
	if err := os.Remove(mediaPath); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove downloaded media", "path", mediaPath, "error", err)
	}
	return rec, nil
}

// extractClips renders each segment in order. A ClipError drops only
// that segment; the survivors still make a compilation.
func (u *Usecase) extractClips(ctx context.Context, mediaPath string, segs []types.Segment, runDir string, log *slog.Logger) ([]string, error) {
	clipPaths := make([]string, 0, len(segs))
	for i, seg := range segs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outPath := filepath.Join(runDir, fmt.Sprintf("%03d.mp4", i+1))
		if err := u.d.Video.ExtractClip(ctx, mediaPath, seg, outPath); err != nil {
			var clipErr *types.ClipError
			if errors.As(err, &clipErr) {
				log.Warn("segment dropped",
					"start", seg.Start, "end", seg.End, "kind", string(clipErr.Kind), "error", err)
				continue
			}
			return nil, err
		}
		clipPaths = append(clipPaths, outPath)
	}
	return clipPaths, nil
}

// collectRanges parses every allow-listed comment, preserving comment
// order so the filter's stable sort stays deterministic.
func collectRanges(comments []types.Comment, commenters []string) []types.TimeRange {
	var out []types.TimeRange
	for _, c := range comments {
		if !allowed(c.Author, commenters) {
			continue
		}
		for r := range timestamps.Parse(c.Text) {
			out = append(out, r)
		}
	}
	return out
}

func allowed(author string, commenters []string) bool {
	if len(commenters) == 0 {
		return false
	}
	return slices.Contains(commenters, author)
}

// BuildTitle prefixes the source title and truncates to the platform
// limit with an ellipsis.
func BuildTitle(prefix, title string) string {
	full := title
	if prefix != "" {
		full = prefix + " " + title
	}
	runes := []rune(full)
	if len(runes) <= MaxTitleRunes {
		return full
	}
	return string(runes[:MaxTitleRunes-3]) + "..."
}

func buildDescription(video types.SourceVideo, segs []types.Segment) string {
	desc := types.DerivativeMarker + video.ID + "\n\n" +
		"Highlights compiled from viewer timestamps:\n"
	for _, s := range segs {
		desc += fmt.Sprintf("- %s (%s)\n", s.Description, s.Start.Truncate(time.Second))
	}
	return desc
}
