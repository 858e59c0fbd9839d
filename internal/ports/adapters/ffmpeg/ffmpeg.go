package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clipstamp/internal/types"
)

// Adapter shells out to ffmpeg/ffprobe. Clips are re-encoded rather
// than stream-copied so cuts at arbitrary timestamps land cleanly
// instead of snapping to the previous keyframe.
type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// codecArgs is the fixed quality-preserving encode configuration used
// for both extraction and concatenation, so joins never mix codecs.
func codecArgs() []string {
	return []string{
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
	}
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// ExtractClip encodes [seg.Start, seg.End) of inPath into outPath.
// The segment end is re-clamped against the actual container duration;
// a start at or past the end of the media is out of range. Partial
// output is removed on encode failure.
func (a *Adapter) ExtractClip(ctx context.Context, inPath string, seg types.Segment, outPath string) error {
	actual, err := a.ProbeDuration(ctx, inPath)
	if err != nil {
		return &types.ClipError{Kind: types.ClipEncodeFailure, Start: seg.Start, End: seg.End, Cause: err}
	}
	if seg.Start >= actual {
		return &types.ClipError{Kind: types.ClipOutOfRange, Start: seg.Start, End: seg.End}
	}
	end := min(seg.End, actual)
	if end-seg.Start <= 0 {
		return &types.ClipError{Kind: types.ClipEmptyRange, Start: seg.Start, End: seg.End}
	}

	cmd := exec.CommandContext(ctx, a.ffmpeg, extractArgs(inPath, seg.Start, end, outPath)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(outPath)
		return &types.ClipError{
			Kind:  types.ClipEncodeFailure,
			Start: seg.Start,
			End:   end,
			Cause: fmt.Errorf("ffmpeg extract: %w\n%s", err, string(b)),
		}
	}
	return nil
}

func extractArgs(inPath string, start, end time.Duration, outPath string) []string {
	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", inPath,
	}
	args = append(args, codecArgs()...)
	return append(args, outPath)
}

// Concat joins the clip files in the given order into outPath using the
// concat demuxer, re-encoding with the extraction codec configuration.
// On any failure no partial output is left behind.
func (a *Adapter) Concat(ctx context.Context, clipPaths []string, outPath string) error {
	if len(clipPaths) == 0 {
		return &types.AssemblyError{Kind: types.AssemblyNoClips}
	}

	listPath, err := writeConcatList(clipPaths)
	if err != nil {
		return &types.AssemblyError{Kind: types.AssemblyEncodeFailure, Cause: err}
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	}
	args = append(args, codecArgs()...)
	args = append(args, outPath)

	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(outPath)
		return &types.AssemblyError{
			Kind:  types.AssemblyEncodeFailure,
			Cause: fmt.Errorf("ffmpeg concat: %w\n%s", err, string(b)),
		}
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(outPath)
		return &types.AssemblyError{
			Kind:  types.AssemblyEncodeFailure,
			Cause: fmt.Errorf("concat produced no output: %v", err),
		}
	}
	return nil
}

// writeConcatList creates the temporary file list the concat demuxer
// reads. Paths are made absolute so the list location does not matter.
func writeConcatList(clipPaths []string) (string, error) {
	f, err := os.CreateTemp("", "clipstamp-concat-*.txt")
	if err != nil {
		return "", err
	}
	defer f.Close()

	for _, p := range clipPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			os.Remove(f.Name())
			return "", err
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", escapeListPath(abs)); err != nil {
			os.Remove(f.Name())
			return "", err
		}
	}
	return f.Name(), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeListPath(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}
