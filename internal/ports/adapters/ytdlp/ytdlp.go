// Package ytdlp fetches source media through the yt-dlp binary.
package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipstamp/internal/types"
)

// format caps downloads at 720p mp4 with m4a audio; the compilation is
// re-encoded anyway, so pulling higher source resolutions only wastes
// bandwidth.
const format = "bv*[height<=720][ext=mp4]+ba[ext=m4a]/b[height<=720][ext=mp4]/b"

type Adapter struct {
	bin     string
	workDir string
}

// New builds a fetcher that stores downloads under workDir, one
// directory per video id.
func New(binPath, workDir string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath, workDir: workDir}
}

// Fetch downloads the video and returns the local file path. An
// existing complete download for the same id is reused, which keeps
// retries after a mid-pipeline failure cheap.
func (a *Adapter) Fetch(ctx context.Context, videoID string) (string, error) {
	dir := filepath.Join(a.workDir, videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	outPath := filepath.Join(dir, videoID+".mp4")
	if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
		return outPath, nil
	}

	cmd := exec.CommandContext(ctx, a.bin,
		"-f", format,
		"--merge-output-format", "mp4",
		"--no-progress",
		"--retries", "10",
		"-o", outPath,
		"https://www.youtube.com/watch?v="+videoID,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(outPath)
		out := string(b)
		if isUnavailable(out) {
			return "", &types.CollaboratorError{
				Kind:  types.CollaboratorNotFound,
				Op:    "download " + videoID,
				Cause: fmt.Errorf("yt-dlp: %w", err),
			}
		}
		return "", fmt.Errorf("yt-dlp download %s: %w\n%s", videoID, err, out)
	}

	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("yt-dlp produced no output for %s", videoID)
	}
	return outPath, nil
}

func isUnavailable(output string) bool {
	for _, marker := range []string{
		"Video unavailable",
		"This video is private",
		"has been removed",
	} {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}
