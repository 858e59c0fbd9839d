package ffmpeg

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"clipstamp/internal/types"
)

func TestExtractArgs(t *testing.T) {
	t.Parallel()

	got := extractArgs("in.mp4", 90*time.Second, 165*time.Second, "out.mp4")
	want := []string{
		"-y",
		"-ss", "90.000",
		"-to", "165.000",
		"-i", "in.mp4",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		"out.mp4",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("args = %v\nwant %v", got, want)
	}
}

func TestFmtSeconds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0.000"},
		{in: time.Second, want: "1.000"},
		{in: 1500 * time.Millisecond, want: "1.500"},
		{in: time.Hour, want: "3600.000"},
	}
	for _, tc := range cases {
		if got := fmtSeconds(tc.in); got != tc.want {
			t.Fatalf("fmtSeconds(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteConcatList(t *testing.T) {
	t.Parallel()

	listPath, err := writeConcatList([]string{"a.mp4", "b.mp4"})
	if err != nil {
		t.Fatalf("write concat list: %v", err)
	}
	defer os.Remove(listPath)

	b, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %q", len(lines), string(b))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, "'") {
			t.Fatalf("malformed concat entry: %q", line)
		}
		// Entries must be absolute so the list's own location is irrelevant.
		path := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
		if !strings.HasPrefix(path, "/") && !strings.Contains(path, ":") {
			t.Fatalf("expected absolute path in concat entry: %q", line)
		}
	}
}

func TestConcat_NoClips(t *testing.T) {
	t.Parallel()

	a := New("", "")
	err := a.Concat(context.Background(), nil, "out.mp4")

	var asmErr *types.AssemblyError
	if !errors.As(err, &asmErr) || asmErr.Kind != types.AssemblyNoClips {
		t.Fatalf("expected AssemblyError{NoClips}, got %v", err)
	}
}

func TestEscapeListPath(t *testing.T) {
	t.Parallel()

	if got := escapeListPath("/tmp/it's.mp4"); got != `/tmp/it'\''s.mp4` {
		t.Fatalf("escapeListPath = %q", got)
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	a := New("", "")
	if a.ffmpeg != "ffmpeg" || a.ffprobe != "ffprobe" {
		t.Fatalf("unexpected defaults: %+v", a)
	}
	b := New("/opt/ffmpeg", "/opt/ffprobe")
	if b.ffmpeg != "/opt/ffmpeg" || b.ffprobe != "/opt/ffprobe" {
		t.Fatalf("unexpected paths: %+v", b)
	}
}
