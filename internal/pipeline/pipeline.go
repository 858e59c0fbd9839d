// Package pipeline wires concrete adapters into the usecase and runs
// one full pass over the watched channel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"clipstamp/internal/ledger"
	"clipstamp/internal/ports"
	"clipstamp/internal/ports/adapters/ffmpeg"
	"clipstamp/internal/ports/adapters/youtubeapi"
	"clipstamp/internal/ports/adapters/ytdlp"
	"clipstamp/internal/retry"
	"clipstamp/internal/usecase"
)

// Config is built once by the CLI layer and never re-read from the
// environment; every component receives plain values from it.
type Config struct {
	ChannelID       string
	Commenters      []string
	Keywords        []string
	ExcludeKeywords []string
	MaxVideos       int64

	TitlePrefix string
	Tags        []string
	Privacy     string
	PlaylistID  string

	WorkDir string
	DataDir string

	FFmpegPath  string
	FFprobePath string
	YtDlpPath   string

	APIKey            string
	ClientSecretsPath string
	TokenPath         string

	Logger *slog.Logger
}

func (c Config) Validate() error {
	if c.ChannelID == "" {
		return errors.New("channel id is required")
	}
	if len(c.Commenters) == 0 {
		return errors.New("at least one timestamp commenter is required")
	}
	if c.APIKey == "" {
		return errors.New("youtube api key is required")
	}
	if c.ClientSecretsPath == "" || c.TokenPath == "" {
		return errors.New("client secrets and oauth token paths are required for uploads")
	}
	if c.MaxVideos <= 0 {
		return fmt.Errorf("max videos must be > 0")
	}
	switch c.Privacy {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("invalid privacy status %q", c.Privacy)
	}
	return nil
}

// LedgerPath returns the sqlite database location under the data dir.
func (c Config) LedgerPath() string {
	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	return filepath.Join(dataDir, "processed_videos.db")
}

// Run executes a single pass: every unprocessed candidate video is
// parsed, clipped, assembled, published and recorded.
func Run(ctx context.Context, cfg Config) error {
	source, err := youtubeapi.New(ctx, cfg.APIKey)
	if err != nil {
		return err
	}
	publisher, err := youtubeapi.NewWithToken(ctx, cfg.ClientSecretsPath, cfg.TokenPath)
	if err != nil {
		return err
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "downloads"
	}

	led, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return err
	}
	defer led.Close()

	uc := usecase.New(usecase.Deps{
		Source:    source,
		Media:     ytdlp.New(cfg.YtDlpPath, workDir),
		Video:     ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		Publisher: publisher,
		Ledger:    led,
		Logger:    cfg.Logger,
		Retry:     retry.DefaultConfig(),
		SkipTTL:   24 * time.Hour,
	})

	res, err := uc.Run(ctx, usecase.Input{
		ChannelID:       cfg.ChannelID,
		Commenters:      cfg.Commenters,
		Keywords:        cfg.Keywords,
		ExcludeKeywords: cfg.ExcludeKeywords,
		WorkDir:         workDir,
		TitlePrefix:     cfg.TitlePrefix,
		Tags:            cfg.Tags,
		Privacy:         cfg.Privacy,
		PlaylistID:      cfg.PlaylistID,
		MaxVideos:       cfg.MaxVideos,
	})
	if err != nil {
		return err
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("pass complete",
			"processed", len(res.Processed), "skipped", res.Skipped)
	}
	return nil
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.MediaFetcher = (*ytdlp.Adapter)(nil)
var _ ports.VideoSource = (*youtubeapi.Adapter)(nil)
var _ ports.Publisher = (*youtubeapi.Adapter)(nil)
var _ ports.Ledger = (*ledger.Ledger)(nil)
