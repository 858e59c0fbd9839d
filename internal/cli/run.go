package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipstamp/internal/logging"
	"clipstamp/internal/pipeline"
	"clipstamp/internal/schedule"
	"clipstamp/internal/types"
)

func buildConfig(cmd *cobra.Command) (pipeline.Config, error) {
	workDir, _ := cmd.Flags().GetString("work-dir")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	logLevel, _ := cmd.Flags().GetString("log-level")
	maxVideos, _ := cmd.Flags().GetInt64("max")

	cfg := pipeline.Config{
		ChannelID:       os.Getenv("CHANNEL_ID"),
		Commenters:      splitList(os.Getenv("TIMESTAMP_COMMENTERS")),
		Keywords:        splitList(os.Getenv("KEYWORDS")),
		ExcludeKeywords: splitList(os.Getenv("EXCLUDE_KEYWORDS")),
		MaxVideos:       maxVideos,

		TitlePrefix: getenvDefault("UPLOAD_PREFIX", "[Compilation]"),
		Tags:        splitList(os.Getenv("UPLOAD_TAGS")),
		Privacy:     getenvDefault("UPLOAD_PRIVACY", "private"),
		PlaylistID:  os.Getenv("UPLOAD_PLAYLIST_ID"),

		WorkDir: workDir,
		DataDir: dataDir,

		FFmpegPath:  getenvDefault("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getenvDefault("FFPROBE_PATH", "ffprobe"),
		YtDlpPath:   getenvDefault("YTDLP_PATH", "yt-dlp"),

		APIKey:            os.Getenv("YOUTUBE_API_KEY"),
		ClientSecretsPath: getenvDefault("CLIENT_SECRETS_FILE", "client_secrets.json"),
		TokenPath:         getenvDefault("OAUTH_TOKEN_FILE", "token.json"),

		Logger: logging.New(logLevel),
	}

	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return pipeline.Run(ctx, cfg)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	times, err := schedule.ParseTimes(os.Getenv("UPLOAD_TIMES"))
	if err != nil {
		cfg.Logger.Warn("falling back to default upload times", "error", err)
	}
	cfg.Logger.Info("watching", "upload_times", fmt.Sprint(times))

	ctx, stop := signalContext()
	defer stop()

	for {
		next := schedule.Next(time.Now(), times)
		cfg.Logger.Info("next pass scheduled", "at", next)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Until(next)):
		}
		if err := pipeline.Run(ctx, cfg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Auth failures need operator attention; everything else is
			// retried at the next slot.
			if types.IsAuthFailure(err) {
				return err
			}
			cfg.Logger.Error("pass failed", "error", err)
		}
	}
}

func runLedger(cmd *cobra.Command, _ []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	cfg := pipeline.Config{DataDir: dataDir}

	ctx, stop := signalContext()
	defer stop()

	return printLedger(ctx, cmd, cfg.LedgerPath())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
