// Package youtubeapi adapts the YouTube Data API v3 to the source and
// publish ports. Listing works with an API key; uploading and duplicate
// search need an OAuth token obtained out of band.
package youtubeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"clipstamp/internal/types"
)

type Adapter struct {
	svc *youtube.Service
}

// maxSearchResults is the API's hard MaxResults cap for search.list;
// values above it are rejected outright rather than truncated.
const maxSearchResults = 50

func clampMaxResults(max int64) int64 {
	if max < 1 || max > maxSearchResults {
		return maxSearchResults
	}
	return max
}

// New builds an adapter over an API-key service. Key-only services can
// list videos and comments but not upload.
func New(ctx context.Context, apiKey string) (*Adapter, error) {
	if apiKey == "" {
		return nil, errors.New("youtube api key is required")
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Adapter{svc: svc}, nil
}

// NewWithToken builds an adapter authorized for upload and forMine
// search. clientSecretsPath and tokenPath hold the JSON files produced
// by the Google Cloud console and a prior consent flow.
func NewWithToken(ctx context.Context, clientSecretsPath, tokenPath string) (*Adapter, error) {
	secrets, err := os.ReadFile(clientSecretsPath)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	cfg, err := google.ConfigFromJSON(secrets,
		youtube.YoutubeUploadScope,
		youtube.YoutubeScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}
	tok, err := readToken(tokenPath)
	if err != nil {
		return nil, err
	}
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Adapter{svc: svc}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode oauth token %s: %w", path, err)
	}
	return tok, nil
}

// ListCandidateVideos returns the most recent videos on a channel,
// newest first, with real durations resolved via a second metadata call.
// Requests for more than one search page are capped at the API limit.
func (a *Adapter) ListCandidateVideos(ctx context.Context, channelID string, max int64) ([]types.SourceVideo, error) {
	search, err := a.svc.Search.List([]string{"id"}).
		ChannelId(channelID).
		Order("date").
		Type("video").
		MaxResults(clampMaxResults(max)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapErr("list channel videos", err)
	}

	var ids []string
	for _, item := range search.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	details, err := a.svc.Videos.List([]string{"snippet", "contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapErr("list video details", err)
	}

	byID := make(map[string]types.SourceVideo, len(details.Items))
	for _, v := range details.Items {
		dur, err := parseISODuration(v.ContentDetails.Duration)
		if err != nil {
			continue
		}
		byID[v.Id] = types.SourceVideo{ID: v.Id, Title: v.Snippet.Title, Duration: dur}
	}

	// Preserve the search order, skipping videos whose details vanished
	// between the two calls.
	out := make([]types.SourceVideo, 0, len(ids))
	for _, id := range ids {
		if sv, ok := byID[id]; ok {
			out = append(out, sv)
		}
	}
	return out, nil
}

// ListComments fetches top-level comments for a video in plain text.
func (a *Adapter) ListComments(ctx context.Context, videoID string) ([]types.Comment, error) {
	resp, err := a.svc.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		TextFormat("plainText").
		MaxResults(100).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapErr("list comments", err)
	}

	var out []types.Comment
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil {
			continue
		}
		s := item.Snippet.TopLevelComment.Snippet
		if s == nil {
			continue
		}
		posted, _ := time.Parse(time.RFC3339, s.PublishedAt)
		out = append(out, types.Comment{
			Author:   s.AuthorDisplayName,
			Text:     s.TextDisplay,
			PostedAt: posted,
		})
	}
	return out, nil
}

// Upload publishes a compilation file and returns the new video id.
func (a *Adapter) Upload(ctx context.Context, path string, meta types.UploadMeta) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  "22", // People & Blogs, matching the source channel
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.Privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	resp, err := a.svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return "", mapErr("upload video", err)
	}
	if resp.Id == "" {
		return "", fmt.Errorf("upload returned no video id")
	}
	if meta.PlaylistID != "" {
		// Playlist membership is cosmetic; the upload already succeeded.
		if err := a.AddToPlaylist(ctx, resp.Id, meta.PlaylistID); err != nil {
			return resp.Id, nil
		}
	}
	return resp.Id, nil
}

func (a *Adapter) AddToPlaylist(ctx context.Context, videoID, playlistID string) error {
	_, err := a.svc.PlaylistItems.Insert([]string{"snippet"}, &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return mapErr("add to playlist", err)
	}
	return nil
}

// FindDerivative searches the destination channel for an upload whose
// description carries the derivative marker for sourceVideoID. It
// returns the uploaded video's id, or "" when none exists.
func (a *Adapter) FindDerivative(ctx context.Context, sourceVideoID string) (string, error) {
	marker := types.DerivativeMarker + sourceVideoID
	search, err := a.svc.Search.List([]string{"id"}).
		Q(marker).
		Type("video").
		ForMine(true).
		MaxResults(25).
		Context(ctx).
		Do()
	if err != nil {
		return "", mapErr("search derivatives", err)
	}

	var ids []string
	for _, item := range search.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return "", nil
	}

	// Search matches are fuzzy; confirm via the exact description text.
	details, err := a.svc.Videos.List([]string{"snippet"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return "", mapErr("confirm derivatives", err)
	}
	for _, v := range details.Items {
		if v.Snippet != nil && strings.Contains(v.Snippet.Description, marker) {
			return v.Id, nil
		}
	}
	return "", nil
}

// mapErr translates googleapi failures into the collaborator taxonomy.
func mapErr(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch gerr.Code {
	case 401:
		return &types.CollaboratorError{Kind: types.CollaboratorAuthFailure, Op: op, Cause: err}
	case 403:
		for _, item := range gerr.Errors {
			switch item.Reason {
			case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded":
				return &types.CollaboratorError{Kind: types.CollaboratorRateLimited, Op: op, Cause: err}
			}
		}
		return &types.CollaboratorError{Kind: types.CollaboratorAuthFailure, Op: op, Cause: err}
	case 404:
		return &types.CollaboratorError{Kind: types.CollaboratorNotFound, Op: op, Cause: err}
	case 429:
		return &types.CollaboratorError{Kind: types.CollaboratorRateLimited, Op: op, Cause: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
