package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/keshon/ytdlp-extractor/pkg/ratelimit"
	youtube "github.com/kkdai/youtube/v2"
	"github.com/ppalone/ytsearch"
	"go.uber.org/zap"
)

const (
	defaultBaseURL   = "https://www.youtube.com"
	thumbnailPattern = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

// YouTube implements Catalog. Videos and playlists come from the innertube
// client, search from the results page and related videos from the watch
// page.
type YouTube struct {
	BaseURL string
	Client  *http.Client

	videos   *youtube.Client
	searcher *ytsearch.Client
	limiter  *ratelimit.AdaptiveLimiter
	log      *zap.Logger
}

func NewYouTube(client *http.Client, limiter *ratelimit.AdaptiveLimiter, log *zap.Logger) *YouTube {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}

	// ytsearch hides response statuses, so its client reports them through
	// the request context.
	searchClient := *client
	searchClient.Transport = &recordingTransport{base: client.Transport}

	return &YouTube{
		BaseURL:  defaultBaseURL,
		Client:   client,
		videos:   &youtube.Client{HTTPClient: client},
		searcher: ytsearch.NewClient(&searchClient),
		limiter:  limiter,
		log:      log.Named("catalog"),
	}
}

func (y *YouTube) Video(ctx context.Context, url string) (*Video, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := y.videos.GetVideoContext(ctx, url)
	err = statusFromErr(err, url)
	y.limiter.Observe(err)
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", url, err)
	}
	return videoFromKkdai(v), nil
}

// Playlist fetches a playlist and keeps at most limit entries.
func (y *YouTube) Playlist(ctx context.Context, url string, limit int) (*Playlist, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	p, err := y.videos.GetPlaylistContext(ctx, url)
	err = statusFromErr(err, url)
	y.limiter.Observe(err)
	if err != nil {
		return nil, fmt.Errorf("get playlist %s: %w", url, err)
	}

	if limit > 0 && len(p.Videos) > limit {
		y.log.Debug("playlist truncated", zap.String("id", p.ID), zap.Int("entries", len(p.Videos)), zap.Int("limit", limit))
	}
	return playlistFromKkdai(p, limit), nil
}

// Search runs a free-text video search and returns at most limit results.
func (y *YouTube) Search(ctx context.Context, query string, limit int, kind string) ([]*Video, error) {
	if kind != KindVideo {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	ctx, rec := withStatusRecorder(ctx)
	res, err := y.searcher.Search(ctx, query)
	err = rec.wrap(err)
	y.limiter.Observe(err)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	hits := make([]searchHit, 0, len(res.Results))
	for _, r := range res.Results {
		hits = append(hits, searchHit{ID: r.VideoID, Title: r.Title, Channel: r.Channel, Duration: r.Duration})
	}
	return videosFromHits(hits, limit), nil
}

// statusFromErr turns the innertube client's status failures into
// *StatusError so the limiter can see them.
func statusFromErr(err error, url string) error {
	var code youtube.ErrUnexpectedStatusCode
	if errors.As(err, &code) {
		return &StatusError{Code: int(code), URL: url, Err: err}
	}
	return err
}

func videoFromKkdai(v *youtube.Video) *Video {
	seconds := int(v.Duration / time.Second)
	return &Video{
		ID:                v.ID,
		URL:               fmt.Sprintf("%s/watch?v=%s", defaultBaseURL, v.ID),
		Title:             v.Title,
		Description:       v.Description,
		Thumbnail:         bestThumbnail(v.Thumbnails, v.ID),
		Views:             v.Views,
		Duration:          seconds,
		DurationFormatted: FormatDuration(seconds),
		Channel:           Channel{Name: v.Author, URL: channelURL(v.ChannelID)},
	}
}

func playlistFromKkdai(p *youtube.Playlist, limit int) *Playlist {
	entries := p.Videos
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := &Playlist{
		ID:          p.ID,
		URL:         fmt.Sprintf("%s/playlist?list=%s", defaultBaseURL, p.ID),
		Title:       p.Title,
		Description: p.Description,
		Channel:     Channel{Name: p.Author},
		Videos:      make([]*Video, 0, len(entries)),
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		seconds := int(e.Duration / time.Second)
		out.Videos = append(out.Videos, &Video{
			ID:                e.ID,
			URL:               fmt.Sprintf("%s/watch?v=%s", defaultBaseURL, e.ID),
			Title:             e.Title,
			Thumbnail:         bestThumbnail(e.Thumbnails, e.ID),
			Duration:          seconds,
			DurationFormatted: FormatDuration(seconds),
			Channel:           Channel{Name: e.Author},
		})
	}
	if len(out.Videos) > 0 {
		out.Thumbnail = out.Videos[0].Thumbnail
	}
	return out
}

// searchHit is the part of a search result the catalog keeps.
type searchHit struct {
	ID       string
	Title    string
	Channel  string
	Duration string
}

func videosFromHits(hits []searchHit, limit int) []*Video {
	videos := make([]*Video, 0, len(hits))
	for _, h := range hits {
		if h.ID == "" {
			continue
		}
		videos = append(videos, &Video{
			ID:                h.ID,
			URL:               fmt.Sprintf("%s/watch?v=%s", defaultBaseURL, h.ID),
			Title:             h.Title,
			Thumbnail:         fmt.Sprintf(thumbnailPattern, h.ID),
			Duration:          ParseDuration(h.Duration),
			DurationFormatted: h.Duration,
			Channel:           Channel{Name: h.Channel},
		})
		if limit > 0 && len(videos) == limit {
			break
		}
	}
	return videos
}

func bestThumbnail(thumbs youtube.Thumbnails, id string) string {
	var best youtube.Thumbnail
	for _, t := range thumbs {
		if t.Width*t.Height >= best.Width*best.Height {
			best = t
		}
	}
	if best.URL == "" && id != "" {
		return fmt.Sprintf(thumbnailPattern, id)
	}
	return best.URL
}

func channelURL(channelID string) string {
	if channelID == "" {
		return ""
	}
	return fmt.Sprintf("%s/channel/%s", defaultBaseURL, channelID)
}
