// Package catalog talks to the YouTube catalog: single videos, playlists,
// free-text search and the related-videos rail of a watch page.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const KindVideo = "video"

var ErrUnsupportedKind = errors.New("unsupported search kind")

// Catalog is the metadata service the extractor resolves queries against.
type Catalog interface {
	Video(ctx context.Context, url string) (*Video, error)
	Playlist(ctx context.Context, url string, limit int) (*Playlist, error)
	Search(ctx context.Context, query string, limit int, kind string) ([]*Video, error)
	Related(ctx context.Context, videoID string) ([]*Video, error)
}

type Channel struct {
	Name string
	URL  string
}

// Video is the raw catalog record for one video.
type Video struct {
	ID                string
	URL               string
	Title             string
	Description       string
	Thumbnail         string
	Views             int
	Duration          int // seconds
	DurationFormatted string
	Channel           Channel
}

// Playlist is the raw catalog record for a playlist.
type Playlist struct {
	ID          string
	URL         string
	Title       string
	Description string
	Thumbnail   string
	Channel     Channel
	Videos      []*Video
}

// StatusError reports an unexpected HTTP status from the catalog.
type StatusError struct {
	Code int
	URL  string
	Err  error // underlying client error, if any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog request %s failed with status %d", e.URL, e.Code)
}

func (e *StatusError) StatusCode() int { return e.Code }

func (e *StatusError) Unwrap() error { return e.Err }

// FormatDuration renders seconds the way YouTube does: 3:07, 1:02:03.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseDuration is the inverse of FormatDuration. Unparseable input gives 0.
func ParseDuration(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// parseViews pulls the digits out of strings like "1,234,567 views".
func parseViews(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, _ := strconv.Atoi(b.String())
	return n
}
