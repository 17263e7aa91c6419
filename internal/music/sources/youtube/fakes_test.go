package youtube

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/keshon/ytdlp-extractor/internal/music/catalog"
)

var errUpstream = errors.New("upstream unavailable")

type searchCall struct {
	query string
	limit int
	kind  string
}

// fakeCatalog answers from canned data and records what it was asked.
type fakeCatalog struct {
	mu sync.Mutex

	videos    map[string]*catalog.Video
	playlist  *catalog.Playlist
	search    []*catalog.Video
	related   []*catalog.Video
	failAll   bool
	searchErr error

	videoURLs     []string
	playlistLimit int
	searches      []searchCall
	relatedIDs    []string
}

func (f *fakeCatalog) Video(_ context.Context, url string) (*catalog.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videoURLs = append(f.videoURLs, url)
	if f.failAll {
		return nil, errUpstream
	}
	v, ok := f.videos[url]
	if !ok {
		return nil, errUpstream
	}
	return v, nil
}

func (f *fakeCatalog) Playlist(_ context.Context, _ string, limit int) (*catalog.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playlistLimit = limit
	if f.failAll {
		return nil, errUpstream
	}
	return f.playlist, nil
}

func (f *fakeCatalog) Search(_ context.Context, query string, limit int, kind string) ([]*catalog.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, searchCall{query, limit, kind})
	if f.failAll {
		return nil, errUpstream
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if limit > 0 && len(f.search) > limit {
		return f.search[:limit], nil
	}
	return f.search, nil
}

func (f *fakeCatalog) Related(_ context.Context, id string) ([]*catalog.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relatedIDs = append(f.relatedIDs, id)
	if f.failAll {
		return nil, errUpstream
	}
	return f.related, nil
}

type fakeStreamer struct {
	urls []string
	err  error
}

func (s *fakeStreamer) Stream(_ context.Context, url string) (io.ReadCloser, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader("audio")), nil
}

func video(id, title, channel string) *catalog.Video {
	return &catalog.Video{
		ID:                id,
		URL:               WatchURL(id),
		Title:             title,
		Description:       title + " description",
		Thumbnail:         "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
		Views:             1234,
		Duration:          213,
		DurationFormatted: "3:33",
		Channel:           catalog.Channel{Name: channel, URL: "https://www.youtube.com/@" + channel},
	}
}
