package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	sjson "github.com/bitly/go-simplejson"
	"go.uber.org/zap"
)

const initialDataMarker = "ytInitialData"

var ErrNoInitialData = errors.New("watch page has no ytInitialData")

// Related returns the videos YouTube lists next to videoID on its watch page.
func (y *YouTube) Related(ctx context.Context, videoID string) ([]*Video, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	watchURL := fmt.Sprintf("%s/watch?v=%s", y.BaseURL, url.QueryEscape(videoID))
	doc, err := y.fetchDocument(ctx, watchURL)
	y.limiter.Observe(err)
	if err != nil {
		return nil, err
	}

	data, err := initialData(doc)
	if err != nil {
		return nil, fmt.Errorf("related %s: %w", videoID, err)
	}

	videos := relatedVideos(data, videoID)
	y.log.Debug("related videos scraped", zap.String("id", videoID), zap.Int("count", len(videos)))
	return videos, nil
}

func (y *YouTube) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, URL: pageURL}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// initialData decodes the ytInitialData object embedded in a script tag.
func initialData(doc *goquery.Document) (*sjson.Json, error) {
	var (
		data *sjson.Json
		err  = ErrNoInitialData
	)
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, initialDataMarker)
		if idx < 0 {
			return true
		}
		start := strings.Index(text[idx:], "{")
		if start < 0 {
			return true
		}
		// NewFromReader decodes one value and leaves the trailing ";".
		j, decErr := sjson.NewFromReader(strings.NewReader(text[idx+start:]))
		if decErr != nil {
			err = fmt.Errorf("decode %s: %w", initialDataMarker, decErr)
			return true
		}
		data, err = j, nil
		return false
	})
	return data, err
}

func relatedVideos(data *sjson.Json, skipID string) []*Video {
	var renderers []*sjson.Json
	collect(data, "compactVideoRenderer", &renderers)

	seen := map[string]struct{}{skipID: {}}
	videos := make([]*Video, 0, len(renderers))
	for _, r := range renderers {
		id := r.Get("videoId").MustString()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		length := text(r.Get("lengthText"))
		videos = append(videos, &Video{
			ID:                id,
			URL:               fmt.Sprintf("%s/watch?v=%s", defaultBaseURL, id),
			Title:             text(r.Get("title")),
			Thumbnail:         lastThumbnail(r.Get("thumbnail")),
			Views:             parseViews(text(r.Get("viewCountText"))),
			Duration:          ParseDuration(length),
			DurationFormatted: length,
			Channel:           bylineChannel(r),
		})
	}
	return videos
}

// collect walks j depth-first and gathers every object stored under key.
func collect(j *sjson.Json, key string, out *[]*sjson.Json) {
	if m, err := j.Map(); err == nil {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			child := j.Get(k)
			if k == key {
				if _, err := child.Map(); err == nil {
					*out = append(*out, child)
					continue
				}
			}
			collect(child, key, out)
		}
		return
	}
	for i := range len(j.MustArray()) {
		collect(j.GetIndex(i), key, out)
	}
}

// text flattens YouTube's {"simpleText": ...} and {"runs": [...]} shapes.
func text(j *sjson.Json) string {
	if s, ok := j.CheckGet("simpleText"); ok {
		return s.MustString()
	}
	runs := j.Get("runs")
	var b strings.Builder
	for i := range len(runs.MustArray()) {
		b.WriteString(runs.GetIndex(i).Get("text").MustString())
	}
	return b.String()
}

func lastThumbnail(j *sjson.Json) string {
	thumbs := j.Get("thumbnails")
	n := len(thumbs.MustArray())
	if n == 0 {
		return ""
	}
	return thumbs.GetIndex(n - 1).Get("url").MustString()
}

func bylineChannel(r *sjson.Json) Channel {
	byline, ok := r.CheckGet("longBylineText")
	if !ok {
		byline = r.Get("shortBylineText")
	}
	ch := Channel{Name: text(byline)}

	path := byline.Get("runs").GetIndex(0).
		GetPath("navigationEndpoint", "browseEndpoint", "canonicalBaseUrl").MustString()
	if path != "" {
		ch.URL = defaultBaseURL + path
	}
	return ch
}
