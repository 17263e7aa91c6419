package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sjson "github.com/bitly/go-simplejson"

	"github.com/keshon/ytdlp-extractor/pkg/ratelimit"
)

func compactRenderer(id, title, channel, views, length string) map[string]any {
	return map[string]any{
		"compactVideoRenderer": map[string]any{
			"videoId": id,
			"title":   map[string]any{"simpleText": title},
			"longBylineText": map[string]any{
				"runs": []any{map[string]any{
					"text": channel,
					"navigationEndpoint": map[string]any{
						"browseEndpoint": map[string]any{"canonicalBaseUrl": "/@" + strings.ReplaceAll(channel, " ", "")},
					},
				}},
			},
			"viewCountText": map[string]any{"simpleText": views},
			"lengthText":    map[string]any{"simpleText": length},
			"thumbnail": map[string]any{"thumbnails": []any{
				map[string]any{"url": "https://i.ytimg.com/vi/" + id + "/default.jpg"},
				map[string]any{"url": "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"},
			}},
		},
	}
}

func watchPage(t *testing.T, results ...map[string]any) string {
	t.Helper()
	items := make([]any, len(results))
	for i, r := range results {
		items[i] = r
	}
	data := map[string]any{
		"contents": map[string]any{
			"twoColumnWatchNextResults": map[string]any{
				"secondaryResults": map[string]any{
					"secondaryResults": map[string]any{"results": items},
				},
			},
		},
	}
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><head>
<script>var ytcfg = {"a": 1};</script>
</head><body>
<script nonce="x">var ytInitialData = %s;</script>
</body></html>`, raw)
}

func newTestYouTube(srv *httptest.Server) *YouTube {
	y := NewYouTube(srv.Client(), ratelimit.NewAdaptiveLimiter(100, 1, 100, 1, 0.5), nil)
	y.BaseURL = srv.URL
	return y
}

func TestRelated(t *testing.T) {
	page := watchPage(t,
		compactRenderer("aaaaaaaaaaa", "First Song", "Some Band", "1,234,567 views", "3:33"),
		compactRenderer("dQw4w9WgXcQ", "Self", "Rick", "10 views", "3:32"),
		compactRenderer("bbbbbbbbbbb", "Second Song", "Other Band", "No views", "1:02:03"),
		compactRenderer("aaaaaaaaaaa", "First Song again", "Some Band", "1 view", "3:33"),
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch" {
			t.Errorf("path = %s, want /watch", r.URL.Path)
		}
		if got := r.URL.Query().Get("v"); got != "dQw4w9WgXcQ" {
			t.Errorf("v = %s", got)
		}
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	videos, err := newTestYouTube(srv).Related(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Related() error = %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("Related() returned %d videos, want 2", len(videos))
	}

	first := videos[0]
	if first.ID != "aaaaaaaaaaa" || first.Title != "First Song" {
		t.Errorf("first = %+v", first)
	}
	if first.URL != "https://www.youtube.com/watch?v=aaaaaaaaaaa" {
		t.Errorf("URL = %s", first.URL)
	}
	if first.Views != 1234567 {
		t.Errorf("Views = %d", first.Views)
	}
	if first.Duration != 213 || first.DurationFormatted != "3:33" {
		t.Errorf("duration = %d / %q", first.Duration, first.DurationFormatted)
	}
	if first.Channel.Name != "Some Band" || first.Channel.URL != "https://www.youtube.com/@SomeBand" {
		t.Errorf("channel = %+v", first.Channel)
	}
	if first.Thumbnail != "https://i.ytimg.com/vi/aaaaaaaaaaa/hqdefault.jpg" {
		t.Errorf("thumbnail = %s", first.Thumbnail)
	}

	second := videos[1]
	if second.Views != 0 || second.Duration != 3723 {
		t.Errorf("second = %+v", second)
	}
}

func TestRelatedStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	y := newTestYouTube(srv)
	before := y.limiter.CurrentLimit()

	_, err := y.Related(context.Background(), "dQw4w9WgXcQ")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("Related() error = %v, want 429 StatusError", err)
	}
	if y.limiter.CurrentLimit() >= before {
		t.Errorf("limiter did not slow down: %v -> %v", before, y.limiter.CurrentLimit())
	}
}

func TestRelatedWithoutInitialData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><script>var other = {};</script></body></html>`)
	}))
	defer srv.Close()

	_, err := newTestYouTube(srv).Related(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrNoInitialData) {
		t.Fatalf("Related() error = %v, want ErrNoInitialData", err)
	}
}

func mustJSON(t *testing.T, raw string) *sjson.Json {
	t.Helper()
	j, err := sjson.NewJson([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	return j
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"runs", `{"runs":[{"text":"Part one"},{"text":", part two"}]}`, "Part one, part two"},
		{"simple", `{"simpleText":"simple"}`, "simple"},
		{"not an object", `"plain"`, ""},
		{"empty runs", `{"runs":[]}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text(mustJSON(t, tt.raw)); got != tt.want {
				t.Errorf("text(%s) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBylineChannel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Channel
	}{
		{
			name: "long byline with endpoint",
			raw:  `{"longBylineText":{"runs":[{"text":"Band","navigationEndpoint":{"browseEndpoint":{"canonicalBaseUrl":"/@band"}}}]}}`,
			want: Channel{Name: "Band", URL: "https://www.youtube.com/@band"},
		},
		{
			name: "short byline fallback",
			raw:  `{"shortBylineText":{"runs":[{"text":"Solo"}]}}`,
			want: Channel{Name: "Solo"},
		},
		{
			name: "no byline",
			raw:  `{}`,
			want: Channel{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bylineChannel(mustJSON(t, tt.raw)); got != tt.want {
				t.Errorf("bylineChannel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCollectFindsNestedRenderers(t *testing.T) {
	j := mustJSON(t, `{"b":[{"compactVideoRenderer":{"videoId":"two"}}],"a":{"x":{"compactVideoRenderer":{"videoId":"one"}}},"compactVideoRenderer":"not an object"}`)

	var found []*sjson.Json
	collect(j, "compactVideoRenderer", &found)

	if len(found) != 2 {
		t.Fatalf("collect() found %d renderers, want 2", len(found))
	}
	if found[0].Get("videoId").MustString() != "one" || found[1].Get("videoId").MustString() != "two" {
		t.Errorf("collect() order = %s, %s", found[0].Get("videoId").MustString(), found[1].Get("videoId").MustString())
	}
}

func TestLastThumbnail(t *testing.T) {
	j := mustJSON(t, `{"thumbnails":[{"url":"small"},{"url":"large"}]}`)
	if got := lastThumbnail(j); got != "large" {
		t.Errorf("lastThumbnail() = %q", got)
	}
	if got := lastThumbnail(mustJSON(t, `{}`)); got != "" {
		t.Errorf("lastThumbnail(empty) = %q", got)
	}
}
