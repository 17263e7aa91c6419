package youtube

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/keshon/ytdlp-extractor/internal/config"
	"github.com/keshon/ytdlp-extractor/internal/music/catalog"
	"github.com/keshon/ytdlp-extractor/internal/music/parsers"
	"github.com/keshon/ytdlp-extractor/internal/music/parsers/ytdlp"
	source "github.com/keshon/ytdlp-extractor/internal/music/sources"
	"github.com/keshon/ytdlp-extractor/internal/music/track"
	"github.com/keshon/ytdlp-extractor/pkg/ratelimit"
)

const (
	Identifier = "ytdlp-extractor"

	ProtocolSearch  = "ytsearch"
	ProtocolYouTube = "youtube"

	playlistPageSize = 100
)

var (
	ErrUnsupportedQueryType = errors.New(Identifier + " does not handle this query type")
	ErrNoTrack              = errors.New("no track to stream")
)

var admitted = []source.QueryType{
	source.QueryYouTube,
	source.QueryYouTubePlaylist,
	source.QueryYouTubeSearch,
	source.QueryYouTubeVideo,
	source.QueryAuto,
	source.QueryAutoSearch,
}

// instance is the process-wide active extractor. Activate sets it and
// Deactivate clears it; the host runs them once per process.
var instance atomic.Pointer[Extractor]

// Instance returns the active extractor, or nil when none is active.
func Instance() *Extractor {
	return instance.Load()
}

type Options struct {
	PlaylistPageLimit  int
	SearchLimit        int
	RelatedSearchLimit int
}

func DefaultOptions() Options {
	return Options{
		PlaylistPageLimit:  20,
		SearchLimit:        10,
		RelatedSearchLimit: 5,
	}
}

var _ source.Extractor = (*Extractor)(nil)

// Extractor resolves YouTube queries through the catalog and streams audio
// through yt-dlp.
type Extractor struct {
	catalog  catalog.Catalog
	streamer parsers.Streamer
	opts     Options
	log      *zap.Logger

	mu        sync.RWMutex
	protocols []string
}

func New(cat catalog.Catalog, streamer parsers.Streamer, opts Options, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.PlaylistPageLimit <= 0 {
		opts.PlaylistPageLimit = def.PlaylistPageLimit
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = def.SearchLimit
	}
	if opts.RelatedSearchLimit <= 0 {
		opts.RelatedSearchLimit = def.RelatedSearchLimit
	}
	return &Extractor{
		catalog:  cat,
		streamer: streamer,
		opts:     opts,
		log:      log.Named(Identifier),
	}
}

// NewFromConfig wires the YouTube catalog and the yt-dlp downloader.
func NewFromConfig(cfg *config.Config, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	rps := rate.Limit(cfg.CatalogRPS)
	limiter := ratelimit.NewAdaptiveLimiter(rps, 1, rps*4, 1, 0.5)
	client := catalog.NewHTTPClient(cfg.CatalogProxy, cfg.CatalogTimeout, log)

	downloader := ytdlp.New(cfg.YtdlpPath, cfg.TempDir, log)
	downloader.Format = cfg.YtdlpFormat
	downloader.Container = cfg.YtdlpContainer

	return New(catalog.NewYouTube(client, limiter, log), downloader, Options{
		PlaylistPageLimit:  cfg.PlaylistPageLimit,
		SearchLimit:        cfg.SearchLimit,
		RelatedSearchLimit: cfg.RelatedSearchLimit,
	}, log)
}

func (e *Extractor) Identifier() string {
	return Identifier
}

func (e *Extractor) Protocols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.protocols)
}

func (e *Extractor) Activate() error {
	e.mu.Lock()
	e.protocols = []string{ProtocolSearch, ProtocolYouTube}
	e.mu.Unlock()

	instance.Store(e)
	e.log.Info("activated", zap.Strings("protocols", e.Protocols()))
	return nil
}

func (e *Extractor) Deactivate() error {
	e.mu.Lock()
	e.protocols = nil
	e.mu.Unlock()

	instance.CompareAndSwap(e, nil)
	e.log.Info("deactivated")
	return nil
}

// Validate admits only the query types this extractor knows how to resolve.
func (e *Extractor) Validate(query string, qt source.QueryType) bool {
	return slices.Contains(admitted, qt)
}

// Handle resolves query into tracks. Catalog failures yield an empty
// result; an error is returned only for a query type Validate rejects or
// when ctx is done.
func (e *Extractor) Handle(ctx context.Context, q string, sc source.SearchContext) (track.Result, error) {
	query := Canonicalize(q)

	if sc.Protocol == ProtocolSearch {
		sc.Type = source.QueryYouTubeSearch
	} else if !IsRadioMix(query) && ValidateURL(query) {
		sc.Type = source.QueryYouTubeVideo
	}

	if !e.Validate(query, sc.Type) {
		return track.Empty(), ErrUnsupportedQueryType
	}

	var res track.Result
	switch sc.Type {
	case source.QueryYouTubePlaylist:
		res = e.handlePlaylist(ctx, query, sc)
	case source.QueryYouTubeVideo:
		res = e.handleVideo(ctx, query, sc)
	default:
		res = track.Result{Tracks: e.search(ctx, query, e.opts.SearchLimit, sc)}
	}

	if res.IsEmpty() && ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, nil
}

func (e *Extractor) handlePlaylist(ctx context.Context, query string, sc source.SearchContext) track.Result {
	p, err := e.catalog.Playlist(ctx, query, e.opts.PlaylistPageLimit*playlistPageSize)
	if err != nil || p == nil {
		e.log.Warn("playlist lookup failed", zap.String("query", query), zap.Error(err))
		return track.Empty()
	}

	playlist := e.newPlaylist(p, sc.RequestedBy)
	return track.Result{Playlist: playlist, Tracks: playlist.Tracks}
}

func (e *Extractor) handleVideo(ctx context.Context, query string, sc source.SearchContext) track.Result {
	id, err := ParseURL(query)
	if err != nil {
		e.log.Debug("not a direct video", zap.String("query", query), zap.Error(err))
		return track.Empty()
	}

	v, err := e.catalog.Video(ctx, WatchURL(id))
	if err != nil || v == nil {
		e.log.Warn("video lookup failed", zap.String("id", id), zap.Error(err))
		return track.Empty()
	}

	return track.Result{Tracks: []*track.Track{e.newTrack(v, sc.Type, sc.RequestedBy)}}
}

func (e *Extractor) search(ctx context.Context, query string, limit int, sc source.SearchContext) []*track.Track {
	videos, err := e.catalog.Search(ctx, query, limit, catalog.KindVideo)
	if err != nil {
		e.log.Warn("search failed", zap.String("query", query), zap.Error(err))
		return []*track.Track{}
	}

	tracks := make([]*track.Track, 0, len(videos))
	for _, v := range videos {
		if v == nil {
			continue
		}
		tracks = append(tracks, e.newTrack(v, sc.Type, sc.RequestedBy))
	}
	return tracks
}

// Stream downloads the audio of t and returns it as a stream that removes
// its backing file on Close.
func (e *Extractor) Stream(ctx context.Context, t *track.Track) (io.ReadCloser, error) {
	if t == nil || t.URL == "" {
		return nil, ErrNoTrack
	}
	return e.streamer.Stream(ctx, Canonicalize(t.URL))
}
