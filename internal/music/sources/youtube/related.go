package youtube

import (
	"context"

	"go.uber.org/zap"

	"github.com/keshon/ytdlp-extractor/internal/music/catalog"
	"github.com/keshon/ytdlp-extractor/internal/music/track"
)

// GetRelatedTracks suggests what to play after t. Candidates come from the
// watch page of t, or from a search on its author (or title) when that
// yields nothing. Candidates already in history are dropped unless that
// would leave nothing at all.
func (e *Extractor) GetRelatedTracks(ctx context.Context, t *track.Track, history []*track.Track) (track.Result, error) {
	if t == nil {
		return track.Empty(), nil
	}

	candidates := e.relatedCandidates(ctx, t)
	if len(candidates) == 0 {
		if err := ctx.Err(); err != nil {
			return track.Empty(), err
		}
		return track.Empty(), nil
	}

	unique := make([]*catalog.Video, 0, len(candidates))
	for _, v := range candidates {
		if track.HasURL(history, WatchURL(v.ID)) || track.HasURL(history, v.URL) {
			continue
		}
		unique = append(unique, v)
	}
	if len(unique) == 0 {
		e.log.Debug("every related candidate was already played, reusing them", zap.String("url", t.URL))
		unique = candidates
	}

	tracks := make([]*track.Track, 0, len(unique))
	for _, v := range unique {
		tracks = append(tracks, e.newRelatedTrack(v, t.RequestedBy))
	}
	return track.Result{Tracks: tracks}, nil
}

func (e *Extractor) relatedCandidates(ctx context.Context, t *track.Track) []*catalog.Video {
	var candidates []*catalog.Video

	if id, err := ParseURL(t.URL); err == nil {
		videos, err := e.catalog.Related(ctx, id)
		if err != nil {
			e.log.Warn("related lookup failed", zap.String("id", id), zap.Error(err))
		}
		candidates = nonNil(videos)
	}
	if len(candidates) > 0 {
		return candidates
	}

	query := t.Author
	if query == "" {
		query = t.Title
	}
	if query == "" {
		return nil
	}

	videos, err := e.catalog.Search(ctx, query, e.opts.RelatedSearchLimit, catalog.KindVideo)
	if err != nil {
		e.log.Warn("related search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	return nonNil(videos)
}

func nonNil(videos []*catalog.Video) []*catalog.Video {
	out := videos[:0:0]
	for _, v := range videos {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
