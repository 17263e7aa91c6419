package sources

import (
	"context"
	"io"

	"github.com/keshon/ytdlp-extractor/internal/music/track"
)

type Extractor interface {
	// Identifier returns the fixed name of the extractor ("ytdlp-extractor").
	Identifier() string

	// Protocols lists the query prefixes routed to this extractor while active.
	Protocols() []string

	Activate() error
	Deactivate() error

	// Validate is the admission gate run before Handle.
	Validate(query string, qt QueryType) bool

	// Handle turns a query into zero or more tracks.
	Handle(ctx context.Context, query string, sc SearchContext) (track.Result, error)

	// GetRelatedTracks suggests follow-ups for t, avoiding history where possible.
	GetRelatedTracks(ctx context.Context, t *track.Track, history []*track.Track) (track.Result, error)

	// Stream returns the audio bytes of t.
	Stream(ctx context.Context, t *track.Track) (io.ReadCloser, error)
}
