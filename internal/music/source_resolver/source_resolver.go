package source_resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/keshon/ytdlp-extractor/internal/music/sources"
	"github.com/keshon/ytdlp-extractor/internal/music/track"
)

var (
	ErrNoExtractor       = errors.New("no extractor can handle this query")
	ErrAlreadyRegistered = errors.New("extractor already registered")
)

// Registry routes queries to the extractors registered with it.
type Registry struct {
	log *zap.Logger

	mu         sync.RWMutex
	extractors []sources.Extractor
	byID       map[string]sources.Extractor
	byProtocol map[string]sources.Extractor
}

func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:        log.Named("source_resolver"),
		byID:       make(map[string]sources.Extractor),
		byProtocol: make(map[string]sources.Extractor),
	}
}

// Register activates ext and indexes the protocols it reports afterwards.
func (r *Registry) Register(ext sources.Extractor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := ext.Identifier()
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, id)
	}
	if err := ext.Activate(); err != nil {
		return fmt.Errorf("activate %s: %w", id, err)
	}

	r.extractors = append(r.extractors, ext)
	r.byID[id] = ext
	for _, p := range ext.Protocols() {
		if prev, ok := r.byProtocol[p]; ok {
			r.log.Warn("protocol already claimed", zap.String("protocol", p), zap.String("by", prev.Identifier()))
			continue
		}
		r.byProtocol[p] = ext
	}
	r.log.Info("registered", zap.String("extractor", id), zap.Strings("protocols", ext.Protocols()))
	return nil
}

// Unregister deactivates the extractor with the given identifier and drops
// its protocols. Unknown identifiers are ignored.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, ok := r.byID[id]
	if !ok {
		return nil
	}

	delete(r.byID, id)
	for p, owner := range r.byProtocol {
		if owner == ext {
			delete(r.byProtocol, p)
		}
	}
	for i, e := range r.extractors {
		if e == ext {
			r.extractors = append(r.extractors[:i], r.extractors[i+1:]...)
			break
		}
	}

	if err := ext.Deactivate(); err != nil {
		return fmt.Errorf("deactivate %s: %w", id, err)
	}
	return nil
}

// Close unregisters every extractor, newest first.
func (r *Registry) Close() error {
	r.mu.RLock()
	ids := make([]string, 0, len(r.extractors))
	for i := len(r.extractors) - 1; i >= 0; i-- {
		ids = append(ids, r.extractors[i].Identifier())
	}
	r.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		errs = append(errs, r.Unregister(id))
	}
	return errors.Join(errs...)
}

// Resolve hands input to an extractor. A "proto:rest" prefix naming a
// registered protocol selects that extractor directly; otherwise the first
// extractor admitting the query type wins. An empty type is inferred from
// the input.
func (r *Registry) Resolve(ctx context.Context, input string, sc sources.SearchContext) (track.Result, error) {
	input = strings.TrimSpace(input)
	if sc.Type == "" {
		sc.Type = inferType(input)
	}

	if ext, proto, rest, ok := r.byPrefix(input); ok {
		sc.Protocol = proto
		return ext.Handle(ctx, rest, sc)
	}

	ext := r.admitting(input, sc.Type)
	if ext == nil {
		return track.Empty(), fmt.Errorf("%w: %q (%s)", ErrNoExtractor, input, sc.Type)
	}
	return ext.Handle(ctx, input, sc)
}

// Related asks the extractor that produced t for follow-up tracks.
func (r *Registry) Related(ctx context.Context, t *track.Track, history []*track.Track) (track.Result, error) {
	ext, err := r.owner(t)
	if err != nil {
		return track.Empty(), err
	}
	return ext.GetRelatedTracks(ctx, t, history)
}

// Stream opens the audio of t through the extractor that produced it.
func (r *Registry) Stream(ctx context.Context, t *track.Track) (io.ReadCloser, error) {
	ext, err := r.owner(t)
	if err != nil {
		return nil, err
	}
	return ext.Stream(ctx, t)
}

func (r *Registry) Extractor(id string) (sources.Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.byID[id]
	return ext, ok
}

func (r *Registry) byPrefix(input string) (sources.Extractor, string, string, bool) {
	proto, rest, ok := splitProtocol(input)
	if !ok {
		return nil, "", "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.byProtocol[proto]
	return ext, proto, rest, ok
}

func (r *Registry) admitting(input string, qt sources.QueryType) sources.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ext := range r.extractors {
		if ext.Validate(input, qt) {
			return ext
		}
	}
	return nil
}

func (r *Registry) owner(t *track.Track) (sources.Extractor, error) {
	if t == nil || t.Extractor == nil {
		return nil, ErrNoExtractor
	}
	ext, ok := r.Extractor(t.Extractor.Identifier())
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered", ErrNoExtractor, t.Extractor.Identifier())
	}
	return ext, nil
}
