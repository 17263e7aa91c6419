// Package track holds the normalized shapes handed to the playback host:
// tracks, playlists and the result of a resolution.
package track

import "github.com/bwmarrin/discordgo"

const SourceYouTube = "youtube"

// Extractor is the component that produced a track. Tracks only keep a
// non-owning reference to it.
type Extractor interface {
	Identifier() string
}

// Info carries the descriptive fields of a track.
type Info struct {
	Title           string
	Description     string
	Author          string
	URL             string
	Thumbnail       string
	Views           int
	Duration        string
	DurationSeconds int
	Source          string
	QueryType       string
	RequestedBy     *discordgo.User
}

// Track is a single playable unit.
type Track struct {
	Info

	// Playlist is set when the track was resolved as part of a playlist.
	// The playlist owns the track, not the other way around.
	Playlist *Playlist

	Extractor Extractor

	metadata any
}

// New builds a track around the raw catalog record it was derived from.
func New(info Info, raw any) *Track {
	return &Track{Info: info, metadata: raw}
}

// ResolveMetadata returns the raw catalog record the track was built from.
func (t *Track) ResolveMetadata() any {
	return t.metadata
}

func (t *Track) String() string {
	if t.Author == "" {
		return t.Title
	}
	return t.Title + " by " + t.Author
}

type Author struct {
	Name string
	URL  string
}

// Playlist is an ordered set of tracks sharing metadata.
type Playlist struct {
	ID          string
	Title       string
	Description string
	Thumbnail   string
	URL         string
	Type        string
	Source      string
	Author      Author
	Tracks      []*Track

	// Raw is the catalog record, kept for later expansion.
	Raw any
}

// Add appends tracks and points their back-reference at p.
func (p *Playlist) Add(tracks ...*Track) {
	for _, t := range tracks {
		t.Playlist = p
		p.Tracks = append(p.Tracks, t)
	}
}

// Result is what every resolution path returns. An empty Tracks slice
// means nothing was found.
type Result struct {
	Playlist *Playlist
	Tracks   []*Track
}

func Empty() Result {
	return Result{Tracks: []*Track{}}
}

func (r Result) IsEmpty() bool {
	return len(r.Tracks) == 0
}

// HasURL reports whether any track in history points at url.
func HasURL(history []*Track, url string) bool {
	for _, t := range history {
		if t != nil && t.URL == url {
			return true
		}
	}
	return false
}
