package youtube

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ytdlp-extractor/internal/music/catalog"
	source "github.com/keshon/ytdlp-extractor/internal/music/sources"
	"github.com/keshon/ytdlp-extractor/internal/music/track"
)

const playlistType = "playlist"

// newTrack maps a catalog record onto a track. Views and durations are
// copied as the catalog reported them.
func (e *Extractor) newTrack(v *catalog.Video, qt source.QueryType, requestedBy *discordgo.User) *track.Track {
	t := track.New(track.Info{
		Title:           v.Title,
		Description:     v.Description,
		Author:          v.Channel.Name,
		URL:             v.URL,
		Thumbnail:       v.Thumbnail,
		Views:           v.Views,
		Duration:        v.DurationFormatted,
		DurationSeconds: v.Duration,
		Source:          track.SourceYouTube,
		QueryType:       string(qt),
		RequestedBy:     requestedBy,
	}, v)
	t.Extractor = e
	return t
}

func (e *Extractor) newPlaylist(p *catalog.Playlist, requestedBy *discordgo.User) *track.Playlist {
	description := p.Description
	if description == "" {
		description = p.Title
	}

	playlist := &track.Playlist{
		ID:          p.ID,
		Title:       p.Title,
		Description: description,
		Thumbnail:   p.Thumbnail,
		URL:         p.URL,
		Type:        playlistType,
		Source:      track.SourceYouTube,
		Author:      track.Author{Name: p.Channel.Name, URL: p.Channel.URL},
		Tracks:      make([]*track.Track, 0, len(p.Videos)),
		Raw:         p,
	}

	for _, v := range p.Videos {
		if v == nil {
			continue
		}
		playlist.Add(e.newTrack(v, source.QueryYouTubeVideo, requestedBy))
	}
	return playlist
}

// newRelatedTrack builds a follow-up suggestion. Its URL is always the
// canonical watch URL.
func (e *Extractor) newRelatedTrack(v *catalog.Video, requestedBy *discordgo.User) *track.Track {
	duration := v.DurationFormatted
	if duration == "" {
		duration = catalog.FormatDuration(v.Duration)
	}

	t := track.New(track.Info{
		Title:           v.Title,
		Description:     v.Title,
		Author:          v.Channel.Name,
		URL:             WatchURL(v.ID),
		Thumbnail:       v.Thumbnail,
		Views:           v.Views,
		Duration:        duration,
		DurationSeconds: v.Duration,
		Source:          track.SourceYouTube,
		QueryType:       string(source.QueryYouTubeVideo),
		RequestedBy:     requestedBy,
	}, v)
	t.Extractor = e
	return t
}
