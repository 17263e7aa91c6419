package sources

import "github.com/bwmarrin/discordgo"

// QueryType is the kind of query the host believes it is handing over.
type QueryType string

const (
	QueryYouTube         QueryType = "youtube"
	QueryYouTubePlaylist QueryType = "youtubePlaylist"
	QueryYouTubeSearch   QueryType = "youtubeSearch"
	QueryYouTubeVideo    QueryType = "youtubeVideo"
	QueryAuto            QueryType = "auto"
	QueryAutoSearch      QueryType = "autoSearch"
)

// SearchContext travels with a query through the resolution pipeline.
type SearchContext struct {
	Type        QueryType
	Protocol    string
	RequestedBy *discordgo.User
}
