package source_resolver

import (
	"strings"

	"github.com/keshon/ytdlp-extractor/internal/music/sources"
)

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func inferType(input string) sources.QueryType {
	if isURL(input) {
		return sources.QueryAuto
	}
	return sources.QueryAutoSearch
}

// splitProtocol splits "proto:rest". URLs are never treated as prefixed.
func splitProtocol(input string) (string, string, bool) {
	if isURL(input) {
		return "", "", false
	}
	proto, rest, ok := strings.Cut(input, ":")
	if !ok || proto == "" || strings.ContainsAny(proto, " /") {
		return "", "", false
	}
	return strings.ToLower(proto), strings.TrimSpace(rest), true
}
