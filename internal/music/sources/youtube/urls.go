package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	idLength = 11

	// radioMixMarker marks auto-generated mixes. They have no single
	// deterministic video behind them.
	radioMixMarker = "list=RD"

	watchURLTemplate = "https://www.youtube.com/watch?v=%s"
)

var (
	ErrNotFound       = errors.New("no video id found")
	ErrDomainMismatch = errors.New("not a YouTube domain")
	ErrInvalidFormat  = errors.New("video id does not match expected format")
)

var (
	validQueryDomains = map[string]struct{}{
		"youtube.com":        {},
		"www.youtube.com":    {},
		"m.youtube.com":      {},
		"music.youtube.com":  {},
		"gaming.youtube.com": {},
	}

	validPathDomains = regexp.MustCompile(`^https?://(youtu\.be/|(www\.)?youtube\.com/(embed|v|shorts)/)`)
	idPattern        = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	altSubdomains    = regexp.MustCompile(`\b(?:(?:m|music|gaming)\.)+youtube\.com`)
)

// IsRecognizedHost reports whether link points at a YouTube host or matches
// one of the short-link, embed or shorts forms.
func IsRecognizedHost(link string) bool {
	link = strings.TrimSpace(link)
	if validPathDomains.MatchString(link) {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return isAllowedHost(u.Hostname())
}

// ParseURL extracts the 11-character video id from link.
func ParseURL(link string) (string, error) {
	link = strings.TrimSpace(link)

	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrNotFound, link)
	}

	id := u.Query().Get("v")
	if validPathDomains.MatchString(link) && id == "" {
		paths := strings.Split(u.Path, "/")
		if strings.EqualFold(u.Host, "youtu.be") {
			id = segment(paths, 1)
		} else {
			id = segment(paths, 2)
		}
	} else if host := u.Hostname(); host != "" && !isAllowedHost(host) {
		return "", fmt.Errorf("%w: %s", ErrDomainMismatch, host)
	}

	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, link)
	}

	if len(id) > idLength {
		id = id[:idLength]
	}
	if !ValidateID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, id)
	}
	return id, nil
}

// ValidateURL reports whether a video id can be extracted from link.
func ValidateURL(link string) bool {
	_, err := ParseURL(link)
	return err == nil
}

func ValidateID(id string) bool {
	return idPattern.MatchString(strings.TrimSpace(id))
}

// Canonicalize rewrites m., music. and gaming. YouTube hosts to the base
// domain. Applying it twice gives the same result as applying it once.
func Canonicalize(s string) string {
	if !strings.Contains(s, "youtube.com") {
		return s
	}
	return altSubdomains.ReplaceAllString(s, "youtube.com")
}

func IsRadioMix(s string) bool {
	return strings.Contains(s, radioMixMarker)
}

func WatchURL(id string) string {
	return fmt.Sprintf(watchURLTemplate, id)
}

func isAllowedHost(host string) bool {
	_, ok := validQueryDomains[strings.ToLower(host)]
	return ok
}

func segment(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
