package parsers

import (
	"context"
	"io"
)

// Streamer turns a media URL into audio bytes.
type Streamer interface {
	Stream(ctx context.Context, url string) (io.ReadCloser, error)
}
