// Package ytdlp materializes audio with the yt-dlp binary. Each call
// downloads into its own temp file and hands back a stream that deletes
// the file when closed.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keshon/ytdlp-extractor/internal/music/parsers"
)

const (
	DefaultBinary    = "./bin/yt-dlp"
	DefaultFormat    = "bestaudio[ext=m4a]/m4a"
	DefaultContainer = "m4a"

	stderrTail = 512
)

var _ parsers.Streamer = (*Downloader)(nil)

// ExtractionError means yt-dlp could not be started or exited non-zero.
type ExtractionError struct {
	URL    string
	Stderr string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("yt-dlp extraction of %s failed: %v", e.URL, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type Downloader struct {
	BinaryPath string
	Format     string
	Container  string
	TempDir    string

	log *zap.Logger
}

func New(binaryPath, tempDir string, log *zap.Logger) *Downloader {
	if binaryPath == "" {
		binaryPath = DefaultBinary
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Downloader{
		BinaryPath: binaryPath,
		Format:     DefaultFormat,
		Container:  DefaultContainer,
		TempDir:    tempDir,
		log:        log.Named("ytdlp"),
	}
}

// Stream runs yt-dlp to completion and opens the resulting file. Nothing is
// readable until the whole file has been written.
func (d *Downloader) Stream(ctx context.Context, url string) (io.ReadCloser, error) {
	fileName := d.tempFileName()

	args := []string{
		url,
		"-f", d.Format,
		"--no-playlist",
		"--no-part",
		"--quiet",
		"--no-warnings",
		"-o", fileName,
	}

	var stderr tailBuffer
	cmd := exec.CommandContext(ctx, d.BinaryPath, args...)
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		d.removePartial(fileName)
		d.log.Warn("extraction failed", zap.String("url", url), zap.Error(err), zap.String("stderr", stderr.String()))
		return nil, &ExtractionError{URL: url, Stderr: stderr.String(), Err: err}
	}

	f, err := os.Open(fileName)
	if err != nil {
		d.removePartial(fileName)
		return nil, &ExtractionError{URL: url, Err: fmt.Errorf("open extracted file: %w", err)}
	}

	d.log.Debug("extraction finished", zap.String("url", url), zap.String("file", fileName), zap.Duration("took", time.Since(start)))
	return &tempFileStream{file: f, path: fileName, log: d.log}, nil
}

func (d *Downloader) tempFileName() string {
	dir := d.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	container := strings.TrimPrefix(d.Container, ".")
	if container == "" {
		container = DefaultContainer
	}
	// yt-dlp must create the file itself, otherwise it reports "already downloaded"
	return filepath.Join(dir, fmt.Sprintf("ytdlp-%s.%s", uuid.NewString(), container))
}

// tempFileStream owns its file: closing it also removes it from disk.
type tempFileStream struct {
	file *os.File
	path string
	log  *zap.Logger

	once sync.Once
	err  error
}

func (s *tempFileStream) Read(p []byte) (int, error) {
	return s.file.Read(p)
}

func (s *tempFileStream) Close() error {
	s.once.Do(func() {
		closeErr := s.file.Close()
		rmErr := os.Remove(s.path)
		if errors.Is(rmErr, fs.ErrNotExist) {
			rmErr = nil
		}
		if rmErr != nil {
			s.log.Warn("temp file not removed", zap.String("file", s.path), zap.Error(rmErr))
		}
		s.err = errors.Join(closeErr, rmErr)
	})
	return s.err
}

// removePartial deletes whatever yt-dlp left behind after a failure.
func (d *Downloader) removePartial(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		d.log.Warn("partial file not removed", zap.String("file", path), zap.Error(err))
	}
}

// tailBuffer keeps the last stderrTail bytes written to it.
type tailBuffer struct {
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > stderrTail {
		t.buf = t.buf[len(t.buf)-stderrTail:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
