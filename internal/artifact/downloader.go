// Package artifact streams completed transcript documents from their
// transient links into the local storage directory.
package artifact

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/mattjoyce/voicegw/internal/config"
	"github.com/mattjoyce/voicegw/internal/log"
	"github.com/mattjoyce/voicegw/internal/remote"
)

// Downloader resolves a completed operation's document reference to a
// transient link and streams its bytes to <dir>/<audio_id>.json. In
// link-only mode (no provisioned storage volume) the link is logged instead.
type Downloader struct {
	client   remote.Client
	dir      string
	linkOnly bool
	http     *http.Client
	logger   *slog.Logger
}

// NewDownloader creates a Downloader for the configured storage mode.
func NewDownloader(client remote.Client, cfg config.StorageConfig) *Downloader {
	return &Downloader{
		client:   client,
		dir:      cfg.Dir,
		linkOnly: cfg.Mode == config.ModeLinkOnly,
		http:     &http.Client{Timeout: 5 * time.Minute},
		logger:   log.WithComponent("artifact"),
	}
}

// Fetch downloads the transcript of a completed classification operation.
// Every download settles exactly once: the response status is checked before
// the destination file exists, and a failed stream removes the partial file.
// A repeated delivery for the same audio id overwrites the previous artifact.
func (d *Downloader) Fetch(ctx context.Context, op *remote.Operation) error {
	audioID := op.Parameters.AudioID
	logger := d.logger.With("audio_id", audioID, "operation_id", op.ID)

	if op.Result == nil || op.Result.Document == nil || op.Result.Document.Transcript == "" {
		logger.Warn("completed operation carries no transcript document")
		return nil
	}

	link, err := d.client.DocumentLink(ctx, op.Result.Document.Transcript)
	if err != nil {
		return fmt.Errorf("resolve transcript link: %w", err)
	}

	if d.linkOnly {
		logger.Info("transcript ready (link-only mode)", "link", link)
		return nil
	}

	dest := filepath.Join(d.dir, audioID+".json")
	if err := d.stream(ctx, link, dest); err != nil {
		return err
	}

	return nil
}

// stream fetches link and writes its body to dest without buffering the
// whole payload in memory. A BLAKE3 checksum of the streamed bytes is
// logged so stored artifacts can be audited later.
func (d *Downloader) stream(ctx context.Context, link, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("build transcript request: %w", err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &remote.StatusError{
			Code:    resp.StatusCode,
			Message: fmt.Sprintf("transcript fetch returned %s", resp.Status),
		}
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create artifact file: %w", err)
	}

	hasher := blake3.New()
	written, err := io.Copy(file, io.TeeReader(resp.Body, hasher))
	if err != nil {
		file.Close()
		os.Remove(dest)
		return fmt.Errorf("stream transcript to %s: %w", dest, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close artifact file: %w", err)
	}

	d.logger.Info("transcript stored",
		"path", dest,
		"bytes", written,
		"blake3", hex.EncodeToString(hasher.Sum(nil)),
	)
	return nil
}
