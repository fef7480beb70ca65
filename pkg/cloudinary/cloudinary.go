package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/rs/zerolog"
)

// ErrFileNotFound indicates Cloudinary has no asset under the requested public id.
var ErrFileNotFound = errors.New("result file not found")

// maxFileSize caps downloads; result sheets are a few hundred kilobytes.
const maxFileSize = 32 << 20

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	Timeout   time.Duration
}

// Store reads result files stored as raw Cloudinary assets.
type Store struct {
	client  *cloudinary.Cloudinary
	folder  string
	http    *http.Client
	logger  zerolog.Logger
	resolve func(publicID string) (string, error)
}

// New constructs a Cloudinary backed result file store.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	store := &Store{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		http:   &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}
	store.resolve = store.deliveryURL
	return store, nil
}

// Read downloads the raw asset identified by fileID.
func (s *Store) Read(ctx context.Context, fileID string) ([]byte, error) {
	publicID := s.publicID(fileID)
	if publicID == "" {
		return nil, fmt.Errorf("%w: empty file id", ErrFileNotFound)
	}

	url, err := s.resolve(publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to build delivery url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, publicID)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("cloudinary returned status %d for %s", resp.StatusCode, publicID)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("asset %s exceeds %d bytes", publicID, maxFileSize)
	}

	s.logger.Debug().
		Str("public_id", publicID).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("result file downloaded")

	return data, nil
}

func (s *Store) deliveryURL(publicID string) (string, error) {
	file, err := s.client.File(publicID)
	if err != nil {
		return "", err
	}
	file.Config.URL.Secure = true
	return file.String()
}

// publicID prefixes bare ids with the configured folder.
func (s *Store) publicID(fileID string) string {
	id := strings.Trim(strings.TrimSpace(fileID), "/")
	if id == "" || s.folder == "" || strings.Contains(id, "/") {
		return id
	}
	return s.folder + "/" + id
}
