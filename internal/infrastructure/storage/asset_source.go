// Package storage locates the binary assets served by the billing service.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/erp/invoicing/internal/domain/shared"
	infraconfig "github.com/erp/invoicing/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AssetSource opens the canonical invoice PDF
type AssetSource interface {
	// Open returns a reader over the asset. The caller closes it.
	Open(ctx context.Context) (io.ReadCloser, error)
	// Location describes where the asset is read from
	Location() string
}

// ReadAsset reads the whole asset into memory
func ReadAsset(ctx context.Context, src AssetSource) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", src.Location(), err)
	}
	return data, nil
}

// NewAssetSource builds the source selected by configuration
func NewAssetSource(cfg *infraconfig.AssetConfig, logger *zap.Logger) (AssetSource, error) {
	if cfg == nil {
		return nil, errors.New("asset configuration is required")
	}
	switch cfg.Source {
	case "", infraconfig.AssetSourceFile:
		return NewFileAssetSource(cfg.Path), nil
	case infraconfig.AssetSourceS3:
		return NewS3AssetSource(cfg, WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown asset source %q", cfg.Source)
	}
}

func assetMissing(location string) error {
	return shared.NewDomainError(shared.CodeAssetMissing, fmt.Sprintf("PDF asset not found at '%s'.", location))
}

// FileAssetSource reads the asset from the local filesystem
type FileAssetSource struct {
	path string
}

var _ AssetSource = (*FileAssetSource)(nil)

// NewFileAssetSource creates a source for the given path. Relative paths
// resolve against the working directory.
func NewFileAssetSource(path string) *FileAssetSource {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &FileAssetSource{path: path}
}

// Open opens the asset file. A missing file is reported as an asset-missing error.
func (s *FileAssetSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, assetMissing(s.path)
		}
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}
	return f, nil
}

// Location returns the absolute file path
func (s *FileAssetSource) Location() string {
	return s.path
}
