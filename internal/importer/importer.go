// Package importer loads assets from spreadsheet exports and BitLocker
// recovery keys from the text files Windows writes for them.
package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/rs/zerolog"

	"evalgo.org/assetd/internal/logging"
	"evalgo.org/assetd/internal/metrics"
	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/models"
)

// Supported spreadsheet formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Importer writes parsed files to storage.
type Importer struct {
	storage *storage.Storage
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// New creates an importer. m may be nil.
func New(s *storage.Storage, log zerolog.Logger, m *metrics.Metrics) *Importer {
	return &Importer{storage: s, log: logging.For(log, "importer"), metrics: m}
}

// FormatOf returns the spreadsheet format implied by a file name.
func FormatOf(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported file type %q, expected .csv or .xlsx: %w", filepath.Ext(filename), errdefs.ErrInvalidArgument)
}

// ImportAssets parses a CSV or XLSX file and inserts every row as a new
// asset in a single batch insert, returning the number inserted.
//
// Rows are not checked against existing codes first. A code that already
// exists fails the insert with a conflict.
func (im *Importer) ImportAssets(ctx context.Context, filename string, r io.Reader) (int, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return 0, err
	}

	var assets []models.Asset
	switch format {
	case FormatCSV:
		assets, err = ParseCSV(r)
	case FormatXLSX:
		assets, err = ParseXLSX(r)
	}
	if err != nil {
		return 0, err
	}
	if len(assets) == 0 {
		return 0, nil
	}

	if err := im.storage.Assets.CreateBatch(im.storage.Session(ctx), assets); err != nil {
		im.log.Error().Err(err).Str("file", filename).Int("rows", len(assets)).Msg("asset import failed")
		return 0, err
	}

	im.metrics.ObserveImport(format, len(assets))
	im.log.Info().
		Str(logging.Event, "assets_imported").
		Str("file", filename).
		Str("format", format).
		Int("rows", len(assets)).
		Msg("assets imported")
	return len(assets), nil
}

// ImportBitLocker stores the recovery key found in a BitLocker export for
// asset assetID. The drive comes from the file name ("C_..."). An existing
// key for the same drive is overwritten.
func (im *Importer) ImportBitLocker(ctx context.Context, assetID uint, filename string, content []byte) (*models.RecoveryKey, error) {
	key, err := im.importBitLocker(ctx, assetID, filename, content)
	im.metrics.ObserveRecoveryImport(err)
	if err != nil {
		return nil, err
	}
	im.log.Info().
		Str(logging.Event, "recovery_key_imported").
		Uint(logging.AssetID, assetID).
		Str("drive", key.Drive).
		Msg("recovery key imported")
	return key, nil
}

func (im *Importer) importBitLocker(ctx context.Context, assetID uint, filename string, content []byte) (*models.RecoveryKey, error) {
	drive, ok := ParseDriveLetter(filename)
	if !ok {
		return nil, fmt.Errorf("file name %q must start with the drive letter and an underscore, e.g. C_recovery.txt: %w",
			filepath.Base(filename), errdefs.ErrInvalidArgument)
	}
	secret, ok := ParseRecoveryKey(decodeBytes(content))
	if !ok {
		return nil, fmt.Errorf(`file must contain a "Recovery Key:" line followed by the numeric key: %w`, errdefs.ErrInvalidArgument)
	}

	key := &models.RecoveryKey{AssetID: assetID, Drive: drive, Key: secret}
	err := im.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := im.storage.Assets.Get(u, assetID); err != nil {
			return err
		}
		return im.storage.RecoveryKeys.Upsert(u, key)
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}
