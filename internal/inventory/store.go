// Package inventory implements the asset resource store and the hardware
// replacement workflow.
//
// An asset is written together with its child collections (recovery keys
// and license entries), which travel on models.Asset itself. Updates always
// replace both child sets as a whole: an update that omits them clears them.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/rs/zerolog"

	"evalgo.org/assetd/internal/logging"
	"evalgo.org/assetd/internal/metrics"
	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/models"
)

// Paging limits for List.
const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// Store is the resource store for assets.
type Store struct {
	storage *storage.Storage
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewStore creates a store. m may be nil.
func NewStore(s *storage.Storage, log zerolog.Logger, m *metrics.Metrics) *Store {
	return &Store{
		storage: s,
		log:     logging.For(log, "inventory"),
		metrics: m,
	}
}

// ListQuery selects a page of assets.
type ListQuery struct {
	Search string
	// Incomplete keeps only assets missing any of CompletenessFields
	Incomplete bool
	// Page is 1-based
	Page  int
	Limit int
}

// Page is one page of a listing.
type Page struct {
	Items []models.Asset `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// Create inserts a and its children in one transaction and returns the
// stored asset.
func (s *Store) Create(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	if err := prepare(a); err != nil {
		return nil, err
	}
	keys, licenses, err := children(a)
	if err != nil {
		return nil, err
	}
	a.ID = 0

	err = s.storage.InTx(ctx, func(u *storage.Unit) error {
		if err := s.checkCode(u, a.Code, 0); err != nil {
			return err
		}
		if err := s.storage.Assets.Create(u, a); err != nil {
			return err
		}
		return s.writeChildren(u, a.ID, keys, licenses)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, a.ID)
}

// Update overwrites the scalar fields of asset id with a and replaces both
// child collections with those carried by a.
func (s *Store) Update(ctx context.Context, id uint, a *models.Asset) (*models.Asset, error) {
	keys, licenses, err := children(a)
	if err != nil {
		return nil, err
	}

	err = s.storage.InTx(ctx, func(u *storage.Unit) error {
		current, err := s.storage.Assets.Get(u, id)
		if err != nil {
			return err
		}
		if a.Status == "" {
			a.Status = current.Status
		}
		if err := prepare(a); err != nil {
			return err
		}
		if err := s.checkCode(u, a.Code, id); err != nil {
			return err
		}

		a.ID = id
		a.CreatedAt = current.CreatedAt
		if err := s.storage.Assets.Update(u, a); err != nil {
			return err
		}

		if err := s.storage.RecoveryKeys.DeleteByAsset(u, id); err != nil {
			return err
		}
		if err := s.storage.Licenses.DeleteByAsset(u, id); err != nil {
			return err
		}
		return s.writeChildren(u, id, keys, licenses)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an asset together with its children and IP assignments.
func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := s.storage.Assets.Get(u, id); err != nil {
			return err
		}
		if err := s.storage.Assignments.DeleteByAsset(u, id); err != nil {
			return err
		}
		if err := s.storage.RecoveryKeys.DeleteByAsset(u, id); err != nil {
			return err
		}
		if err := s.storage.Licenses.DeleteByAsset(u, id); err != nil {
			return err
		}
		return s.storage.Assets.Delete(u, id)
	})
}

// Get returns an asset with both child collections loaded.
func (s *Store) Get(ctx context.Context, id uint) (*models.Asset, error) {
	u := s.storage.Session(ctx)
	a, err := s.storage.Assets.Get(u, id)
	if err != nil {
		return nil, err
	}
	if a.RecoveryKeys, err = s.storage.RecoveryKeys.ListByAsset(u, id); err != nil {
		return nil, err
	}
	if a.Licenses, err = s.storage.Licenses.ListByAsset(u, id); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns one page of assets, newest first. Children are not loaded.
func (s *Store) List(ctx context.Context, q ListQuery) (*Page, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	aq := storage.AssetQuery{
		Search:        strings.TrimSpace(q.Search),
		SearchColumns: SearchColumns,
		Offset:        (page - 1) * limit,
		Limit:         limit,
	}
	if q.Incomplete {
		aq.Incomplete = CompletenessFields
	}

	items, total, err := s.storage.Assets.List(s.storage.Session(ctx), aq)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Asset{}
	}
	return &Page{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *Store) checkCode(u *storage.Unit, code *string, exceptID uint) error {
	if code == nil {
		return nil
	}
	taken, err := s.storage.Assets.CodeTaken(u, *code, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("asset code %q is already in use: %w", *code, errdefs.ErrConflict)
	}
	return nil
}

func (s *Store) writeChildren(u *storage.Unit, assetID uint, keys []models.RecoveryKey, licenses []models.LicenseEntry) error {
	for i := range keys {
		keys[i].AssetID = assetID
	}
	for i := range licenses {
		licenses[i].AssetID = assetID
	}
	if err := s.storage.RecoveryKeys.CreateBatch(u, keys); err != nil {
		return err
	}
	return s.storage.Licenses.CreateBatch(u, licenses)
}

// prepare normalizes the code and defaults the status of a.
func prepare(a *models.Asset) error {
	a.Code = normalizeCodePtr(a.Code)
	if a.Status == "" {
		a.Status = models.StatusActive
	}
	if !models.ValidStatus(a.Status) {
		return fmt.Errorf("unknown asset status %q: %w", a.Status, errdefs.ErrInvalidArgument)
	}
	return nil
}

// children detaches the child collections from a and returns clean copies.
// License entries without a program are dropped.
func children(a *models.Asset) ([]models.RecoveryKey, []models.LicenseEntry, error) {
	keys := make([]models.RecoveryKey, 0, len(a.RecoveryKeys))
	for _, k := range a.RecoveryKeys {
		drive := strings.ToUpper(strings.TrimSpace(k.Drive))
		key := strings.TrimSpace(k.Key)
		if drive == "" || key == "" {
			return nil, nil, fmt.Errorf("recovery keys need a drive and a key: %w", errdefs.ErrInvalidArgument)
		}
		keys = append(keys, models.RecoveryKey{Drive: drive, Key: key})
	}

	licenses := make([]models.LicenseEntry, 0, len(a.Licenses))
	for _, l := range a.Licenses {
		program := strings.TrimSpace(l.Program)
		if program == "" {
			continue
		}
		licenses = append(licenses, models.LicenseEntry{Program: program, LicenseKey: l.LicenseKey})
	}

	a.RecoveryKeys, a.Licenses = nil, nil
	return keys, licenses, nil
}
