package inventory

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"

	"evalgo.org/assetd/internal/logging"
	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/models"
)

// ReplaceRequest describes a hardware swap.
type ReplaceRequest struct {
	NewAssetCode string `json:"newAssetCode" validate:"required"`
	// FieldsToCopy selects the carry-over; nil means DefaultCarryOver
	FieldsToCopy []string `json:"fieldsToCopy,omitempty"`
}

// Replace retires asset oldID and creates its successor under a new code.
//
// The selected transferable fields move to the new asset and are cleared on
// the old one, which ends up Replaced. License entries move when "licenses"
// is selected; recovery keys always stay with the old asset. Everything runs
// in one transaction holding a row lock on the old asset.
func (s *Store) Replace(ctx context.Context, oldID uint, req ReplaceRequest) (*models.Asset, error) {
	newID, err := s.replace(ctx, oldID, req)
	s.metrics.ObserveReplacement(err)
	if err != nil {
		s.log.Warn().Err(err).Uint(logging.AssetID, oldID).Msg("asset replacement failed")
		return nil, err
	}

	s.log.Info().
		Str(logging.Event, "asset_replaced").
		Uint(logging.AssetID, oldID).
		Uint("new_asset_id", newID).
		Msg("asset replaced")
	return s.Get(ctx, newID)
}

func (s *Store) replace(ctx context.Context, oldID uint, req ReplaceRequest) (uint, error) {
	code := NormalizeCode(req.NewAssetCode)
	if code == "" {
		return 0, fmt.Errorf("new asset code is required: %w", errdefs.ErrInvalidArgument)
	}
	plan := planCarryOver(req.FieldsToCopy)

	var newID uint
	err := s.storage.InTx(ctx, func(u *storage.Unit) error {
		old, err := s.storage.Assets.GetForUpdate(u, oldID)
		if err != nil {
			return err
		}
		if old.Status == models.StatusReplaced {
			return fmt.Errorf("asset %d has already been replaced: %w", oldID, errdefs.ErrConflict)
		}
		if err := s.checkCode(u, &code, 0); err != nil {
			return err
		}

		successor := &models.Asset{Code: &code, Status: models.StatusActive}
		for _, f := range plan.fields {
			f.move(successor, old)
		}
		if err := s.storage.Assets.Create(u, successor); err != nil {
			return err
		}

		if plan.licenses {
			if _, err := s.storage.Licenses.Reassign(u, old.ID, successor.ID); err != nil {
				return err
			}
		}

		cleared := map[string]interface{}{"status": models.StatusReplaced}
		for _, col := range plan.columns() {
			cleared[col] = nil
		}
		if err := s.storage.Assets.UpdateColumns(u, old.ID, cleared); err != nil {
			return err
		}

		newID = successor.ID
		return nil
	})
	return newID, err
}
