package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"evalgo.org/assetd/models"
)

// RecoveryKeyRepository persists BitLocker recovery keys.
type RecoveryKeyRepository interface {
	ListByAsset(u *Unit, assetID uint) ([]models.RecoveryKey, error)
	DeleteByAsset(u *Unit, assetID uint) error
	CreateBatch(u *Unit, keys []models.RecoveryKey) error
	// Upsert inserts key, or overwrites the stored key of the same asset and drive.
	Upsert(u *Unit, key *models.RecoveryKey) error
}

// LicenseRepository persists license entries.
type LicenseRepository interface {
	ListByAsset(u *Unit, assetID uint) ([]models.LicenseEntry, error)
	DeleteByAsset(u *Unit, assetID uint) error
	CreateBatch(u *Unit, entries []models.LicenseEntry) error
	// Reassign moves every entry owned by from to to and returns how many moved.
	Reassign(u *Unit, from, to uint) (int64, error)
}

type gormRecoveryKeys struct{}

func (gormRecoveryKeys) ListByAsset(u *Unit, assetID uint) ([]models.RecoveryKey, error) {
	keys := []models.RecoveryKey{}
	err := u.db.Where("asset_id = ?", assetID).Order("drive").Find(&keys).Error
	return keys, translate(err, "recovery keys")
}

func (gormRecoveryKeys) DeleteByAsset(u *Unit, assetID uint) error {
	err := u.db.Where("asset_id = ?", assetID).Delete(&models.RecoveryKey{}).Error
	return translate(err, "recovery keys")
}

func (gormRecoveryKeys) CreateBatch(u *Unit, keys []models.RecoveryKey) error {
	if len(keys) == 0 {
		return nil
	}
	return translate(u.db.Create(&keys).Error, "recovery key")
}

func (gormRecoveryKeys) Upsert(u *Unit, key *models.RecoveryKey) error {
	var existing models.RecoveryKey
	err := u.db.Where("asset_id = ? AND drive = ?", key.AssetID, key.Drive).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return translate(u.db.Create(key).Error, "recovery key")
	case err != nil:
		return translate(err, "recovery key")
	}

	existing.Key = key.Key
	if err := u.db.Model(&existing).Update("recovery_key", key.Key).Error; err != nil {
		return translate(err, fmt.Sprintf("recovery key %d", existing.ID))
	}
	*key = existing
	return nil
}

type gormLicenses struct{}

func (gormLicenses) ListByAsset(u *Unit, assetID uint) ([]models.LicenseEntry, error) {
	entries := []models.LicenseEntry{}
	err := u.db.Where("asset_id = ?", assetID).Order("id").Find(&entries).Error
	return entries, translate(err, "license entries")
}

func (gormLicenses) DeleteByAsset(u *Unit, assetID uint) error {
	err := u.db.Where("asset_id = ?", assetID).Delete(&models.LicenseEntry{}).Error
	return translate(err, "license entries")
}

func (gormLicenses) CreateBatch(u *Unit, entries []models.LicenseEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return translate(u.db.Create(&entries).Error, "license entry")
}

func (gormLicenses) Reassign(u *Unit, from, to uint) (int64, error) {
	res := u.db.Model(&models.LicenseEntry{}).
		Where("asset_id = ?", from).
		Update("asset_id", to)
	return res.RowsAffected, translate(res.Error, "license entries")
}
