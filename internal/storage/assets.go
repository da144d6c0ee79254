package storage

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evalgo.org/assetd/models"
)

// Column names a filterable asset column. Text columns count an empty
// string as missing; other columns only count NULL.
type Column struct {
	Name string
	Text bool
}

// AssetQuery selects a page of assets. The column lists come from the
// caller's declared field sets and are never built from user input.
type AssetQuery struct {
	// Search is matched case-insensitively against SearchColumns
	Search        string
	SearchColumns []string

	// Incomplete restricts results to assets missing any of these columns
	Incomplete []Column

	Offset int
	Limit  int
}

// AssetRepository persists Asset rows (without children).
type AssetRepository interface {
	Create(u *Unit, a *models.Asset) error
	CreateBatch(u *Unit, assets []models.Asset) error
	Get(u *Unit, id uint) (*models.Asset, error)
	// GetForUpdate loads the asset and holds a row lock until the unit ends.
	GetForUpdate(u *Unit, id uint) (*models.Asset, error)
	// Update writes every column of a, including nil ones.
	Update(u *Unit, a *models.Asset) error
	UpdateColumns(u *Unit, id uint, values map[string]interface{}) error
	Delete(u *Unit, id uint) error
	// CodeTaken reports whether another asset already owns code.
	CodeTaken(u *Unit, code string, exceptID uint) (bool, error)
	List(u *Unit, q AssetQuery) ([]models.Asset, int64, error)
	// DisplayNames returns the display name of each existing asset in ids.
	DisplayNames(u *Unit, ids []uint) (map[uint]string, error)
}

type gormAssets struct{}

func assetRef(id uint) string {
	return fmt.Sprintf("asset %d", id)
}

func (gormAssets) Create(u *Unit, a *models.Asset) error {
	return translate(u.db.Create(a).Error, "asset")
}

func (gormAssets) CreateBatch(u *Unit, assets []models.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	return translate(u.db.CreateInBatches(assets, 100).Error, "asset")
}

func (gormAssets) Get(u *Unit, id uint) (*models.Asset, error) {
	var a models.Asset
	if err := u.db.First(&a, id).Error; err != nil {
		return nil, translate(err, assetRef(id))
	}
	return &a, nil
}

func (gormAssets) GetForUpdate(u *Unit, id uint) (*models.Asset, error) {
	var a models.Asset
	err := u.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	if err != nil {
		return nil, translate(err, assetRef(id))
	}
	return &a, nil
}

func (gormAssets) Update(u *Unit, a *models.Asset) error {
	res := u.db.Model(&models.Asset{ID: a.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(a)
	return expectRow(res, assetRef(a.ID))
}

func (gormAssets) UpdateColumns(u *Unit, id uint, values map[string]interface{}) error {
	res := u.db.Model(&models.Asset{ID: id}).Updates(values)
	return expectRow(res, assetRef(id))
}

func (gormAssets) Delete(u *Unit, id uint) error {
	return expectRow(u.db.Delete(&models.Asset{}, id), assetRef(id))
}

func (gormAssets) CodeTaken(u *Unit, code string, exceptID uint) (bool, error) {
	var n int64
	err := u.db.Model(&models.Asset{}).
		Where("code = ? AND id <> ?", code, exceptID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "asset code")
	}
	return n > 0, nil
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (gormAssets) List(u *Unit, q AssetQuery) ([]models.Asset, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if q.Search != "" && len(q.SearchColumns) > 0 {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
			conds := make([]string, len(q.SearchColumns))
			args := make([]interface{}, len(q.SearchColumns))
			for i, col := range q.SearchColumns {
				conds[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
				args[i] = pattern
			}
			db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
		if len(q.Incomplete) > 0 {
			conds := make([]string, len(q.Incomplete))
			for i, col := range q.Incomplete {
				if col.Text {
					conds[i] = fmt.Sprintf("(%s IS NULL OR %s = '')", col.Name, col.Name)
				} else {
					conds[i] = fmt.Sprintf("%s IS NULL", col.Name)
				}
			}
			db = db.Where("(" + strings.Join(conds, " OR ") + ")")
		}
		return db
	}

	var total int64
	if err := u.db.Model(&models.Asset{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "assets")
	}

	var assets []models.Asset
	tx := u.db.Model(&models.Asset{}).Scopes(filter).Order("id DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}
	if err := tx.Find(&assets).Error; err != nil {
		return nil, 0, translate(err, "assets")
	}
	return assets, total, nil
}

func (gormAssets) DisplayNames(u *Unit, ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var assets []models.Asset
	err := u.db.Select("id", "code", "name", "hostname").
		Where("id IN ?", ids).
		Find(&assets).Error
	if err != nil {
		return nil, translate(err, "assets")
	}
	for i := range assets {
		names[assets[i].ID] = assets[i].DisplayName()
	}
	return names, nil
}
