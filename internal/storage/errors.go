package storage

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
	"gorm.io/gorm"
)

// translate maps gorm errors onto errdefs kinds so callers can branch with
// errdefs.IsNotFound / errdefs.IsConflict. what names the affected record.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, errdefs.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, errdefs.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s is still referenced: %w", what, errdefs.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// expectRow turns a zero-row write into NotFound.
func expectRow(res *gorm.DB, what string) error {
	if res.Error != nil {
		return translate(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, errdefs.ErrNotFound)
	}
	return nil
}
