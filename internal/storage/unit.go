package storage

import (
	"context"

	"gorm.io/gorm"
)

// Unit is the database scope of one operation: either an open transaction
// or an autocommit session. It is created by Storage.Session or
// Storage.InTx and passed to every repository call of that operation.
type Unit struct {
	db   *gorm.DB
	inTx bool
}

// InTx reports whether the unit is a transaction.
func (u *Unit) InTx() bool {
	return u.inTx
}

// Session returns an autocommit unit bound to ctx. Each repository call
// made with it is its own statement.
func (s *Storage) Session(ctx context.Context) *Unit {
	return &Unit{db: s.db.WithContext(ctx)}
}

// InTx runs fn in a single transaction. The transaction commits when fn
// returns nil and rolls back on any error or panic.
func (s *Storage) InTx(ctx context.Context, fn func(u *Unit) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Unit{db: tx, inTx: true})
	})
}
