package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// GormTransactionManager runs application units of work inside a single
// database transaction. The transaction handle travels in the context, so
// every repository call made from within fn joins the same transaction.
type GormTransactionManager struct {
	db *Database
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *Database) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Do executes fn within a database transaction.
// A nested call joins the transaction already carried by the context
// instead of opening a second one.
func (m *GormTransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// txFromContext returns the transaction carried by the context, or nil
func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx
}

// dbFromContext returns the ambient transaction when one is present,
// falling back to the given connection
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return fallback
}
