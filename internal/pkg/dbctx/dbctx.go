package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction. Repos
// fall back to their own handle when Tx is nil, so callers opt into a shared
// transaction simply by passing one.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// WithTx returns a copy of dbc bound to the given transaction.
func (d Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: d.Ctx, Tx: tx}
}
