package store

import (
	"context"

	"github.com/sells-group/pos-catalog/internal/model"
)

// Store defines the persistence interface for the POS catalog.
type Store interface {
	// UpsertPos inserts p when it has no ID (assigning one) or inserts/updates
	// the row with p.ID otherwise. A name held by a different POS yields
	// *model.DuplicateNameError and leaves the store unchanged.
	UpsertPos(ctx context.Context, p *model.Pos) (*model.Pos, error)
	// GetPos returns *model.PosNotFoundError when no POS has the id.
	GetPos(ctx context.Context, id string) (*model.Pos, error)
	// ListPos returns all POS ordered by name.
	ListPos(ctx context.Context) ([]model.Pos, error)
	// ClearPos deletes every POS and returns how many were removed.
	ClearPos(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
