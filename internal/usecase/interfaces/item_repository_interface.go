package interfaces

import (
	"context"

	"loja_pix/internal/domain/entities"
)

// IItemRepository is the read-only view of the catalog.
type IItemRepository interface {
	GetByID(ctx context.Context, id string) (entities.Item, error)
}
