package interfaces

import (
	"context"

	"loja_pix/internal/domain/entities"
)

// IUserRepository abstracts the user aggregate fields owned by the checkout:
// owned items and purchase history.
type IUserRepository interface {
	GetByID(ctx context.Context, id string) (entities.User, error)
	// Grant appends the item to the owned set and the record to the history in
	// one conditional update. granted is false when the item was already owned.
	Grant(ctx context.Context, userID string, record entities.PurchaseRecord) (granted bool, err error)
}
