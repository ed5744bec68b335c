package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRecord is one entry of a user's purchase history.
type PurchaseRecord struct {
	ItemID      string          `json:"item_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	PurchasedAt time.Time       `json:"purchased_at"`
	PaymentID   string          `json:"payment_id,omitempty"`
}

// User is the slice of the user aggregate the checkout touches.
//
// OwnedItemIDs behaves as a set keyed by item id (DynamoDB string set); only
// the entitlement granter mutates it, together with PurchaseHistory.
type User struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Document        string           `json:"document,omitempty"`
	Role            string           `json:"role"`
	OwnedItemIDs    []string         `json:"owned_item_ids"`
	PurchaseHistory []PurchaseRecord `json:"purchase_history"`
}

func (u User) Owns(itemID string) bool {
	for _, id := range u.OwnedItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

func (u User) Payer() Payer {
	return Payer{Name: u.Name, Email: u.Email, Document: u.Document}
}
