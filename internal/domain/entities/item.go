package entities

import "github.com/shopspring/decimal"

// Item is a purchasable catalog entry (a "project"). It is read-only here:
// the catalog module owns it and the checkout only reads price and identity.
//
// Storage model (DynamoDB):
//   - PK: id
type Item struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Active bool            `json:"active"`
}
