package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	productResponse "github.com/leclercq/boutique/product/pkg/response"
)

// Line is one product's quantity entry inside a session cart. Quantity may be
// fractional (goods sold by weight).
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Total is derived from the lines and the live catalog prices. It is cached
// alongside the lines for display but recomputed on every change, never
// trusted as a source of truth.
type Total struct {
	Quantity decimal.Decimal `json:"quantity"`
	ExclTax  decimal.Decimal `json:"excl_tax"`
	InclTax  decimal.Decimal `json:"incl_tax"`
	Tax      decimal.Decimal `json:"tax"`
}

// Cart is the session-stored document: lines keyed by product id plus the
// cached total.
type Cart struct {
	Lines map[string]Line `json:"lines"`
	Total Total           `json:"total"`
}

func EmptyCart() Cart {
	return Cart{Lines: map[string]Line{}, Total: Total{}}
}

// LineWithProduct is a cart line joined against the catalog, with its share
// of the totals split into tax and excl-tax parts.
type LineWithProduct struct {
	Product  productResponse.Product `json:"product"`
	Quantity decimal.Decimal         `json:"quantity"`
	ExclTax  decimal.Decimal         `json:"excl_tax"`
	InclTax  decimal.Decimal         `json:"incl_tax"`
	Tax      decimal.Decimal         `json:"tax"`
}

type CartWithProducts struct {
	Lines map[string]LineWithProduct `json:"lines"`
	Total Total                      `json:"total"`
}
