package request

// AddToCart is the add/increment request built from the route's path and
// form values. Quantity holds a decimal string so fractional quantities pass
// through untouched.
type AddToCart struct {
	ProductID string `validate:"required,uuid"     json:"product_id"`
	Quantity  string `validate:"required,quantity" json:"quantity"`
}

type RemoveFromCart struct {
	ProductID string `validate:"required,uuid" json:"product_id"`
}
