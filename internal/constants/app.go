package constants

const (
	AppBoutiqueService = "boutique-service"

	OrderStatePendingPayment = "pending_payment"
	OrderStateValidated      = "validated"
)
