package transaction

// CreatePurchaseRequest is the payload for buying a listing
type CreatePurchaseRequest struct {
	ListingID     string `json:"listing_id" validate:"required,uuid"`
	PaymentMethod string `json:"payment_method" validate:"required,payment_method"`
}

// CreateTopUpRequest is the payload for topping up a wallet
type CreateTopUpRequest struct {
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=gateway manual"`
}

// RejectRequest is the admin payload for rejecting an order or top-up
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=2,max=500"`
}
