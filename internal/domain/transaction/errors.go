package transaction

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrListingNotAvailable = errors.New("listing is not available for purchase")
	ErrSelfPurchase        = errors.New("cannot purchase own listing")
	ErrInvalidState        = errors.New("transaction is not in a valid state for this operation")
	ErrAmountOutOfRange    = errors.New("top-up amount out of allowed range")
	ErrGatewayFailure      = errors.New("payment gateway request failed")
	ErrNotBuyer            = errors.New("transaction belongs to another user")
)
