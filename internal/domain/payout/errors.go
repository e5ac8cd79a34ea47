package payout

import "errors"

var (
	ErrPayoutNotFound = errors.New("payout not found")
	ErrInvalidState   = errors.New("payout is not in a valid state for this operation")
	ErrNotOwner       = errors.New("payout belongs to another seller")
)
