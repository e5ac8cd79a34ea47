package listing

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNotPending      = errors.New("listing is not pending review")
	ErrNotApproved     = errors.New("listing is not approved")
	ErrReasonLength    = errors.New("rejection reason must be 2-500 characters")
	ErrNotOwner        = errors.New("listing belongs to another seller")
)
