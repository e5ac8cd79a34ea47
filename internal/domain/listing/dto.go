package listing

// CreateListingRequest is the payload for submitting a listing
type CreateListingRequest struct {
	RankLabel   string `json:"rank_label" validate:"required,min=2,max=50"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,min=10,max=2000"`
}

// RejectListingRequest is the admin payload for rejecting a listing
type RejectListingRequest struct {
	Reason string `json:"reason" validate:"required,min=2,max=500"`
}
