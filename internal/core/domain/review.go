package domain

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

type Review struct {
	ID        string
	ItemID    string
	UserID    string
	Rating    int
	Comment   string
	Status    ReviewStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return Invalid("rating", "must be between 1 and 5")
	}
	if len(r.Comment) > 2000 {
		return Invalid("comment", "must be at most 2000 characters")
	}
	return nil
}
