// Package review manages user ratings of vendors.
package review

import (
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// ReviewRequest represents the input for creating or moderating a review.
type ReviewRequest struct {
	UserID   uint   `json:"user_id" form:"user_id" binding:"required,gt=0"`
	VendorID uint   `json:"vendor_id" form:"vendor_id" binding:"required,gt=0"`
	Rating   int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" form:"comment" binding:"max=1000"`
	Status   string `json:"status" form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// Apply copies the request onto r.
func (req *ReviewRequest) Apply(r *domain.Review) error {
	r.UserID = req.UserID
	r.VendorID = req.VendorID
	r.Rating = req.Rating
	r.Comment = strings.TrimSpace(req.Comment)
	switch {
	case req.Status != "":
		r.Status = req.Status
	case r.Status == "":
		r.Status = "PENDING"
	}
	return nil
}

// Definition describes the reviews collection.
func Definition() resource.Definition[domain.Review] {
	return resource.Definition[domain.Review]{
		Collection: "reviews",
		Title:      "Reviews",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "vendor_id", Title: "Vendor", Filterable: true},
			{ID: "user_id", Title: "User", Filterable: true},
			{ID: "rating", Title: "Rating", Sortable: true, Filterable: true},
			{ID: "status", Title: "Status", Sortable: true, Filterable: true},
			{ID: "comment", Title: "Comment"},
		},
		SearchFields: []string{"comment"},
		DefaultSort:  "id:desc",
		NewPayload:   func() resource.Payload[domain.Review] { return &ReviewRequest{} },
	}
}

// NewModule wires the reviews collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Review] {
	return resource.New(db, Definition(), opts)
}
