// Package vendors manages merchants selling through the platform.
package vendors

import (
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// VendorRequest represents the input for creating or updating a vendor.
type VendorRequest struct {
	Name         string `json:"name" form:"name" binding:"required,min=2,max=150"`
	ContactEmail string `json:"contact_email" form:"contact_email" binding:"required,email"`
	Phone        string `json:"phone" form:"phone" binding:"omitempty,max=32"`
	Status       string `json:"status" form:"status" binding:"omitempty,oneof=PENDING APPROVED SUSPENDED"`
	CityID       *uint  `json:"city_id" form:"city_id" binding:"omitempty,gt=0"`
	Address      string `json:"address" form:"address" binding:"max=255"`
}

// Apply copies the request onto v. New vendors start PENDING.
func (r *VendorRequest) Apply(v *domain.Vendor) error {
	if r.Address != "" && r.CityID == nil {
		return domain.NewAppError(domain.CodeValidation, "city_id is required when an address is given", nil)
	}
	v.Name = strings.TrimSpace(r.Name)
	v.ContactEmail = strings.ToLower(strings.TrimSpace(r.ContactEmail))
	v.Phone = strings.TrimSpace(r.Phone)
	v.CityID = r.CityID
	v.Address = strings.TrimSpace(r.Address)
	switch {
	case r.Status != "":
		v.Status = r.Status
	case v.Status == "":
		v.Status = "PENDING"
	}
	return nil
}

// Definition describes the vendors collection.
func Definition() resource.Definition[domain.Vendor] {
	return resource.Definition[domain.Vendor]{
		Collection: "vendors",
		Title:      "Vendors",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true, Filterable: true},
			{ID: "contact_email", Title: "Contact", Filterable: true},
			{ID: "status", Title: "Status", Sortable: true, Filterable: true},
			{ID: "city_id", Title: "City", Filterable: true},
			{ID: "created_at", Title: "Created", Sortable: true},
		},
		SearchFields: []string{"name", "contact_email", "address"},
		DefaultSort:  "id:desc",
		NewPayload:   func() resource.Payload[domain.Vendor] { return &VendorRequest{} },
	}
}

// NewModule wires the vendors collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Vendor] {
	return resource.New(db, Definition(), opts)
}
