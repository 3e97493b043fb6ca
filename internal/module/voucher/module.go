// Package voucher manages redeemable discount codes.
package voucher

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

const codeLength = 12

// VoucherRequest represents the input for creating or updating a voucher.
type VoucherRequest struct {
	Code      string     `json:"code" form:"code" binding:"omitempty,alphanum,min=4,max=64"`
	Discount  int        `json:"discount" form:"discount" binding:"required,gt=0"`
	Kind      string     `json:"kind" form:"kind" binding:"omitempty,oneof=PERCENT FIXED"`
	ExpiresAt *time.Time `json:"expires_at" form:"expires_at"`
	Redeemed  bool       `json:"redeemed" form:"redeemed"`
}

// NewCode returns a random upper-case voucher code.
func NewCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:codeLength]
}

// Apply copies the request onto v. A voucher without a code gets a generated
// one; an update without a code keeps the existing code.
func (r *VoucherRequest) Apply(v *domain.Voucher) error {
	kind := r.Kind
	if kind == "" {
		kind = "PERCENT"
	}
	if kind == "PERCENT" && r.Discount > 100 {
		return domain.NewAppError(domain.CodeValidation, "a percent discount cannot exceed 100", nil)
	}

	switch {
	case r.Code != "":
		v.Code = strings.ToUpper(r.Code)
	case v.Code == "":
		v.Code = NewCode()
	}
	v.Discount = r.Discount
	v.Kind = kind
	if r.ExpiresAt != nil {
		exp := r.ExpiresAt.UTC()
		v.ExpiresAt = &exp
	} else {
		v.ExpiresAt = nil
	}
	v.Redeemed = r.Redeemed
	return nil
}

// Definition describes the vouchers collection.
func Definition() resource.Definition[domain.Voucher] {
	return resource.Definition[domain.Voucher]{
		Collection: "vouchers",
		Title:      "Vouchers",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "code", Title: "Code", Sortable: true, Filterable: true},
			{ID: "discount", Title: "Discount", Sortable: true},
			{ID: "kind", Title: "Kind", Filterable: true},
			{ID: "expires_at", Title: "Expires", Sortable: true},
			{ID: "redeemed", Title: "Redeemed"},
		},
		SearchFields: []string{"code"},
		DefaultSort:  "id:desc",
		NewPayload:   func() resource.Payload[domain.Voucher] { return &VoucherRequest{} },
	}
}

// NewModule wires the vouchers collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Voucher] {
	return resource.New(db, Definition(), opts)
}
