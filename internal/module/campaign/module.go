// Package campaign manages marketing campaigns.
package campaign

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// CampaignRequest represents the input for creating or updating a campaign.
type CampaignRequest struct {
	Name     string    `json:"name" form:"name" binding:"required,min=2,max=150"`
	Channel  string    `json:"channel" form:"channel" binding:"required,oneof=email sms push social"`
	Status   string    `json:"status" form:"status" binding:"omitempty,oneof=DRAFT SCHEDULED RUNNING ENDED"`
	Budget   int64     `json:"budget" form:"budget" binding:"gte=0"`
	StartsAt time.Time `json:"starts_at" form:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" form:"ends_at" binding:"required,gtefield=StartsAt"`
}

// Apply copies the request onto c. A running campaign needs a budget.
func (r *CampaignRequest) Apply(c *domain.Campaign) error {
	if r.Status == "RUNNING" && r.Budget == 0 {
		return domain.NewAppError(domain.CodeValidation, "a running campaign needs a budget", nil)
	}
	c.Name = strings.TrimSpace(r.Name)
	c.Channel = r.Channel
	c.Budget = r.Budget
	c.StartsAt = r.StartsAt.UTC()
	c.EndsAt = r.EndsAt.UTC()
	switch {
	case r.Status != "":
		c.Status = r.Status
	case c.Status == "":
		c.Status = "DRAFT"
	}
	return nil
}

// Definition describes the campaigns collection.
func Definition() resource.Definition[domain.Campaign] {
	return resource.Definition[domain.Campaign]{
		Collection: "campaigns",
		Title:      "Campaigns",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true, Filterable: true},
			{ID: "channel", Title: "Channel", Sortable: true, Filterable: true},
			{ID: "status", Title: "Status", Sortable: true, Filterable: true},
			{ID: "budget", Title: "Budget", Sortable: true},
			{ID: "starts_at", Title: "Starts", Sortable: true},
			{ID: "ends_at", Title: "Ends", Sortable: true},
		},
		SearchFields: []string{"name"},
		DefaultSort:  "starts_at:desc",
		NewPayload:   func() resource.Payload[domain.Campaign] { return &CampaignRequest{} },
	}
}

// NewModule wires the campaigns collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Campaign] {
	return resource.New(db, Definition(), opts)
}
