// Package report manages abuse and quality reports.
package report

import (
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// CreateReportRequest represents the input for filing a report.
type CreateReportRequest struct {
	SubjectType string `json:"subject_type" form:"subject_type" binding:"required,oneof=user vendor article review"`
	SubjectID   uint   `json:"subject_id" form:"subject_id" binding:"required,gt=0"`
	Reason      string `json:"reason" form:"reason" binding:"required,min=3,max=500"`
	ReporterID  *uint  `json:"reporter_id" form:"reporter_id" binding:"omitempty,gt=0"`
}

// Apply copies the request onto r. New reports are OPEN.
func (req *CreateReportRequest) Apply(r *domain.Report) error {
	r.SubjectType = req.SubjectType
	r.SubjectID = req.SubjectID
	r.Reason = strings.TrimSpace(req.Reason)
	r.ReporterID = req.ReporterID
	r.Status = "OPEN"
	return nil
}

// UpdateReportRequest changes the triage status of a report.
type UpdateReportRequest struct {
	Status string `json:"status" form:"status" binding:"required,oneof=OPEN RESOLVED DISMISSED"`
}

// Apply sets the new status. Closed reports cannot be reopened.
func (req *UpdateReportRequest) Apply(r *domain.Report) error {
	if r.Status != "OPEN" && req.Status == "OPEN" {
		return domain.NewAppError(domain.CodeValidation, "a closed report cannot be reopened", nil)
	}
	r.Status = req.Status
	return nil
}

// Definition describes the reports collection.
func Definition() resource.Definition[domain.Report] {
	return resource.Definition[domain.Report]{
		Collection: "reports",
		Title:      "Reports",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "subject_type", Title: "Subject", Sortable: true, Filterable: true},
			{ID: "subject_id", Title: "Subject ID", Filterable: true},
			{ID: "reason", Title: "Reason"},
			{ID: "status", Title: "Status", Sortable: true, Filterable: true},
			{ID: "created_at", Title: "Filed", Sortable: true},
		},
		SearchFields:     []string{"reason"},
		ExtraFilters:     []string{"reporter_id"},
		DefaultSort:      "created_at:desc",
		NewPayload:       func() resource.Payload[domain.Report] { return &CreateReportRequest{} },
		NewUpdatePayload: func() resource.Payload[domain.Report] { return &UpdateReportRequest{} },
	}
}

// NewModule wires the reports collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Report] {
	return resource.New(db, Definition(), opts)
}
