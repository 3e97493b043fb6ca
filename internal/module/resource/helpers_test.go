package resource

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/pkg"
)

type widget struct {
	domain.BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	Code    string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Status  string `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	Stock   int    `json:"stock"`
	GroupID uint   `json:"group_id"`
}

type widgetPayload struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Code    string `json:"code" binding:"required"`
	Status  string `json:"status" binding:"omitempty,oneof=ACTIVE ARCHIVED"`
	Stock   int    `json:"stock" binding:"gte=0"`
	GroupID uint   `json:"group_id"`
}

func (p *widgetPayload) Apply(w *widget) error {
	if p.Status == "ARCHIVED" && p.Stock > 0 {
		return domain.NewAppError(domain.CodeValidation, "archived widgets cannot hold stock", nil)
	}
	w.Name = p.Name
	w.Code = p.Code
	w.Status = p.Status
	if w.Status == "" {
		w.Status = "ACTIVE"
	}
	w.Stock = p.Stock
	w.GroupID = p.GroupID
	return nil
}

func widgetDefinition() Definition[widget] {
	return Definition[widget]{
		Collection: "widgets",
		Title:      "Widgets",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true, Filterable: true},
			{ID: "code", Title: "Code"},
			{ID: "status", Title: "Status", Sortable: true, Filterable: true},
			{ID: "stock", Title: "Stock", Sortable: true},
		},
		SearchFields: []string{"name", "code"},
		ExtraFilters: []string{"group_id"},
		DefaultSort:  "id:asc",
		NewPayload:   func() Payload[widget] { return &widgetPayload{} },
	}
}

// setupTestDB creates an in-memory SQLite database with the widget table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedWidgets inserts widgets in order so IDs follow the slice index.
func seedWidgets(t *testing.T, db *gorm.DB, items ...widget) {
	t.Helper()
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

// setupRouter registers a widget module on a test engine.
func setupRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(testTemplates())

	m := New(db, widgetDefinition(), Options{Limits: pkg.DefaultPageLimits()})
	m.RegisterRoutes(r.Group("/api/v1"), r.Group(""))
	return r
}
