// Package location manages states and the cities inside them.
package location

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// StateDefinition describes the states collection.
func StateDefinition() resource.Definition[domain.State] {
	return resource.Definition[domain.State]{
		Collection: "states",
		Title:      "States",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true, Filterable: true},
			{ID: "code", Title: "Code", Sortable: true, Filterable: true},
		},
		SearchFields: []string{"name", "code"},
		DefaultSort:  "name:asc",
		NewPayload:   func() resource.Payload[domain.State] { return &StateRequest{} },
	}
}

// CityDefinition describes the cities collection.
func CityDefinition() resource.Definition[domain.City] {
	return resource.Definition[domain.City]{
		Collection: "cities",
		Title:      "Cities",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true, Filterable: true},
			{ID: "state_id", Title: "State", Sortable: true, Filterable: true},
		},
		SearchFields: []string{"name"},
		DefaultSort:  "name:asc",
		NewPayload:   func() resource.Payload[domain.City] { return &CityRequest{} },
	}
}

// NewModules wires the states and cities collections. The states module also
// serves GET /states/:id/cities.
func NewModules(db *gorm.DB, opts resource.Options) (*resource.Module[domain.State], *resource.Module[domain.City]) {
	stateDef, cityDef := StateDefinition(), CityDefinition()
	stateRepo := resource.NewRepository(db, stateDef)
	cityRepo := resource.NewRepository(db, cityDef)

	cities := resource.NewWithService(cityDef, newCityService(cityRepo, stateRepo), opts)
	states := resource.NewWithService(stateDef, newStateService(db, stateRepo), opts).
		Extend(func(api, _ *gin.RouterGroup) {
			api.GET("/states/:id/cities", cities.Handler().ListWithFilter("state_id", "id"))
		})
	return states, cities
}
