package role

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/module/resource"
	"github.com/simp-lee/backoffice/internal/pkg"
)

func TestRoleRequest_Apply(t *testing.T) {
	var r domain.Role
	req := RoleRequest{Name: " Editors ", Permissions: []string{"articles:write", "articles:read", "articles:write"}}
	if err := req.Apply(&r); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if r.Name != "Editors" {
		t.Errorf("Name = %q", r.Name)
	}
	if want := []string{"articles:read", "articles:write"}; !slices.Equal(r.Permissions, want) {
		t.Errorf("Permissions = %v, want %v", r.Permissions, want)
	}

	bad := RoleRequest{Name: "Root", Permissions: []string{"everything"}}
	if err := bad.Apply(&r); !domain.IsValidation(err) {
		t.Errorf("expected validation error for unknown permission, got %v", err)
	}
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Role{}, &domain.Admin{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewModule(db, resource.Options{Limits: pkg.DefaultPageLimits()}).RegisterRoutes(r.Group("/api/v1"), r.Group(""))
	return r, db
}

func TestDelete_DetachesAdmins(t *testing.T) {
	r, db := setupRouter(t)
	role := domain.Role{Name: "Editors", Permissions: []string{"articles:read"}}
	db.Create(&role)
	db.Create(&domain.Admin{Name: "Ops", Email: "ops@example.com", RoleID: &role.ID, Active: true})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/roles/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var admin domain.Admin
	if err := db.First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if admin.RoleID != nil {
		t.Errorf("RoleID = %v, want nil", *admin.RoleID)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/roles/1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestCreate_PermissionsRoundTrip(t *testing.T) {
	r, _ := setupRouter(t)

	body := `{"name":"Support","permissions":["users:read","reports:write"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/roles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/roles/1", nil))
	if !strings.Contains(w.Body.String(), `"permissions":["reports:write","users:read"]`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestPermissionsEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/roles/permissions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"vouchers:write"`) {
		t.Errorf("permissions missing from body: %s", w.Body.String())
	}
}
