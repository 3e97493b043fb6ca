package admin

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/backoffice/internal/domain"
)

func TestCreateAdminRequest_Apply(t *testing.T) {
	role := uint(3)
	req := CreateAdminRequest{Name: " Ops ", Email: "Ops@Example.com", Password: "s3cret-pass", RoleID: &role}

	var a domain.Admin
	if err := req.Apply(&a); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if a.Name != "Ops" || a.Email != "ops@example.com" {
		t.Errorf("fields not normalized: %+v", a)
	}
	if !a.Active {
		t.Error("new admin should be active by default")
	}
	if a.RoleID == nil || *a.RoleID != 3 {
		t.Errorf("RoleID = %v, want 3", a.RoleID)
	}
	if a.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}
}

func TestUpdateAdminRequest_Apply(t *testing.T) {
	original, err := HashPassword("original-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	inactive := false

	tests := []struct {
		name        string
		req         UpdateAdminRequest
		wantActive  bool
		wantSamePwd bool
	}{
		{"empty password keeps hash", UpdateAdminRequest{Name: "Ops", Email: "ops@example.com"}, true, true},
		{"new password replaces hash", UpdateAdminRequest{Name: "Ops", Email: "ops@example.com", Password: "another-pass"}, true, false},
		{"deactivate", UpdateAdminRequest{Name: "Ops", Email: "ops@example.com", Active: &inactive}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := domain.Admin{PasswordHash: original, Active: true}
			if err := tt.req.Apply(&a); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if a.Active != tt.wantActive {
				t.Errorf("Active = %v, want %v", a.Active, tt.wantActive)
			}
			if (a.PasswordHash == original) != tt.wantSamePwd {
				t.Errorf("hash unchanged = %v, want %v", a.PasswordHash == original, tt.wantSamePwd)
			}
		})
	}
}
