package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAdminJSON_PasswordHashHidden(t *testing.T) {
	admin := Admin{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$examplehash",
	}

	raw, err := json.Marshal(admin)
	if err != nil {
		t.Fatalf("marshal admin: %v", err)
	}

	body := string(raw)
	if strings.Contains(body, "password_hash") {
		t.Fatalf("json should not contain password_hash, got: %s", body)
	}
	if strings.Contains(body, "$2a$10$examplehash") {
		t.Fatalf("json should not contain PasswordHash value, got: %s", body)
	}
	if !strings.Contains(body, "\"name\":\"Alice\"") {
		t.Fatalf("json should include name field, got: %s", body)
	}
	if !strings.Contains(body, "\"email\":\"alice@example.com\"") {
		t.Fatalf("json should include email field, got: %s", body)
	}
}

func TestAdminJSON_UnmarshalIgnoresPasswordHashField(t *testing.T) {
	input := `{"name":"Alice","email":"alice@example.com","password_hash":"attacker-controlled"}`

	var admin Admin
	if err := json.Unmarshal([]byte(input), &admin); err != nil {
		t.Fatalf("unmarshal admin: %v", err)
	}

	if admin.Name != "Alice" {
		t.Fatalf("Name = %q, want %q", admin.Name, "Alice")
	}
	if admin.Email != "alice@example.com" {
		t.Fatalf("Email = %q, want %q", admin.Email, "alice@example.com")
	}
	if admin.PasswordHash != "" {
		t.Fatalf("PasswordHash = %q, want empty", admin.PasswordHash)
	}
}

func TestRoleJSON_PermissionsArray(t *testing.T) {
	role := Role{Name: "editor", Permissions: []string{"articles:read", "articles:write"}}

	raw, err := json.Marshal(role)
	if err != nil {
		t.Fatalf("marshal role: %v", err)
	}
	if !strings.Contains(string(raw), `"permissions":["articles:read","articles:write"]`) {
		t.Fatalf("permissions should serialize as an array, got: %s", raw)
	}
}
