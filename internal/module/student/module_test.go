package student

import (
	"testing"

	"github.com/simp-lee/backoffice/internal/domain"
)

func TestStudentRequest_Apply(t *testing.T) {
	var s domain.Student
	req := StudentRequest{FirstName: " Ada ", LastName: "Lovelace", Email: "ADA@example.com", Grade: " 10 "}
	if err := req.Apply(&s); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.FirstName != "Ada" || s.Email != "ada@example.com" || s.Grade != "10" || s.Status != "ACTIVE" {
		t.Errorf("unexpected student: %+v", s)
	}
}

func TestDefinition(t *testing.T) {
	d := Definition()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if d.DefaultSort != "last_name:asc" {
		t.Errorf("DefaultSort = %q", d.DefaultSort)
	}
}
