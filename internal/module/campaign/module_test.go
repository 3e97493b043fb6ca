package campaign

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/pkg"
)

// bindOnly runs just the binding step of the create handler.
func bindOnly(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/campaigns", func(c *gin.Context) {
		var req CampaignRequest
		if !pkg.BindAndValidate(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCampaignRequest_DateOrder(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "ends after start",
			body:       `{"name":"Spring","channel":"email","starts_at":"2026-03-01T00:00:00Z","ends_at":"2026-03-31T00:00:00Z"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "same day",
			body:       `{"name":"Flash","channel":"sms","starts_at":"2026-03-01T00:00:00Z","ends_at":"2026-03-01T00:00:00Z"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "ends before start",
			body:       `{"name":"Broken","channel":"push","starts_at":"2026-03-31T00:00:00Z","ends_at":"2026-03-01T00:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown channel",
			body:       `{"name":"Fax","channel":"fax","starts_at":"2026-03-01T00:00:00Z","ends_at":"2026-03-31T00:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := bindOnly(t, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}

	w := bindOnly(t, tests[2].body)
	var resp pkg.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Errors["ends_at"] == "" {
		t.Errorf("expected ends_at error, got %v", resp.Errors)
	}
}

func TestCampaignRequest_Apply(t *testing.T) {
	var c domain.Campaign
	req := CampaignRequest{Name: "Spring", Channel: "email", Status: "RUNNING"}
	if err := req.Apply(&c); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for running campaign without budget, got %v", err)
	}

	req.Budget = 500
	if err := req.Apply(&c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.Status != "RUNNING" || c.Budget != 500 {
		t.Errorf("unexpected campaign: %+v", c)
	}

	var draft domain.Campaign
	if err := (&CampaignRequest{Name: "Later", Channel: "sms"}).Apply(&draft); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if draft.Status != "DRAFT" {
		t.Errorf("Status = %q, want DRAFT", draft.Status)
	}
}
