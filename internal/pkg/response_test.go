package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/backoffice/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/api/v1/vendors", strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestEnvelopes(t *testing.T) {
	tests := []struct {
		name        string
		write       func(*gin.Context)
		wantStatus  int
		wantMessage string
		wantData    bool
	}{
		{"success", func(c *gin.Context) { Success(c, gin.H{"id": 3}) }, http.StatusOK, "success", true},
		{"success without data", func(c *gin.Context) { Success(c, nil) }, http.StatusOK, "success", false},
		{"created", func(c *gin.Context) { Created(c, gin.H{"id": 4}) }, http.StatusCreated, "success", true},
		{
			name:        "not found",
			write:       func(c *gin.Context) { Error(c, domain.NewAppError(domain.CodeNotFound, "vendor not found", nil)) },
			wantStatus:  http.StatusNotFound,
			wantMessage: "vendor not found",
		},
		{
			name:        "conflict",
			write:       func(c *gin.Context) { Error(c, domain.NewAppError(domain.CodeAlreadyExists, "code taken", nil)) },
			wantStatus:  http.StatusConflict,
			wantMessage: "code taken",
		},
		{
			name:        "validation",
			write:       func(c *gin.Context) { Error(c, domain.NewAppError(domain.CodeValidation, "bad sort column", nil)) },
			wantStatus:  http.StatusBadRequest,
			wantMessage: "bad sort column",
		},
		{
			name: "wrapped app error",
			write: func(c *gin.Context) {
				Error(c, fmt.Errorf("update: %w", domain.NewAppError(domain.CodeUnauthorized, "token expired", nil)))
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "token expired",
		},
		{
			name:        "plain error hides detail",
			write:       func(c *gin.Context) { Error(c, errors.New("dial tcp 10.0.0.3:5432: refused")) },
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal error",
		},
		{
			name:        "deadline",
			write:       func(c *gin.Context) { Error(c, fmt.Errorf("count: %w", context.DeadlineExceeded)) },
			wantStatus:  http.StatusRequestTimeout,
			wantMessage: "request timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodGet, "")
			tt.write(c)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decodeEnvelope(t, w)
			if resp.Code != tt.wantStatus || resp.Message != tt.wantMessage {
				t.Errorf("envelope = {%d %q}, want {%d %q}", resp.Code, resp.Message, tt.wantStatus, tt.wantMessage)
			}
			if (resp.Data != nil) != tt.wantData {
				t.Errorf("data = %v, want present=%v", resp.Data, tt.wantData)
			}
		})
	}
}

func TestList(t *testing.T) {
	type vendor struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}

	t.Run("page", func(t *testing.T) {
		c, w := testContext(http.MethodGet, "")
		List(c, "vendors", &domain.PageResult[vendor]{
			Items:      []vendor{{1, "Acme"}, {2, "Globex"}},
			Total:      27,
			Page:       2,
			PerPage:    10,
			TotalPages: 3,
		})

		var resp struct {
			Vendors []vendor `json:"vendors"`
			Meta    ListMeta `json:"meta"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if w.Code != http.StatusOK || len(resp.Vendors) != 2 || resp.Vendors[1].Name != "Globex" {
			t.Errorf("status %d vendors %+v", w.Code, resp.Vendors)
		}
		want := ListMeta{TotalPages: 3, Total: 27, Page: 2, PerPage: 10}
		if resp.Meta != want {
			t.Errorf("meta = %+v, want %+v", resp.Meta, want)
		}
	})

	for name, result := range map[string]*domain.PageResult[vendor]{
		"empty items": {Page: 4, PerPage: 10, Total: 30, TotalPages: 3},
		"nil result":  nil,
	} {
		t.Run(name, func(t *testing.T) {
			c, w := testContext(http.MethodGet, "")
			List(c, "vendors", result)
			if body := w.Body.String(); !strings.Contains(body, `"vendors":[]`) {
				t.Errorf("want empty array under collection key, got %s", body)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Name  string `json:"name" validate:"required"`
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(payload{Email: "nope"})

	c, w := testContext(http.MethodPost, "")
	ValidationError(c, err)

	var resp ValidationErrorResponse
	if jsonErr := json.Unmarshal(w.Body.Bytes(), &resp); jsonErr != nil {
		t.Fatalf("decode: %v", jsonErr)
	}
	if w.Code != http.StatusBadRequest || resp.Message != "validation error" {
		t.Fatalf("status %d message %q", w.Code, resp.Message)
	}
	want := map[string]string{
		"name":  "This field is required",
		"email": "Must be a valid email address",
	}
	if len(resp.Errors) != len(want) {
		t.Fatalf("errors = %v, want %v", resp.Errors, want)
	}
	for field, msg := range want {
		if resp.Errors[field] != msg {
			t.Errorf("errors[%q] = %q, want %q", field, resp.Errors[field], msg)
		}
	}

	c, w = testContext(http.MethodPost, "")
	ValidationError(c, errors.New("unexpected EOF"))
	if resp := decodeEnvelope(t, w); w.Code != http.StatusBadRequest || resp.Message != "bad request" {
		t.Errorf("non-validation error: status %d message %q", w.Code, resp.Message)
	}
}

type campaignInput struct {
	Name    string   `json:"name" binding:"required,min=3"`
	Contact string   `json:"contact_email" binding:"required,email"`
	Status  string   `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE ENDED"`
	Budget  int      `json:"budget" binding:"omitempty,min=1,max=1000"`
	Tags    []string `json:"tags" binding:"omitempty,max=2,dive,min=2"`
	Note    string   `json:"-" binding:"omitempty,max=4"`
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErrors map[string]string
	}{
		{
			name:       "missing fields",
			body:       `{}`,
			wantErrors: map[string]string{"name": "This field is required", "contact_email": "This field is required"},
		},
		{
			name:       "short name and bad email",
			body:       `{"name":"Al","contact_email":"not-an-email"}`,
			wantErrors: map[string]string{"name": "Must be at least 3 characters", "contact_email": "Must be a valid email address"},
		},
		{
			name:       "unknown status",
			body:       `{"name":"Spring","contact_email":"ops@example.com","status":"PAUSED"}`,
			wantErrors: map[string]string{"status": "Must be one of: DRAFT, ACTIVE, ENDED"},
		},
		{
			name:       "budget out of range",
			body:       `{"name":"Spring","contact_email":"ops@example.com","budget":5000}`,
			wantErrors: map[string]string{"budget": "Must be at most 1000"},
		},
		{
			name:       "too many tags",
			body:       `{"name":"Spring","contact_email":"ops@example.com","tags":["aa","bb","cc"]}`,
			wantErrors: map[string]string{"tags": "Must be at most 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodPost, tt.body)

			var input campaignInput
			if BindAndValidate(c, &input) {
				t.Fatal("BindAndValidate returned true")
			}
			var resp ValidationErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if w.Code != http.StatusBadRequest || resp.Code != http.StatusBadRequest || resp.Message != "validation error" {
				t.Errorf("status %d envelope {%d %q}", w.Code, resp.Code, resp.Message)
			}
			if len(resp.Errors) != len(tt.wantErrors) {
				t.Errorf("errors = %v, want %v", resp.Errors, tt.wantErrors)
			}
			for field, want := range tt.wantErrors {
				if got := resp.Errors[field]; got != want {
					t.Errorf("errors[%q] = %q, want %q", field, got, want)
				}
			}
		})
	}
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	c, w := testContext(http.MethodPost, `{"name":`)

	var input campaignInput
	if BindAndValidate(c, &input) {
		t.Fatal("BindAndValidate returned true")
	}
	if resp := decodeEnvelope(t, w); w.Code != http.StatusBadRequest || resp.Message != "bad request" {
		t.Errorf("status %d message %q", w.Code, resp.Message)
	}
}

func TestBindAndValidate_Accepts(t *testing.T) {
	c, w := testContext(http.MethodPost, `{"name":"Spring sale","contact_email":"ops@example.com","status":"ACTIVE","budget":500}`)

	var input campaignInput
	if !BindAndValidate(c, &input) {
		t.Fatalf("BindAndValidate returned false: %s", w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("body written on success: %q", w.Body.String())
	}
	if input.Name != "Spring sale" || input.Contact != "ops@example.com" || input.Budget != 500 {
		t.Errorf("input = %+v", input)
	}
}

func TestJSONNames(t *testing.T) {
	names := jsonNames(&campaignInput{})
	if names["Contact"] != "contact_email" || names["Name"] != "name" {
		t.Errorf("names = %v", names)
	}
	if _, ok := names["Note"]; ok {
		t.Error(`json:"-" field should be skipped`)
	}
	if jsonNames(nil) != nil || jsonNames("x") != nil {
		t.Error("non-struct input should yield nil")
	}
}
