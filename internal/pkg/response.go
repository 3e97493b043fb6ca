package pkg

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/backoffice/internal/domain"
)

// Response is the {code, message, data} envelope every JSON endpoint answers with.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse replaces data with a field -> message map.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// ListMeta is the pagination metadata attached to every collection listing.
type ListMeta struct {
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

func Success(c *gin.Context, data any) { respond(c, http.StatusOK, "success", data) }

func Created(c *gin.Context, data any) { respond(c, http.StatusCreated, "success", data) }

// Error maps err onto a status via its *domain.AppError code. Only the
// AppError message reaches the client; anything else reads "internal error".
// A blown request deadline answers 408.
func Error(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		respond(c, http.StatusRequestTimeout, "request timeout", nil)
		return
	}
	message := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	respond(c, domain.HTTPStatusCode(err), message, nil)
}

// List writes a page of a collection:
//
//	{"<collection>": [...], "meta": {"total_pages": n, "total": n, "page": n, "per_page": n}}
//
// The collection key always holds an array, never null.
func List[T any](c *gin.Context, collection string, result *domain.PageResult[T]) {
	var page domain.PageResult[T]
	if result != nil {
		page = *result
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		collection: page.Items,
		"meta": ListMeta{
			TotalPages: page.TotalPages,
			Total:      page.Total,
			Page:       page.Page,
			PerPage:    page.PerPage,
		},
	})
}

// ValidationError answers 400. Field names are the lowercased struct field
// names since the bound type is unknown here.
func ValidationError(c *gin.Context, err error) {
	rejectInput(c, err, nil)
}

// BindAndValidate binds the request into obj. On failure it has already
// written the 400 response, keyed by obj's json tags, and returns false:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	err := c.ShouldBind(obj)
	if err == nil {
		return true
	}
	rejectInput(c, err, obj)
	return false
}

func rejectInput(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// malformed body or wrong content type
		respond(c, http.StatusBadRequest, "bad request", nil)
		return
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fieldErrors(ve, jsonNames(obj)),
	})
}

func fieldErrors(ve validator.ValidationErrors, names map[string]string) map[string]string {
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		key, ok := names[fe.StructField()]
		if !ok {
			key = strings.ToLower(fe.Field())
		}
		out[key] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	param := fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + param + unit
	case "max":
		return "Must be at most " + param + unit
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "gtefield":
		return "Must not be before " + strings.ToLower(param)
	case "dive":
		return "Contains an invalid value"
	}
	if param == "" {
		return "Failed " + fe.Tag()
	}
	return "Failed " + fe.Tag() + "=" + param
}

// jsonNames maps the struct field names of obj to their json tag names.
func jsonNames(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	names := make(map[string]string, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[f.Name] = name
		}
	}
	return names
}
