package resource

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/pkg"
)

// Handler handles REST API requests for one collection.
type Handler[T any] struct {
	def    Definition[T]
	svc    Service[T]
	limits pkg.PageLimits
}

// NewHandler creates a Handler for def backed by svc.
func NewHandler[T any](def Definition[T], svc Service[T], limits pkg.PageLimits) *Handler[T] {
	return &Handler[T]{def: def, svc: svc, limits: limits}
}

// Create handles POST /api/v1/<collection>.
func (h *Handler[T]) Create(c *gin.Context) {
	payload := h.def.NewPayload()
	if !pkg.BindAndValidate(c, payload) {
		return
	}

	entity := new(T)
	if err := payload.Apply(entity); err != nil {
		pkg.Error(c, err)
		return
	}
	if err := h.svc.Create(c.Request.Context(), entity); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, entity)
}

// Get handles GET /api/v1/<collection>/:id.
func (h *Handler[T]) Get(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	entity, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, entity)
}

// List handles GET /api/v1/<collection>.
func (h *Handler[T]) List(c *gin.Context) {
	h.list(c, h.PageRequest(c))
}

// ListWithFilter lists the collection with one filter forced from a path
// parameter, e.g. GET /api/v1/states/:id/cities forces state_id.
func (h *Handler[T]) ListWithFilter(field, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseUintParam(c, param)
		if err != nil {
			pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
			return
		}
		req := h.PageRequest(c)
		req.Filter[field] = []string{strconv.FormatUint(uint64(id), 10)}
		h.list(c, req)
	}
}

// PageRequest parses the list query, applying the collection's default sort
// when the request has none.
func (h *Handler[T]) PageRequest(c *gin.Context) domain.PageRequest {
	req := pkg.ParsePageRequestWithLimits(c, h.limits)
	if c.Query("sort") == "" && h.def.DefaultSort != "" {
		req.Sort = h.def.DefaultSort
	}
	return req
}

func (h *Handler[T]) list(c *gin.Context, req domain.PageRequest) {
	result, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, h.def.Collection, result)
}

// Update handles PUT /api/v1/<collection>/:id.
func (h *Handler[T]) Update(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	payload := h.def.updatePayload()
	if !pkg.BindAndValidate(c, payload) {
		return
	}

	entity, err := h.svc.Update(c.Request.Context(), id, payload.Apply)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, entity)
}

// Delete handles DELETE /api/v1/<collection>/:id.
func (h *Handler[T]) Delete(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// ParseID extracts and validates the "id" URL parameter.
func ParseID(c *gin.Context) (uint, error) {
	return parseUintParam(c, "id")
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	if id > uint64(^uint(0)) {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return uint(id), nil
}
