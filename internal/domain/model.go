package domain

import (
	"context"
	"time"
)

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the primary key.
func (m BaseModel) GetID() uint { return m.ID }

// PageRequest holds pagination, sorting, search, and filtering parameters
// parsed from a list query string.
type PageRequest struct {
	Page    int
	PerPage int
	// Sort is a comma-separated list of "field:asc|desc" pairs.
	Sort   string
	Search string
	// Filter maps a field (optionally suffixed with "__like") to one or more values.
	Filter map[string][]string
}

// PageResult is one page of a collection plus the metadata needed to render pagers.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// Repository is the data access contract shared by every collection.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, req PageRequest) (*PageResult[T], error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// Models lists every persisted model, parents before the tables that reference them.
func Models() []any {
	return []any{
		&Role{}, &Admin{}, &User{},
		&State{}, &City{},
		&Vendor{}, &Article{}, &Review{}, &Report{},
		&Campaign{}, &Student{}, &Voucher{},
	}
}
