package resource

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/pkg"
)

// gormRepository implements domain.Repository[T] using GORM.
type gormRepository[T any] struct {
	db           *gorm.DB
	sortFields   []string
	filterFields []string
	searchFields []string
}

// NewRepository creates a Repository for T backed by the given GORM database.
// Sorting and filtering are restricted to the fields the definition allows.
func NewRepository[T any](db *gorm.DB, def Definition[T]) domain.Repository[T] {
	return &gormRepository[T]{
		db:           db,
		sortFields:   def.SortFields(),
		filterFields: def.FilterFields(),
		searchFields: def.SearchFields,
	}
}

// Create inserts a new entity.
func (r *gormRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return MapError(err)
	}
	return nil
}

// GetByID retrieves an entity by its primary key.
func (r *gormRepository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	entity := new(T)
	if err := r.db.WithContext(ctx).First(entity, id).Error; err != nil {
		return nil, MapError(err)
	}
	return entity, nil
}

// List returns a paginated, sorted, searched and filtered page of entities.
func (r *gormRepository[T]) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(new(T)).
		Scopes(
			pkg.Filter(req, r.filterFields),
			pkg.Search(req, r.searchFields),
		)

	if err := base.Count(&total).Error; err != nil {
		return nil, MapError(err)
	}

	var items []T
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, r.sortFields),
	).Find(&items).Error; err != nil {
		return nil, MapError(err)
	}

	return pkg.NewPageResult(items, total, req), nil
}

// Update saves changes to an existing entity.
func (r *gormRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return MapError(err)
	}
	return nil
}

// Delete removes an entity by ID.
func (r *gormRepository[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of stored entities.
func (r *gormRepository[T]) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return 0, MapError(err)
	}
	return total, nil
}

// MapError converts GORM errors to domain errors.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. Not all GORM dialectors translate driver-level errors to
// gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
