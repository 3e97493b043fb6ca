package resource

import (
	"context"

	"github.com/simp-lee/backoffice/internal/domain"
)

// Service is the business interface the handlers depend on. Feature modules
// with extra rules wrap or replace the default implementation.
type Service[T any] interface {
	Create(ctx context.Context, entity *T) error
	Get(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error)
	// Update loads the entity, lets apply mutate it and persists the result.
	Update(ctx context.Context, id uint, apply func(*T) error) (*T, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type service[T any] struct {
	repo domain.Repository[T]
}

// NewService creates the default Service backed by repo.
func NewService[T any](repo domain.Repository[T]) Service[T] {
	return &service[T]{repo: repo}
}

func (s *service[T]) Create(ctx context.Context, entity *T) error {
	return s.repo.Create(ctx, entity)
}

func (s *service[T]) Get(ctx context.Context, id uint) (*T, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service[T]) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error) {
	return s.repo.List(ctx, req)
}

func (s *service[T]) Update(ctx context.Context, id uint, apply func(*T) error) (*T, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(entity); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *service[T]) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service[T]) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
