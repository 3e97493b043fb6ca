package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

type adminStore struct {
	db *gorm.DB
}

// NewAdminStore creates an AdminStore backed by GORM.
func NewAdminStore(db *gorm.DB) AdminStore {
	return &adminStore{db: db}
}

func (s *adminStore) GetByID(ctx context.Context, id uint) (*domain.Admin, error) {
	var admin domain.Admin
	if err := s.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, resource.MapError(err)
	}
	return &admin, nil
}

func (s *adminStore) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var admin domain.Admin
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, resource.MapError(err)
	}
	return &admin, nil
}

func (s *adminStore) Create(ctx context.Context, admin *domain.Admin) error {
	return resource.MapError(s.db.WithContext(ctx).Create(admin).Error)
}
