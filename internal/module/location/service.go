package location

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/module/resource"
	"github.com/simp-lee/backoffice/internal/pkg"
)

// stateService refuses to delete states that still own cities.
type stateService struct {
	resource.Service[domain.State]
	db *gorm.DB
}

func newStateService(db *gorm.DB, repo domain.Repository[domain.State]) resource.Service[domain.State] {
	return &stateService{Service: resource.NewService(repo), db: db}
}

func (s *stateService) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var cities int64
		if err := tx.Model(&domain.City{}).Where("state_id = ?", id).Count(&cities).Error; err != nil {
			return resource.MapError(err)
		}
		if cities > 0 {
			return domain.NewAppError(domain.CodeValidation, "state still has cities", nil)
		}

		result := tx.Delete(&domain.State{}, id)
		if result.Error != nil {
			return resource.MapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// cityService checks that the parent state exists before writing a city.
type cityService struct {
	resource.Service[domain.City]
	states domain.Repository[domain.State]
}

func newCityService(repo domain.Repository[domain.City], states domain.Repository[domain.State]) resource.Service[domain.City] {
	return &cityService{Service: resource.NewService(repo), states: states}
}

func (s *cityService) Create(ctx context.Context, city *domain.City) error {
	if err := s.checkState(ctx, city.StateID); err != nil {
		return err
	}
	return s.Service.Create(ctx, city)
}

func (s *cityService) Update(ctx context.Context, id uint, apply func(*domain.City) error) (*domain.City, error) {
	return s.Service.Update(ctx, id, func(c *domain.City) error {
		if err := apply(c); err != nil {
			return err
		}
		return s.checkState(ctx, c.StateID)
	})
}

func (s *cityService) checkState(ctx context.Context, stateID uint) error {
	if _, err := s.states.GetByID(ctx, stateID); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeValidation, "state_id does not exist", nil)
		}
		return err
	}
	return nil
}
