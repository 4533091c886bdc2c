package repository

import (
	"context"
	"errors"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/util"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Ensure creates the profile on first sight and returns the stored row.
func (r *ProfileRepository) Ensure(ctx context.Context, id, email string) (*model.Profile, error) {
	p := model.Profile{ID: id, Email: email}
	err := r.DB.WithContext(ctx).
		Where(model.Profile{ID: id}).
		Attrs(model.Profile{Email: email}).
		FirstOrCreate(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	return r.DB.WithContext(ctx).Model(p).Select("full_name", "exam_level", "updated_at").Updates(p).Error
}
