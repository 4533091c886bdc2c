package repository

import (
	"context"
	"prepaena_backend/internal/model"

	"gorm.io/gorm"
)

type VisitorRepository struct {
	DB *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{DB: db}
}

func (r *VisitorRepository) Create(ctx context.Context, v *model.Visitor) error {
	return r.DB.WithContext(ctx).Create(v).Error
}

// DailyStats counts visits and distinct visitors per day from sinceDay on.
func (r *VisitorRepository) DailyStats(ctx context.Context, sinceDay string) ([]model.DailyVisits, error) {
	var rows []model.DailyVisits
	err := r.DB.WithContext(ctx).Model(&model.Visitor{}).
		Select("visited_on AS day, COUNT(*) AS visits, COUNT(DISTINCT visitor_hash) AS visitors").
		Where("visited_on >= ?", sinceDay).
		Group("visited_on").
		Order("visited_on").
		Scan(&rows).Error
	return rows, err
}
