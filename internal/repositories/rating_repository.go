package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	model "task-marketplace.com/task-marketplace/internal/models"
)

func (s *GormStore) CreateRating(ctx context.Context, rating *model.Rating) (*model.User, error) {
	var receiver model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Rating{}).
			Where("task_id = ? AND given_by = ?", rating.TaskID, rating.GivenBy).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}

		if err := tx.Create(rating).Error; err != nil {
			return translate(err)
		}

		var avg sql.NullFloat64
		err = tx.Model(&model.Rating{}).
			Where("given_to = ?", rating.GivenTo).
			Select("AVG(stars)").
			Scan(&avg).Error
		if err != nil {
			return err
		}

		err = tx.Model(&model.User{}).
			Where("id = ?", rating.GivenTo).
			UpdateColumn("rating", roundRating(avg.Float64)).Error
		if err != nil {
			return err
		}

		return translate(tx.First(&receiver, "id = ?", rating.GivenTo).Error)
	})
	if err != nil {
		return nil, err
	}
	return &receiver, nil
}

func (s *GormStore) FindRating(ctx context.Context, taskID, givenBy string) (*model.Rating, error) {
	var rating model.Rating
	err := s.db.WithContext(ctx).First(&rating, "task_id = ? AND given_by = ?", taskID, givenBy).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rating, nil
}
