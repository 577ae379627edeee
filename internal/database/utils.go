package database

import "context"

// CountEntities counts rows of type T.
func CountEntities[T any](ctx context.Context) (int64, error) {
	db, err := GetDB()
	if err != nil {
		return 0, err
	}
	var zero T
	var count int64
	if err := db.WithContext(ctx).Model(&zero).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateEntities inserts entities in batches of batchSize.
func CreateEntities[T any](ctx context.Context, entities []T, batchSize int) error {
	if len(entities) == 0 {
		return nil
	}
	db, err := GetDB()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).CreateInBatches(&entities, batchSize).Error
}

// LatestEntity returns the row of type T with the greatest orderColumn.
func LatestEntity[T any](ctx context.Context, orderColumn string) (*T, error) {
	db, err := GetDB()
	if err != nil {
		return nil, err
	}
	var out T
	if err := db.WithContext(ctx).Order(orderColumn + " DESC").First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
