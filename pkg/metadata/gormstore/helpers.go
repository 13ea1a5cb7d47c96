package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/filebank/pkg/metadata"
)

// Generic helpers shared by the directory and file tables. They operate on
// the raw *gorm.DB and map GORM errors to the metadata sentinels.

// getByField retrieves a single record of type T matching field=value.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, metadata.ErrNotFound)
	}
	return &result, nil
}

// findChild retrieves the record of type T named name under the given
// parent column value.
func findChild[T any](db *gorm.DB, ctx context.Context, parentField, parentID, name string) (*T, error) {
	var result T
	err := db.WithContext(ctx).
		Where(parentField+" = ? AND name = ?", parentID, name).
		First(&result).Error
	if err != nil {
		return nil, convertNotFoundError(err, metadata.ErrNotFound)
	}
	return &result, nil
}

// listChildren returns every record of type T under the parent in creation
// order. Returns an empty slice (not nil) when there are none.
func listChildren[T any](db *gorm.DB, ctx context.Context, parentField, parentID string) ([]*T, error) {
	results := []*T{}
	err := db.WithContext(ctx).
		Where(parentField+" = ?", parentID).
		Order("seq ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// createWithID generates a UUID for the entity if it has none, then inserts
// it. Unique constraint violations are converted to metadata.ErrDuplicate.
func createWithID[T any](db *gorm.DB, ctx context.Context, entity *T, idSetter func(*T, string), currentID string) error {
	if currentID == "" {
		idSetter(entity, uuid.New().String())
	}
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return metadata.ErrDuplicate
		}
		return err
	}
	return nil
}

// updateAll writes every column of entity except the creation time.
// Returns metadata.ErrNotFound if no row has the given ID.
func updateAll[T any](db *gorm.DB, ctx context.Context, entity *T, id string) error {
	var zero T
	result := db.WithContext(ctx).Model(&zero).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(entity)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return metadata.ErrDuplicate
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return metadata.ErrNotFound
	}
	return nil
}

// deleteByField deletes records of type T matching field=value.
// Returns metadata.ErrNotFound if no rows were affected.
func deleteByField[T any](db *gorm.DB, ctx context.Context, field string, value any) error {
	var zero T
	result := db.WithContext(ctx).Where(field+" = ?", value).Delete(&zero)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return metadata.ErrNotFound
	}
	return nil
}

// rewriteRef replaces ref_id oldRef with newRef on every record of type T.
func rewriteRef[T any](db *gorm.DB, ctx context.Context, oldRef, newRef string) (int, error) {
	var zero T
	result := db.WithContext(ctx).Model(&zero).
		Where("ref_id = ?", oldRef).
		Update("ref_id", newRef)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
