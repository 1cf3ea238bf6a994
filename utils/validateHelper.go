package utils

import (
	"context"

	"gorm.io/gorm"
)

// check if id exists, return RecordNotFound error
func ValidateResourceId[T any](db *gorm.DB, ctx context.Context, id interface{}) error {

	count, err := ResourceCountWhere[T](db, ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check if ALL ids exist, return RecordNotFound error
func ValidateResourcesId[M any, ID comparable](db *gorm.DB, ctx context.Context, ids []ID) error {
	unqIds := UniqueSlice(ids)
	if len(unqIds) == 0 {
		return nil
	}

	count, err := ResourceCountWhere[M](db, ctx, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

// check uniqueness of a human-assigned code (exceptId = 0 for create)
func ValidateUniqueCode[T any](db *gorm.DB, ctx context.Context, entity string, code string, exceptId int) error {
	var count int64
	var err error
	if exceptId == 0 {
		count, err = ResourceCountWhere[T](db, ctx, "code = ?", code)
	} else {
		count, err = ResourceCountWhere[T](db, ctx, "code = ? AND NOT id = ?", code, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return &DuplicateCodeError{Entity: entity, Code: code}
	}
	return nil
}

// count records matching a condition
func ResourceCountWhere[T any](db *gorm.DB, ctx context.Context, condition string, values ...interface{}) (int64, error) {
	var model T
	var count int64
	err := db.WithContext(ctx).Model(&model).Where(condition, values...).Count(&count).Error
	return count, err
}

// UniqueSlice removes duplicates while preserving first-seen order.
func UniqueSlice[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
