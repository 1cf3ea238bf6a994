package models

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// Location is a physical or logical stock bucket (warehouse, line, WIP).
type Location struct {
	Id          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string `gorm:"size:64;uniqueIndex" json:"code"`
	Name        string `gorm:"size:255" json:"name"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewLocationInput struct {
	Code        string `json:"code" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

func CreateLocation(db *gorm.DB, ctx context.Context, input NewLocationInput) (*Location, error) {
	if err := validator.New().Struct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUniqueCode[Location](db, ctx, "location", input.Code, 0); err != nil {
		return nil, err
	}

	location := Location{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func GetLocation(db *gorm.DB, ctx context.Context, id int) (*Location, error) {
	return utils.FetchModel[Location](db, ctx, id)
}

func GetLocations(db *gorm.DB, ctx context.Context) ([]*Location, error) {
	return utils.FetchAllModels[Location](db, ctx)
}

func UpdateLocation(db *gorm.DB, ctx context.Context, id int, input NewLocationInput) (*Location, error) {
	if err := validator.New().Struct(input); err != nil {
		return nil, err
	}
	location, err := utils.FetchModel[Location](db, ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUniqueCode[Location](db, ctx, "location", input.Code, id); err != nil {
		return nil, err
	}

	location.Code = input.Code
	location.Name = input.Name
	location.Description = input.Description
	if err := db.WithContext(ctx).Save(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func DeleteLocation(db *gorm.DB, ctx context.Context, id int) error {
	location, err := utils.FetchModel[Location](db, ctx, id)
	if err != nil {
		return err
	}

	count, err := utils.ResourceCountWhere[StockLedgerEntry](db, ctx, "location_id = ?", id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &utils.IntegrityConflictError{Entity: "location", Name: location.Name, ReferencedBy: "stock ledger entries"}
	}

	count, err = utils.ResourceCountWhere[WorkOrder](db, ctx,
		"source_location_id = ? OR destination_location_id = ?", id, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &utils.IntegrityConflictError{Entity: "location", Name: location.Name, ReferencedBy: "work orders"}
	}

	return db.WithContext(ctx).Delete(location).Error
}
