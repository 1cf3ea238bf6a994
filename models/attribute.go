package models

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// Attribute is a variant dimension such as size or color.
type Attribute struct {
	Id     int              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string           `gorm:"size:255;uniqueIndex" json:"name"`
	Values []AttributeValue `gorm:"foreignKey:AttributeId" json:"values"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttributeValue is one concrete value of an attribute ("XL", "Red").
// Its id is the unit of variant key composition.
type AttributeValue struct {
	Id          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	AttributeId int    `gorm:"index" json:"attribute_id"`
	Value       string `gorm:"size:255" json:"value"`

	CreatedAt time.Time `json:"created_at"`
}

type NewAttributeInput struct {
	Name   string   `json:"name" validate:"required,max=255"`
	Values []string `json:"values" validate:"required,min=1,dive,required,max=255"`
}

func CreateAttribute(db *gorm.DB, ctx context.Context, input NewAttributeInput) (*Attribute, error) {
	if err := validator.New().Struct(input); err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Attribute](db, ctx, "name = ?", input.Name)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &utils.DuplicateCodeError{Entity: "attribute", Code: input.Name}
	}

	attribute := Attribute{Name: input.Name}
	for _, v := range utils.UniqueSlice(input.Values) {
		attribute.Values = append(attribute.Values, AttributeValue{Value: v})
	}
	if err := db.WithContext(ctx).Create(&attribute).Error; err != nil {
		return nil, err
	}
	return &attribute, nil
}

func GetAttribute(db *gorm.DB, ctx context.Context, id int) (*Attribute, error) {
	return utils.FetchModel[Attribute](db, ctx, id, "Values")
}

func GetAttributes(db *gorm.DB, ctx context.Context) ([]*Attribute, error) {
	return utils.FetchAllModels[Attribute](db, ctx, "Values")
}

// AddAttributeValue appends a value to an existing attribute. Values are
// never edited in place: balances reference value ids through variant keys.
func AddAttributeValue(db *gorm.DB, ctx context.Context, attributeId int, value string) (*AttributeValue, error) {
	if err := utils.ValidateResourceId[Attribute](db, ctx, attributeId); err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[AttributeValue](db, ctx,
		"attribute_id = ? AND value = ?", attributeId, value)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &utils.DuplicateCodeError{Entity: "attribute value", Code: value}
	}

	attrValue := AttributeValue{AttributeId: attributeId, Value: value}
	if err := db.WithContext(ctx).Create(&attrValue).Error; err != nil {
		return nil, err
	}
	return &attrValue, nil
}

// DeleteAttribute refuses to remove an attribute whose values are still
// referenced anywhere: ledger entries, balances, BOMs, BOM lines or work
// orders. Deleting a referenced value would silently change what existing
// recipes explode to.
func DeleteAttribute(db *gorm.DB, ctx context.Context, id int) error {
	attribute, err := utils.FetchModel[Attribute](db, ctx, id, "Values")
	if err != nil {
		return err
	}

	valueIds := make([]int, 0, len(attribute.Values))
	for _, v := range attribute.Values {
		valueIds = append(valueIds, v.Id)
	}
	if len(valueIds) > 0 {
		refs := []struct {
			table string
			name  string
		}{
			{"stock_ledger_entry_values", "stock ledger entries"},
			{"stock_balance_values", "stock balances"},
			{"bom_values", "BOMs"},
			{"bom_line_values", "BOM lines"},
			{"work_order_values", "work orders"},
		}
		for _, ref := range refs {
			var count int64
			if err := db.WithContext(ctx).Table(ref.table).
				Where("attribute_value_id IN ?", valueIds).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return &utils.IntegrityConflictError{Entity: "attribute", Name: attribute.Name, ReferencedBy: ref.name}
			}
		}
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attribute_id = ?", id).Delete(&AttributeValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(attribute).Error
	})
}
