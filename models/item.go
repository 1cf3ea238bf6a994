package models

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// Item is a stockable material or finished good.
type Item struct {
	Id          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string `gorm:"size:64;uniqueIndex" json:"code"`
	Name        string `gorm:"size:255" json:"name"`
	Uom         string `gorm:"size:32" json:"uom"`
	Category    string `gorm:"size:64;index" json:"category"`
	Description string `json:"description"`

	// SourceItemId links a derived item (repack, rework) back to the item
	// it was created from.
	SourceItemId *int  `gorm:"index" json:"source_item_id"`
	SourceItem   *Item `gorm:"foreignKey:SourceItemId" json:"source_item"`

	// Attributes this item can vary on (size, color, batch...).
	Attributes []Attribute `gorm:"many2many:item_attributes;" json:"attributes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewItemInput struct {
	Code         string `json:"code" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=255"`
	Uom          string `json:"uom" validate:"required,max=32"`
	Category     string `json:"category" validate:"max=64"`
	Description  string `json:"description"`
	SourceItemId *int   `json:"source_item_id"`
	AttributeIds []int  `json:"attribute_ids"`
}

func itemCacheKey(id int) string { return fmt.Sprintf("item:%d", id) }

func CreateItem(db *gorm.DB, ctx context.Context, input NewItemInput) (*Item, error) {
	if err := validator.New().Struct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUniqueCode[Item](db, ctx, "item", input.Code, 0); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourcesId[Attribute](db, ctx, input.AttributeIds); err != nil {
		return nil, err
	}
	if input.SourceItemId != nil {
		if err := utils.ValidateResourceId[Item](db, ctx, *input.SourceItemId); err != nil {
			return nil, err
		}
	}

	item := Item{
		Code:         input.Code,
		Name:         input.Name,
		Uom:          input.Uom,
		Category:     input.Category,
		Description:  input.Description,
		SourceItemId: input.SourceItemId,
	}
	for _, id := range utils.UniqueSlice(input.AttributeIds) {
		item.Attributes = append(item.Attributes, Attribute{Id: id})
	}

	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return GetItem(db, ctx, item.Id)
}

func GetItem(db *gorm.DB, ctx context.Context, id int) (*Item, error) {
	var cached Item
	if config.GetRedisObject(ctx, itemCacheKey(id), &cached) {
		return &cached, nil
	}

	item, err := utils.FetchModel[Item](db, ctx, id, "Attributes")
	if err != nil {
		return nil, err
	}
	config.SetRedisObject(ctx, itemCacheKey(id), item, 10*time.Minute)
	return item, nil
}

func GetItems(db *gorm.DB, ctx context.Context) ([]*Item, error) {
	return utils.FetchAllModels[Item](db, ctx, "Attributes")
}

func UpdateItem(db *gorm.DB, ctx context.Context, id int, input NewItemInput) (*Item, error) {
	if err := validator.New().Struct(input); err != nil {
		return nil, err
	}
	item, err := utils.FetchModel[Item](db, ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUniqueCode[Item](db, ctx, "item", input.Code, id); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourcesId[Attribute](db, ctx, input.AttributeIds); err != nil {
		return nil, err
	}

	if input.SourceItemId != nil {
		if err := utils.ValidateResourceId[Item](db, ctx, *input.SourceItemId); err != nil {
			return nil, err
		}
	}

	item.Code = input.Code
	item.Name = input.Name
	item.Uom = input.Uom
	item.Category = input.Category
	item.Description = input.Description
	item.SourceItemId = input.SourceItemId

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		attrs := make([]Attribute, 0, len(input.AttributeIds))
		for _, aid := range utils.UniqueSlice(input.AttributeIds) {
			attrs = append(attrs, Attribute{Id: aid})
		}
		return tx.Model(item).Association("Attributes").Replace(attrs)
	})
	if err != nil {
		return nil, err
	}

	config.RemoveRedisKey(ctx, itemCacheKey(id))
	return GetItem(db, ctx, id)
}

// DeleteItem refuses to remove an item that still appears in ledger rows,
// BOMs or work orders.
func DeleteItem(db *gorm.DB, ctx context.Context, id int) error {
	item, err := utils.FetchModel[Item](db, ctx, id)
	if err != nil {
		return err
	}

	refs := []struct {
		name  string
		count func() (int64, error)
	}{
		{"stock ledger entries", func() (int64, error) {
			return utils.ResourceCountWhere[StockLedgerEntry](db, ctx, "item_id = ?", id)
		}},
		{"BOM lines", func() (int64, error) {
			return utils.ResourceCountWhere[BomLine](db, ctx, "item_id = ?", id)
		}},
		{"BOMs", func() (int64, error) {
			return utils.ResourceCountWhere[Bom](db, ctx, "output_item_id = ?", id)
		}},
		{"work orders", func() (int64, error) {
			return utils.ResourceCountWhere[WorkOrder](db, ctx, "output_item_id = ?", id)
		}},
	}
	for _, ref := range refs {
		count, err := ref.count()
		if err != nil {
			return err
		}
		if count > 0 {
			return &utils.IntegrityConflictError{Entity: "item", Name: item.Name, ReferencedBy: ref.name}
		}
	}

	if err := db.WithContext(ctx).Select("Attributes").Delete(item).Error; err != nil {
		return err
	}
	config.RemoveRedisKey(ctx, itemCacheKey(id))
	return nil
}
