package models

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// Bom is a recipe: one output item plus the component lines and routing
// operations needed to make it.
type Bom struct {
	Id           int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string `gorm:"size:64;uniqueIndex" json:"code"`
	Name         string `gorm:"size:255" json:"name"`
	OutputItemId int    `gorm:"index" json:"output_item_id"`
	OutputItem   *Item  `json:"output_item"`

	// Qty is the nominal batch size this recipe describes. Kept for
	// display and costing; explosion scales per target unit.
	Qty decimal.Decimal `gorm:"type:decimal(20,6)" json:"qty"`

	// TolerancePct inflates every exploded requirement by this percentage.
	// Zero means no allowance.
	TolerancePct decimal.Decimal `gorm:"type:decimal(8,4)" json:"tolerance_pct"`

	// Variant of the produced item this recipe describes. Copied onto
	// every work order at creation so later BOM edits do not rewrite what
	// existing orders produced.
	AttributeValues []AttributeValue `gorm:"many2many:bom_values;" json:"attribute_values"`

	Lines      []BomLine      `gorm:"foreignKey:BomId" json:"lines"`
	Operations []BomOperation `gorm:"foreignKey:BomId" json:"operations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BomLine is one component requirement.
type BomLine struct {
	Id     int   `gorm:"primaryKey;autoIncrement" json:"id"`
	BomId  int   `gorm:"index" json:"bom_id"`
	ItemId int   `gorm:"index" json:"item_id"`
	Item   *Item `json:"item"`

	// LineType decides how Qty is read: ABSOLUTE is units per output unit,
	// PERCENTAGE is a percentage of the output quantity.
	LineType string          `gorm:"size:32" json:"line_type"`
	Qty      decimal.Decimal `gorm:"type:decimal(20,6)" json:"qty"`

	// SourceLocationId overrides where this component is drawn from.
	// Zero means inherit from the work order.
	SourceLocationId int `json:"source_location_id"`

	AttributeValues []AttributeValue `gorm:"many2many:bom_line_values;" json:"attribute_values"`
}

// BomOperation is a routing step. Carried for completeness of the recipe;
// the stock engine does not consume it.
type BomOperation struct {
	Id          int             `gorm:"primaryKey;autoIncrement" json:"id"`
	BomId       int             `gorm:"index" json:"bom_id"`
	Sequence    int             `json:"sequence"`
	Name        string          `gorm:"size:255" json:"name"`
	DurationMin decimal.Decimal `gorm:"type:decimal(12,4)" json:"duration_min"`
}

type NewBomLineInput struct {
	ItemId           int             `json:"item_id" validate:"required"`
	LineType         string          `json:"line_type" validate:"required,oneof=PERCENTAGE ABSOLUTE"`
	Qty              decimal.Decimal `json:"qty" validate:"required"`
	SourceLocationId int             `json:"source_location_id"`
	AttributeValues  []int           `json:"attribute_value_ids"`
}

type NewBomOperationInput struct {
	Sequence    int             `json:"sequence"`
	Name        string          `json:"name" validate:"required,max=255"`
	DurationMin decimal.Decimal `json:"duration_min"`
}

type NewBomInput struct {
	Code              string                 `json:"code" validate:"required,max=64"`
	Name              string                 `json:"name" validate:"required,max=255"`
	OutputItemId      int                    `json:"output_item_id" validate:"required"`
	Qty               decimal.Decimal        `json:"qty" validate:"required"`
	TolerancePct      decimal.Decimal        `json:"tolerance_pct"`
	AttributeValueIds []int                  `json:"attribute_value_ids"`
	Lines             []NewBomLineInput      `json:"lines" validate:"required,min=1,dive"`
	Operations        []NewBomOperationInput `json:"operations" validate:"dive"`
}

func CreateBom(db *gorm.DB, ctx context.Context, input NewBomInput) (*Bom, error) {
	if err := validator.New().Struct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUniqueCode[Bom](db, ctx, "BOM", input.Code, 0); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Item](db, ctx, input.OutputItemId); err != nil {
		return nil, err
	}
	if input.Qty.Sign() <= 0 {
		return nil, utils.ErrorZeroQuantity
	}

	lineItemIds := make([]int, 0, len(input.Lines))
	valueIds := []int{}
	for _, l := range input.Lines {
		if l.Qty.Sign() <= 0 {
			return nil, utils.ErrorZeroQuantity
		}
		lineItemIds = append(lineItemIds, l.ItemId)
		valueIds = append(valueIds, l.AttributeValues...)
		if l.SourceLocationId != 0 {
			if err := utils.ValidateResourceId[Location](db, ctx, l.SourceLocationId); err != nil {
				return nil, err
			}
		}
	}
	if err := utils.ValidateResourcesId[Item](db, ctx, lineItemIds); err != nil {
		return nil, err
	}
	valueIds = append(valueIds, input.AttributeValueIds...)
	if err := utils.ValidateResourcesId[AttributeValue](db, ctx, valueIds); err != nil {
		return nil, err
	}

	bom := Bom{
		Code:         input.Code,
		Name:         input.Name,
		OutputItemId: input.OutputItemId,
		Qty:          input.Qty,
		TolerancePct: input.TolerancePct,
	}
	for _, vid := range utils.UniqueSlice(input.AttributeValueIds) {
		bom.AttributeValues = append(bom.AttributeValues, AttributeValue{Id: vid})
	}
	for _, l := range input.Lines {
		line := BomLine{
			ItemId:           l.ItemId,
			LineType:         l.LineType,
			Qty:              l.Qty,
			SourceLocationId: l.SourceLocationId,
		}
		for _, vid := range utils.UniqueSlice(l.AttributeValues) {
			line.AttributeValues = append(line.AttributeValues, AttributeValue{Id: vid})
		}
		bom.Lines = append(bom.Lines, line)
	}
	for _, op := range input.Operations {
		bom.Operations = append(bom.Operations, BomOperation{
			Sequence:    op.Sequence,
			Name:        op.Name,
			DurationMin: op.DurationMin,
		})
	}

	if err := db.WithContext(ctx).Create(&bom).Error; err != nil {
		return nil, err
	}
	return GetBom(db, ctx, bom.Id)
}

func GetBom(db *gorm.DB, ctx context.Context, id int) (*Bom, error) {
	return utils.FetchModel[Bom](db, ctx, id,
		"OutputItem", "AttributeValues",
		"Lines", "Lines.Item", "Lines.AttributeValues", "Operations")
}

func GetBoms(db *gorm.DB, ctx context.Context) ([]*Bom, error) {
	return utils.FetchAllModels[Bom](db, ctx, "OutputItem", "Lines", "Lines.Item")
}

func DeleteBom(db *gorm.DB, ctx context.Context, id int) error {
	bom, err := utils.FetchModel[Bom](db, ctx, id)
	if err != nil {
		return err
	}

	count, err := utils.ResourceCountWhere[WorkOrder](db, ctx, "bom_id = ?", id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &utils.IntegrityConflictError{Entity: "BOM", Name: bom.Name, ReferencedBy: "work orders"}
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lines []BomLine
		if err := tx.Where("bom_id = ?", id).Find(&lines).Error; err != nil {
			return err
		}
		for i := range lines {
			if err := tx.Model(&lines[i]).Association("AttributeValues").Clear(); err != nil {
				return err
			}
		}
		if err := tx.Where("bom_id = ?", id).Delete(&BomLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bom_id = ?", id).Delete(&BomOperation{}).Error; err != nil {
			return err
		}
		if err := tx.Model(bom).Association("AttributeValues").Clear(); err != nil {
			return err
		}
		return tx.Delete(bom).Error
	})
}

// MaterialRequirement is one exploded component demand.
type MaterialRequirement struct {
	ItemId     int
	LocationId int
	VariantKey string
	Qty        decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Explode computes the component demand for producing targetQty units.
//
// ABSOLUTE lines require line.Qty per output unit; PERCENTAGE lines require
// line.Qty percent of the output quantity. A positive header tolerance
// inflates every line's result; it is never optional. Component source falls
// back from the line override to the order's source location, then to the
// destination.
//
// Pure function: no I/O, the BOM must arrive with Lines and their
// AttributeValues preloaded.
func (b *Bom) Explode(targetQty decimal.Decimal, orderSourceLocationId int, orderDestinationLocationId int) []MaterialRequirement {
	tolFactor := decimal.NewFromInt(1)
	if b.TolerancePct.Sign() > 0 {
		tolFactor = tolFactor.Add(b.TolerancePct.Div(oneHundred))
	}

	reqs := make([]MaterialRequirement, 0, len(b.Lines))
	for _, line := range b.Lines {
		var qty decimal.Decimal
		switch line.LineType {
		case BomLineTypePercentage:
			qty = targetQty.Mul(line.Qty).Div(oneHundred)
		default:
			qty = line.Qty.Mul(targetQty)
		}
		qty = qty.Mul(tolFactor)

		locationId := line.SourceLocationId
		if locationId == 0 {
			locationId = orderSourceLocationId
		}
		if locationId == 0 {
			locationId = orderDestinationLocationId
		}

		valueIds := make([]int, 0, len(line.AttributeValues))
		for _, v := range line.AttributeValues {
			valueIds = append(valueIds, v.Id)
		}

		reqs = append(reqs, MaterialRequirement{
			ItemId:     line.ItemId,
			LocationId: locationId,
			VariantKey: ResolveVariantKey(valueIds),
			Qty:        qty,
		})
	}
	return reqs
}
