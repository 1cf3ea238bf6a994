package models

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// WorkOrder is an instruction to produce Qty units of an item from a BOM.
// Status changes go through workflow.WorkOrderEngine; nothing else writes
// the status column.
type WorkOrder struct {
	Id   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string `gorm:"size:64;uniqueIndex" json:"code"`

	BomId int  `gorm:"index" json:"bom_id"`
	Bom   *Bom `json:"bom"`

	OutputItemId int   `gorm:"index" json:"output_item_id"`
	OutputItem   *Item `json:"output_item"`

	Qty decimal.Decimal `gorm:"type:decimal(20,6)" json:"qty"`

	SourceLocationId      int       `gorm:"index" json:"source_location_id"`
	SourceLocation        *Location `json:"source_location"`
	DestinationLocationId int       `gorm:"index" json:"destination_location_id"`
	DestinationLocation   *Location `json:"destination_location"`

	Status string `gorm:"size:32;index" json:"status"`

	// Variant of the produced output, copied from the BOM at creation so
	// later BOM edits do not change what this order represents.
	AttributeValues []AttributeValue `gorm:"many2many:work_order_values;" json:"attribute_values"`

	PlannedStartDate *time.Time `json:"planned_start_date"`
	PlannedEndDate   *time.Time `json:"planned_end_date"`
	ActualStartDate  *time.Time `json:"actual_start_date"`
	ActualEndDate    *time.Time `json:"actual_end_date"`

	Remark string `json:"remark"`

	CreatedBy string    `gorm:"size:64" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkOrderView is a work order plus derived fields for listing.
type WorkOrderView struct {
	WorkOrder
	MaterialAvailable bool `json:"material_available"`
}

type NewWorkOrderInput struct {
	Code  string          `json:"code" validate:"required,max=64"`
	BomId int             `json:"bom_id" validate:"required"`
	Qty   decimal.Decimal `json:"qty" validate:"required"`

	// ApplyTolerance inflates the order's output quantity by the BOM
	// header tolerance at creation. Material tolerance is always applied
	// during explosion regardless of this flag.
	ApplyTolerance bool `json:"apply_tolerance"`

	SourceLocationId      int        `json:"source_location_id"`
	DestinationLocationId int        `json:"destination_location_id" validate:"required"`
	PlannedStartDate      *time.Time `json:"planned_start_date"`
	PlannedEndDate        *time.Time `json:"planned_end_date"`
	Remark                string     `json:"remark"`
}

func CreateWorkOrder(db *gorm.DB, ctx context.Context, input NewWorkOrderInput) (*WorkOrder, error) {
	if err := validator.New().Struct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUniqueCode[WorkOrder](db, ctx, "work order", input.Code, 0); err != nil {
		return nil, err
	}
	if input.Qty.Sign() <= 0 {
		return nil, utils.ErrorZeroQuantity
	}

	bom, err := GetBom(db, ctx, input.BomId)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Location](db, ctx, input.DestinationLocationId); err != nil {
		return nil, err
	}
	if input.SourceLocationId != 0 {
		if err := utils.ValidateResourceId[Location](db, ctx, input.SourceLocationId); err != nil {
			return nil, err
		}
	}

	qty := input.Qty
	if input.ApplyTolerance && bom.TolerancePct.Sign() > 0 {
		qty = qty.Mul(decimal.NewFromInt(1).Add(bom.TolerancePct.Div(oneHundred)))
	}

	userName, _ := utils.GetUserNameFromContext(ctx)
	order := WorkOrder{
		Code:                  input.Code,
		BomId:                 bom.Id,
		OutputItemId:          bom.OutputItemId,
		Qty:                   qty,
		SourceLocationId:      input.SourceLocationId,
		DestinationLocationId: input.DestinationLocationId,
		Status:                WorkOrderStatusPending,
		PlannedStartDate:      input.PlannedStartDate,
		PlannedEndDate:        input.PlannedEndDate,
		Remark:                input.Remark,
		CreatedBy:             userName,
	}
	// The order's variant set is the BOM's, frozen at creation.
	for _, v := range bom.AttributeValues {
		order.AttributeValues = append(order.AttributeValues, AttributeValue{Id: v.Id})
	}

	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return GetWorkOrder(db, ctx, order.Id)
}

func GetWorkOrder(db *gorm.DB, ctx context.Context, id int) (*WorkOrder, error) {
	return utils.FetchModel[WorkOrder](db, ctx, id,
		"Bom", "Bom.Lines", "Bom.Lines.AttributeValues",
		"OutputItem", "SourceLocation", "DestinationLocation", "AttributeValues")
}

type WorkOrderFilter struct {
	Status string
	BomId  int
	Limit  int
	Offset int
}

func GetWorkOrders(db *gorm.DB, ctx context.Context, filter WorkOrderFilter) ([]*WorkOrder, error) {
	dbCtx := db.WithContext(ctx).Model(&WorkOrder{}).
		Preload("Bom").Preload("Bom.Lines").Preload("Bom.Lines.AttributeValues").
		Preload("OutputItem").
		Preload("SourceLocation").Preload("DestinationLocation").
		Preload("AttributeValues")

	if filter.Status != "" {
		dbCtx = dbCtx.Where("status = ?", filter.Status)
	}
	if filter.BomId != 0 {
		dbCtx = dbCtx.Where("bom_id = ?", filter.BomId)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var orders []*WorkOrder
	err := dbCtx.Order("id DESC").Limit(limit).Offset(filter.Offset).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// OutputVariantKey resolves the variant key of the produced goods.
func (w *WorkOrder) OutputVariantKey() string {
	ids := make([]int, 0, len(w.AttributeValues))
	for _, v := range w.AttributeValues {
		ids = append(ids, v.Id)
	}
	return ResolveVariantKey(ids)
}

// MaterialRequirements explodes this order's BOM for its quantity.
// Requires Bom with lines preloaded.
func (w *WorkOrder) MaterialRequirements() []MaterialRequirement {
	if w.Bom == nil {
		return nil
	}
	return w.Bom.Explode(w.Qty, w.SourceLocationId, w.DestinationLocationId)
}

// DeleteWorkOrder removes a closed order. Open orders (PENDING or
// IN_PROGRESS) must be cancelled first; ledger entries reference the order
// by code and survive the deletion.
func DeleteWorkOrder(db *gorm.DB, ctx context.Context, id int) error {
	order, err := utils.FetchModel[WorkOrder](db, ctx, id)
	if err != nil {
		return err
	}
	if order.Status != WorkOrderStatusCompleted && order.Status != WorkOrderStatusCancelled {
		return &utils.InvalidTransitionError{From: order.Status, To: "deleted"}
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Association("AttributeValues").Clear(); err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}
