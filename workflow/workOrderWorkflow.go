package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/store"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// transitionTable is the complete work order lifecycle. A target status not
// listed under the current one is an InvalidTransition; terminal statuses
// have no entries at all.
var transitionTable = map[string][]string{
	models.WorkOrderStatusPending: {
		models.WorkOrderStatusInProgress,
		models.WorkOrderStatusCompleted,
		models.WorkOrderStatusCancelled,
	},
	models.WorkOrderStatusInProgress: {
		models.WorkOrderStatusCompleted,
		models.WorkOrderStatusCancelled,
	},
}

// CanTransition reports whether the lifecycle permits from -> to.
func CanTransition(from string, to string) bool {
	for _, allowed := range transitionTable[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// WorkOrderEngine drives work order status changes and their stock side
// effects. It is the only writer of the work order status column.
type WorkOrderEngine struct {
	store  *store.Store
	stock  *models.StockService
	logger *logrus.Logger
	locker *redislock.Client
}

func NewWorkOrderEngine(st *store.Store, stock *models.StockService, logger *logrus.Logger, locker *redislock.Client) *WorkOrderEngine {
	return &WorkOrderEngine{store: st, stock: stock, logger: logger, locker: locker}
}

// Transition moves a work order to target.
//
// Starting (IN_PROGRESS) only validates that every requirement is covered and
// stamps the actual start date; it moves no stock. Completing posts every
// consumption entry plus the single production entry in the same transaction
// as the status change. Cancelling is a pure status flip. Notification and
// audit run after commit and never fail the call.
func (e *WorkOrderEngine) Transition(ctx context.Context, workOrderId int, target string) (*models.WorkOrder, error) {
	target, err := models.ParseWorkOrderStatus(target)
	if err != nil {
		return nil, err
	}

	// Redis lock is advisory; the FOR UPDATE row lock below is what
	// actually serializes concurrent transitions.
	if e.locker != nil {
		lockKey := fmt.Sprintf("work_order_transition:%d", workOrderId)
		lock, lockErr := e.locker.Obtain(ctx, lockKey, 15*time.Second, nil)
		if lockErr == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		}
	}

	db := e.store.DB()
	var order *models.WorkOrder
	var fromStatus string

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.WorkOrder
		if lockErr := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, workOrderId).Error; lockErr != nil {
			if errors.Is(lockErr, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return lockErr
		}
		fromStatus = locked.Status

		if !CanTransition(locked.Status, target) {
			return &utils.InvalidTransitionError{From: locked.Status, To: target}
		}

		full, fetchErr := models.GetWorkOrder(tx, ctx, workOrderId)
		if fetchErr != nil {
			return fetchErr
		}

		now := time.Now()
		switch target {
		case models.WorkOrderStatusInProgress:
			if sideErr := e.validateMaterials(tx, ctx, full); sideErr != nil {
				return sideErr
			}
			full.ActualStartDate = &now
		case models.WorkOrderStatusCompleted:
			if sideErr := e.completeWorkOrder(tx, ctx, full); sideErr != nil {
				return sideErr
			}
			if full.ActualStartDate == nil {
				full.ActualStartDate = &now
			}
			full.ActualEndDate = &now
		case models.WorkOrderStatusCancelled:
			// Pure status flip; no stock was moved before completion.
			full.ActualEndDate = &now
		}

		full.Status = target
		if saveErr := tx.WithContext(ctx).Model(&models.WorkOrder{}).
			Where("id = ?", full.Id).
			UpdateColumns(map[string]interface{}{
				"status":            full.Status,
				"actual_start_date": full.ActualStartDate,
				"actual_end_date":   full.ActualEndDate,
				"updated_at":        now,
			}).Error; saveErr != nil {
			return saveErr
		}

		order = full
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.afterTransition(ctx, order, fromStatus)
	return order, nil
}

// validateMaterials checks that current balances cover the exploded
// requirements. Read only; the authoritative guard re-runs inside the
// completion transaction's row locks.
func (e *WorkOrderEngine) validateMaterials(tx *gorm.DB, ctx context.Context, order *models.WorkOrder) error {
	for key, required := range aggregateDemand(order.MaterialRequirements()) {
		var balance models.StockBalance
		err := tx.WithContext(ctx).
			Where("item_id = ? AND location_id = ? AND variant_key = ?",
				key.ItemId, key.LocationId, key.VariantKey).
			First(&balance).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if balance.Qty.LessThan(required) {
			return &utils.InsufficientStockError{
				ItemId:     key.ItemId,
				LocationId: key.LocationId,
				Current:    balance.Qty,
				Required:   required,
			}
		}
	}
	return nil
}

// completeWorkOrder posts one negative entry per BOM line and the single
// positive entry for the produced item. All movements share the caller's
// transaction; any shortfall rolls everything back.
func (e *WorkOrderEngine) completeWorkOrder(tx *gorm.DB, ctx context.Context, order *models.WorkOrder) error {
	for _, req := range order.MaterialRequirements() {
		_, err := e.stock.AddStockEntryTx(tx, ctx, models.StockEntryInput{
			ItemId:     req.ItemId,
			LocationId: req.LocationId,
			VariantKey: req.VariantKey,
			Qty:        req.Qty.Neg(),
			EntryType:  models.EntryTypeConsume,
			RefType:    models.RefTypeWorkOrder,
			RefId:      order.Code,
		})
		if err != nil {
			return err
		}
	}

	_, err := e.stock.AddStockEntryTx(tx, ctx, models.StockEntryInput{
		ItemId:     order.OutputItemId,
		LocationId: order.DestinationLocationId,
		VariantKey: order.OutputVariantKey(),
		Qty:        order.Qty,
		EntryType:  models.EntryTypeProduce,
		RefType:    models.RefTypeWorkOrder,
		RefId:      order.Code,
	})
	return err
}

// afterTransition publishes the lifecycle event and writes the audit row.
// Both are best effort: the transaction has already committed.
func (e *WorkOrderEngine) afterTransition(ctx context.Context, order *models.WorkOrder, fromStatus string) {
	if config.NotificationsEnabled() {
		event := &config.WorkOrderEvent{
			Type:            "WORK_ORDER_UPDATE",
			WorkOrderId:     order.Id,
			Code:            order.Code,
			Status:          order.Status,
			ActualStartDate: order.ActualStartDate,
			ActualEndDate:   order.ActualEndDate,
		}
		if err := config.PublishWorkOrderUpdate(ctx, event); err != nil {
			config.LogError(e.logger, "workflow", "afterTransition", "PublishWorkOrderUpdate", event, err)
		}
	}

	models.RecordHistory(e.store.DB(), ctx, e.logger,
		"work_order", order.Id, "STATUS_CHANGE",
		fmt.Sprintf("status changed from %s to %s", fromStatus, order.Status))
}

func aggregateDemand(reqs []models.MaterialRequirement) map[models.BalanceKey]decimal.Decimal {
	demand := make(map[models.BalanceKey]decimal.Decimal, len(reqs))
	for _, r := range reqs {
		key := models.BalanceKey{ItemId: r.ItemId, LocationId: r.LocationId, VariantKey: r.VariantKey}
		demand[key] = demand[key].Add(r.Qty)
	}
	return demand
}

// IsMaterialAvailable checks, without locking, whether current balances
// cover the order's requirements. Advisory only; the authoritative guard
// runs inside the completion transaction.
func (e *WorkOrderEngine) IsMaterialAvailable(ctx context.Context, order *models.WorkOrder) (bool, error) {
	reqs := order.MaterialRequirements()
	if len(reqs) == 0 {
		return true, nil
	}

	demand := aggregateDemand(reqs)
	keys := make([]models.BalanceKey, 0, len(demand))
	for k := range demand {
		keys = append(keys, k)
	}
	balances, err := e.stock.GetBatchBalances(ctx, keys)
	if err != nil {
		return false, err
	}

	for key, required := range demand {
		if balances[key].LessThan(required) {
			return false, nil
		}
	}
	return true, nil
}
