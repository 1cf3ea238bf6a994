package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/store"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// StockService is the only mutation path into the ledger and the balance
// table. Handlers and the work order workflow go through it; nothing else
// writes those tables.
type StockService struct {
	store  *store.Store
	logger *logrus.Logger
}

func NewStockService(st *store.Store, logger *logrus.Logger) *StockService {
	return &StockService{store: st, logger: logger}
}

// BalanceKey identifies one stock bucket.
type BalanceKey struct {
	ItemId     int
	LocationId int
	VariantKey string
}

// StockEntryInput describes one movement to post. Qty is signed; RefId is
// the referencing document's code.
type StockEntryInput struct {
	ItemId     int
	LocationId int
	VariantKey string
	Qty        decimal.Decimal
	EntryType  string
	RefType    string
	RefId      string
}

// GetBalance returns the current quantity of a bucket. A bucket that has
// never moved reads as zero, not as an error.
func (s *StockService) GetBalance(ctx context.Context, key BalanceKey) (decimal.Decimal, error) {
	db := s.store.DB()

	var balance StockBalance
	err := db.WithContext(ctx).
		Where("item_id = ? AND location_id = ? AND variant_key = ?",
			key.ItemId, key.LocationId, key.VariantKey).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance.Qty, nil
}

// GetBatchBalances loads balances for many buckets in one round trip.
// Buckets with no row are simply absent from the result map; callers treat
// a missing key as zero.
func (s *StockService) GetBatchBalances(ctx context.Context, keys []BalanceKey) (map[BalanceKey]decimal.Decimal, error) {
	result := make(map[BalanceKey]decimal.Decimal, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	itemIds := make([]int, 0, len(keys))
	for _, k := range keys {
		itemIds = append(itemIds, k.ItemId)
	}
	itemIds = utils.UniqueSlice(itemIds)

	var balances []StockBalance
	err := s.store.DB().WithContext(ctx).
		Where("item_id IN ?", itemIds).
		Find(&balances).Error
	if err != nil {
		return nil, err
	}

	wanted := make(map[BalanceKey]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	for _, b := range balances {
		k := BalanceKey{ItemId: b.ItemId, LocationId: b.LocationId, VariantKey: b.VariantKey}
		if _, ok := wanted[k]; ok {
			result[k] = b.Qty
		}
	}
	return result, nil
}

// AddStockEntry posts one movement in its own transaction: lock the balance
// row, guard against going negative, insert the ledger row and apply the
// delta. Rejection rolls the whole thing back, so a failed movement leaves
// no ledger trace.
func (s *StockService) AddStockEntry(ctx context.Context, input StockEntryInput) (*StockLedgerEntry, error) {
	var entry *StockLedgerEntry
	err := s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.AddStockEntryTx(tx, ctx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AddStockEntryTx posts one movement inside a caller-owned transaction.
// The work order workflow uses this to post several movements atomically.
func (s *StockService) AddStockEntryTx(tx *gorm.DB, ctx context.Context, input StockEntryInput) (*StockLedgerEntry, error) {
	if input.Qty.IsZero() {
		return nil, utils.ErrorZeroQuantity
	}

	balance, err := lockStockBalance(tx, ctx, input.ItemId, input.LocationId, input.VariantKey)
	if err != nil {
		return nil, err
	}

	newQty := balance.Qty.Add(input.Qty)
	if newQty.IsNegative() {
		return nil, &utils.InsufficientStockError{
			ItemId:     input.ItemId,
			LocationId: input.LocationId,
			Current:    balance.Qty,
			Required:   input.Qty.Neg(),
		}
	}

	userName, _ := utils.GetUserNameFromContext(ctx)
	entry := StockLedgerEntry{
		ItemId:     input.ItemId,
		LocationId: input.LocationId,
		VariantKey: input.VariantKey,
		Qty:        input.Qty,
		EntryType:  input.EntryType,
		RefType:    input.RefType,
		RefId:      input.RefId,
		CreatedBy:  userName,
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	if err := attachLedgerValues(tx, ctx, &entry); err != nil {
		return nil, err
	}

	if err := applyStockBalanceDelta(tx, ctx, balance.Id, input.Qty); err != nil {
		return nil, err
	}

	return &entry, nil
}

// RecordManualEntry posts a movement initiated directly by a user rather
// than by the work order workflow, then writes the best-effort audit row.
func (s *StockService) RecordManualEntry(ctx context.Context, input StockEntryInput) (*StockLedgerEntry, error) {
	if input.EntryType == "" {
		input.EntryType = EntryTypeAdjustment
	}
	if input.RefType == "" {
		input.RefType = RefTypeManual
	}

	entry, err := s.AddStockEntry(ctx, input)
	if err != nil {
		config.LogError(s.logger, "stockService", "RecordManualEntry", "AddStockEntry", input, err)
		return nil, err
	}

	RecordHistory(s.store.DB(), ctx, s.logger, "stock_ledger_entry", 0, "MANUAL_ENTRY",
		fmt.Sprintf("entry %s: item %d location %d qty %s", entry.Id, entry.ItemId, entry.LocationId, entry.Qty))
	return entry, nil
}
