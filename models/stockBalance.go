package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockBalance is the materialized current quantity for one
// (item, location, variant key) bucket. It is derived state: every change
// happens in the same transaction as the ledger insert that justifies it.
type StockBalance struct {
	Id         int    `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemId     int    `gorm:"uniqueIndex:idx_balance_bucket" json:"item_id"`
	LocationId int    `gorm:"uniqueIndex:idx_balance_bucket" json:"location_id"`
	VariantKey string `gorm:"size:255;uniqueIndex:idx_balance_bucket" json:"variant_key"`

	Qty decimal.Decimal `gorm:"type:decimal(20,6)" json:"qty"`

	// The resolved value set behind the variant key, kept so a balance row
	// is readable without parsing the key. Populated when the row is first
	// created.
	AttributeValues []AttributeValue `gorm:"many2many:stock_balance_values;" json:"attribute_values"`

	UpdatedAt time.Time `json:"updated_at"`
}

// GetNonZeroBalances lists every bucket holding stock, optionally scoped to
// one location. Zero rows exist (a fully consumed bucket keeps its row) and
// are filtered out here.
func GetNonZeroBalances(db *gorm.DB, ctx context.Context, locationId int) ([]*StockBalance, error) {
	dbCtx := db.WithContext(ctx).Where("qty <> 0")
	if locationId != 0 {
		dbCtx = dbCtx.Where("location_id = ?", locationId)
	}
	var balances []*StockBalance
	err := dbCtx.Order("item_id, location_id, variant_key").Find(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// lockStockBalance fetches the balance row for update, creating a zero row
// first when the bucket has never moved. Must be called inside a transaction;
// the returned row stays locked until commit or rollback.
func lockStockBalance(tx *gorm.DB, ctx context.Context, itemId int, locationId int, variantKey string) (*StockBalance, error) {
	seed := StockBalance{
		ItemId:     itemId,
		LocationId: locationId,
		VariantKey: variantKey,
		Qty:        decimal.Zero,
	}
	res := tx.WithContext(ctx).
		Where(StockBalance{ItemId: itemId, LocationId: locationId, VariantKey: variantKey}).
		FirstOrCreate(&seed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		// Fresh bucket: record its resolved value set once.
		values, err := fetchVariantValues(tx, ctx, variantKey)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			if err := tx.WithContext(ctx).Model(&seed).Association("AttributeValues").Append(values); err != nil {
				return nil, err
			}
		}
	}

	var locked StockBalance
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND location_id = ? AND variant_key = ?", itemId, locationId, variantKey).
		First(&locked).Error
	if err != nil {
		return nil, err
	}
	return &locked, nil
}

// applyStockBalanceDelta adjusts the locked row relatively so the statement
// stays correct even if another session slipped a write in between the
// FirstOrCreate and the lock.
func applyStockBalanceDelta(tx *gorm.DB, ctx context.Context, balanceId int, delta decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&StockBalance{}).
		Where("id = ?", balanceId).
		UpdateColumns(map[string]interface{}{
			"qty":        gorm.Expr("qty + ?", delta),
			"updated_at": time.Now(),
		}).Error
}
