package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// StockLedgerEntry is one immutable movement row. The ledger is append only:
// there is no update or delete path, corrections are posted as new entries.
type StockLedgerEntry struct {
	Id         string `gorm:"primaryKey;size:36" json:"id"`
	ItemId     int    `gorm:"index:idx_ledger_item_loc_variant" json:"item_id"`
	LocationId int    `gorm:"index:idx_ledger_item_loc_variant" json:"location_id"`
	VariantKey string `gorm:"size:255;index:idx_ledger_item_loc_variant" json:"variant_key"`

	// Qty is signed: positive for receipts and production output,
	// negative for consumption.
	Qty       decimal.Decimal `gorm:"type:decimal(20,6)" json:"qty"`
	EntryType string          `gorm:"size:32;index" json:"entry_type"`

	// Reference back to the business document that caused the movement.
	// RefId carries the document's code, not its numeric id.
	RefType string `gorm:"size:32;index:idx_ledger_ref" json:"reference_type"`
	RefId   string `gorm:"size:64;index:idx_ledger_ref" json:"reference_id"`

	AttributeValues []AttributeValue `gorm:"many2many:stock_ledger_entry_values;" json:"attribute_values"`

	CreatedBy string    `gorm:"size:64" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (e *StockLedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	return nil
}

type LedgerFilter struct {
	ItemId     int
	LocationId int
	VariantKey *string
	EntryType  string
	Limit      int
	Offset     int
}

// GetLedgerEntries lists movements newest first with optional filters.
func GetLedgerEntries(db *gorm.DB, ctx context.Context, filter LedgerFilter) ([]*StockLedgerEntry, error) {
	dbCtx := db.WithContext(ctx).Model(&StockLedgerEntry{}).Preload("AttributeValues")

	if filter.ItemId != 0 {
		dbCtx = dbCtx.Where("item_id = ?", filter.ItemId)
	}
	if filter.LocationId != 0 {
		dbCtx = dbCtx.Where("location_id = ?", filter.LocationId)
	}
	if filter.VariantKey != nil {
		dbCtx = dbCtx.Where("variant_key = ?", *filter.VariantKey)
	}
	if filter.EntryType != "" {
		dbCtx = dbCtx.Where("entry_type = ?", filter.EntryType)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []*StockLedgerEntry
	err := dbCtx.Order("created_at DESC, id DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SumLedgerQty recomputes a balance straight from the ledger. Used by
// reconciliation checks; the balance table is the fast path.
func SumLedgerQty(db *gorm.DB, ctx context.Context, itemId int, locationId int, variantKey string) (decimal.Decimal, error) {
	type row struct {
		Total decimal.Decimal
	}
	var r row
	err := db.WithContext(ctx).Model(&StockLedgerEntry{}).
		Select("COALESCE(SUM(qty), 0) AS total").
		Where("item_id = ? AND location_id = ? AND variant_key = ?", itemId, locationId, variantKey).
		Scan(&r).Error
	if err != nil {
		return decimal.Zero, err
	}
	return r.Total, nil
}

// fetchVariantValues resolves a variant key back to its attribute value rows.
func fetchVariantValues(tx *gorm.DB, ctx context.Context, variantKey string) ([]AttributeValue, error) {
	ids, err := VariantKeyIds(variantKey)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	var values []AttributeValue
	if err := tx.WithContext(ctx).Where("id IN ?", ids).Find(&values).Error; err != nil {
		return nil, err
	}
	if len(values) != len(ids) {
		return nil, utils.ErrorRecordNotFound
	}
	return values, nil
}

// attachLedgerValues loads the attribute value rows for a variant key so a
// freshly inserted entry carries its m2m association.
func attachLedgerValues(tx *gorm.DB, ctx context.Context, entry *StockLedgerEntry) error {
	values, err := fetchVariantValues(tx, ctx, entry.VariantKey)
	if err != nil || len(values) == 0 {
		return err
	}
	return tx.WithContext(ctx).Model(entry).Association("AttributeValues").Append(values)
}
