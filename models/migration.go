package models

import "gorm.io/gorm"

// MigrateTable runs gorm auto migration for every table in dependency order.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Attribute{},
		&AttributeValue{},
		&Item{},
		&Location{},
		&StockLedgerEntry{},
		&StockBalance{},
		&Bom{},
		&BomLine{},
		&BomOperation{},
		&WorkOrder{},
		&History{},
	)
}
