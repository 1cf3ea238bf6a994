package models

import "bitbucket.org/mmdatafocus/factory_backend/utils"

// Work order lifecycle statuses. Stored as plain strings in MySQL.
const (
	WorkOrderStatusPending    = "PENDING"
	WorkOrderStatusInProgress = "IN_PROGRESS"
	WorkOrderStatusCompleted  = "COMPLETED"
	WorkOrderStatusCancelled  = "CANCELLED"
)

// ParseWorkOrderStatus normalizes and validates a caller-supplied status.
func ParseWorkOrderStatus(s string) (string, error) {
	switch s {
	case WorkOrderStatusPending, WorkOrderStatusInProgress,
		WorkOrderStatusCompleted, WorkOrderStatusCancelled:
		return s, nil
	}
	return "", utils.ErrorInvalidStatus
}

// Stock ledger entry types.
const (
	EntryTypeReceipt    = "RECEIPT"
	EntryTypeConsume    = "CONSUME"
	EntryTypeProduce    = "PRODUCE"
	EntryTypeAdjustment = "ADJUSTMENT"
	EntryTypeTransfer   = "TRANSFER"
)

// Ledger reference types. Work order entries reference the order by code so
// the trail survives even if the order row is later removed.
const (
	RefTypeWorkOrder = "Work Order"
	RefTypeManual    = "manual"
)

// BOM line quantity interpretation.
const (
	BomLineTypePercentage = "PERCENTAGE"
	BomLineTypeAbsolute   = "ABSOLUTE"
)
