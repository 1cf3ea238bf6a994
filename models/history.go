package models

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// History is a best-effort audit row. Written AFTER the business transaction
// commits; a failed insert is logged and swallowed, never propagated.
type History struct {
	Id           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ResourceType string    `gorm:"size:64;index:idx_history_resource" json:"resource_type"`
	ResourceId   int       `gorm:"index:idx_history_resource" json:"resource_id"`
	Action       string    `gorm:"size:64" json:"action"`
	Detail       string    `json:"detail"`
	UserName     string    `gorm:"size:64" json:"user_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordHistory writes one audit row outside any caller transaction.
func RecordHistory(db *gorm.DB, ctx context.Context, logger *logrus.Logger, resourceType string, resourceId int, action string, detail string) {
	if !config.AuditEnabled() {
		return
	}

	userName, _ := utils.GetUserNameFromContext(ctx)
	row := History{
		ResourceType: resourceType,
		ResourceId:   resourceId,
		Action:       action,
		Detail:       detail,
		UserName:     userName,
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		config.LogError(logger, "history", "RecordHistory", "Create", row, err)
	}
}

func GetHistories(db *gorm.DB, ctx context.Context, resourceType string, resourceId int) ([]*History, error) {
	var rows []*History
	err := db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceId).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAuditLogs pages the audit trail with optional resource filters.
func GetAuditLogs(db *gorm.DB, ctx context.Context, resourceType string, limit int, offset int) ([]*History, error) {
	dbCtx := db.WithContext(ctx).Model(&History{})
	if resourceType != "" {
		dbCtx = dbCtx.Where("resource_type = ?", resourceType)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []*History
	err := dbCtx.Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
