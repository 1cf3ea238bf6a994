package config

import (
	"os"
	"strings"
)

// boolFromEnv treats "1", "true", "yes" and "on" as enabled.
func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// AuditEnabled gates best-effort history rows. Defaults to on unless the
// deployment explicitly disables it.
func AuditEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("DISABLE_AUDIT")))
	switch v {
	case "1", "true", "yes", "on":
		return false
	}
	return true
}

// NotificationsEnabled gates pubsub publication of work order events.
func NotificationsEnabled() bool {
	return os.Getenv("WORK_ORDER_TOPIC") != ""
}

// StrictBatchBalanceCheck makes list endpoints compute material availability
// even for large result pages. Off by default to keep listing cheap.
func StrictBatchBalanceCheck() bool {
	return boolFromEnv("STRICT_BATCH_BALANCE_CHECK")
}
