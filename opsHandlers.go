package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/store"
)

// registerOpsRoutes exposes operational endpoints. They are not part of the
// public API; the ingress must restrict access to /internal/ops.
func registerOpsRoutes(r *gin.RouterGroup, st *store.Store) {
	// Swap the live database connection, e.g. after rotating credentials
	// or moving to a replica promoted to primary. The old handle is closed
	// once the swap has happened; in-flight transactions on it finish on
	// their own connections.
	r.POST("/database/switch", func(c *gin.Context) {
		var input struct {
			Dsn string `json:"dsn" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		db, err := config.OpenDatabase(input.Dsn)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not open target database"})
			return
		}

		old := st.Swap(db)
		if old != nil {
			if sqlDB, derr := old.DB(); derr == nil {
				sqlDB.Close()
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "switched"})
	})

	r.GET("/database/ping", func(c *gin.Context) {
		db := st.DB()
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no database connected"})
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
