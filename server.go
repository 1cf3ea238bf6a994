package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/store"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

var ready atomic.Bool

// correlationMiddleware threads a correlation id and the acting user through
// the request context so model code can stamp ledger and audit rows.
func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.GetHeader("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		if user := c.GetHeader("X-User"); user != "" {
			ctx = utils.SetUserNameInContext(ctx, user)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Correlation-Id", correlationId)
		c.Next()
	}
}

func readinessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready.Load() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "warming up"})
			return
		}
		c.Next()
	}
}

func newRouter(st *store.Store, stock *models.StockService, engine *workflow.WorkOrderEngine) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Correlation-Id", "X-User"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))
	router.Use(correlationMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", func(c *gin.Context) {
		if !ready.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "warming up"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	api := router.Group("/", readinessMiddleware())
	registerMasterRoutes(api, st)
	registerStockRoutes(api, st, stock)
	registerWorkOrderRoutes(api, st, engine)

	internal := router.Group("/internal/ops", readinessMiddleware())
	registerOpsRoutes(internal, st)

	return router
}

func main() {
	logger := config.GetLogger()
	config.ConnectRedis()

	st := store.New(nil)
	stock := models.NewStockService(st, logger)
	engine := workflow.NewWorkOrderEngine(st, stock, logger, config.GetLockClient())

	router := newRouter(st, stock, engine)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Listen first, then connect. Readiness gates traffic until the
	// database is up and migrated.
	go func() {
		db := config.ConnectDatabaseWithRetry()
		if err := models.MigrateTable(db); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		st.Swap(db)
		ready.Store(true)
		log.Println("service is ready")
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	log.Printf("listening on :%s", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}
