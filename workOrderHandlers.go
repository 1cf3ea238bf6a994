package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/store"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

func registerWorkOrderRoutes(r *gin.RouterGroup, st *store.Store, engine *workflow.WorkOrderEngine) {
	r.POST("/boms", func(c *gin.Context) {
		var input models.NewBomInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bom, err := models.CreateBom(st.DB(), c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, bom)
	})

	r.GET("/boms", func(c *gin.Context) {
		boms, err := models.GetBoms(st.DB(), c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, boms)
	})

	r.GET("/boms/:id", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		bom, err := models.GetBom(st.DB(), c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bom)
	})

	r.DELETE("/boms/:id", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteBom(st.DB(), c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.POST("/work-orders", func(c *gin.Context) {
		var input models.NewWorkOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := models.CreateWorkOrder(st.DB(), c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}

		available, availErr := engine.IsMaterialAvailable(c.Request.Context(), order)
		if availErr != nil {
			available = false
		}
		c.JSON(http.StatusCreated, models.WorkOrderView{WorkOrder: *order, MaterialAvailable: available})
	})

	r.GET("/work-orders", func(c *gin.Context) {
		filter := models.WorkOrderFilter{Status: c.Query("status")}
		if v := c.Query("bom_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bom_id"})
				return
			}
			filter.BomId = id
		}
		filter.Limit, _ = strconv.Atoi(c.Query("limit"))
		filter.Offset, _ = strconv.Atoi(c.Query("offset"))
		orders, err := models.GetWorkOrders(st.DB(), c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		if !config.StrictBatchBalanceCheck() {
			c.JSON(http.StatusOK, orders)
			return
		}
		views := make([]models.WorkOrderView, 0, len(orders))
		for _, order := range orders {
			available := false
			if order.Status == models.WorkOrderStatusPending {
				available, _ = engine.IsMaterialAvailable(c.Request.Context(), order)
			}
			views = append(views, models.WorkOrderView{WorkOrder: *order, MaterialAvailable: available})
		}
		c.JSON(http.StatusOK, views)
	})

	r.GET("/work-orders/:id", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		order, err := models.GetWorkOrder(st.DB(), c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}

		available, availErr := engine.IsMaterialAvailable(c.Request.Context(), order)
		if availErr != nil {
			available = false
		}
		c.JSON(http.StatusOK, models.WorkOrderView{WorkOrder: *order, MaterialAvailable: available})
	})

	r.PUT("/work-orders/:id/status", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}

		// Status arrives as ?status=... or as a JSON body.
		status := c.Query("status")
		if status == "" {
			var input struct {
				Status string `json:"status" binding:"required"`
			}
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
				return
			}
			status = input.Status
		}

		order, err := engine.Transition(c.Request.Context(), id, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.DELETE("/work-orders/:id", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteWorkOrder(st.DB(), c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.GET("/work-orders/:id/history", func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		rows, err := models.GetHistories(st.DB(), c.Request.Context(), "work_order", id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	r.GET("/audit-logs", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		rows, err := models.GetAuditLogs(st.DB(), c.Request.Context(), c.Query("resource_type"), limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})
}
