package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/store"
)

func registerStockRoutes(r *gin.RouterGroup, st *store.Store, stock *models.StockService) {
	// Manual movement. Signed qty; entry type defaults to ADJUSTMENT.
	r.POST("/stock/entries", func(c *gin.Context) {
		var input struct {
			ItemId            int             `json:"item_id" binding:"required"`
			LocationId        int             `json:"location_id" binding:"required"`
			AttributeValueIds []int           `json:"attribute_value_ids"`
			Qty               decimal.Decimal `json:"qty"`
			EntryType         string          `json:"entry_type"`
			ReferenceType     string          `json:"reference_type"`
			ReferenceId       string          `json:"reference_id"`
			Remark            string          `json:"remark"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry, err := stock.RecordManualEntry(c.Request.Context(), models.StockEntryInput{
			ItemId:     input.ItemId,
			LocationId: input.LocationId,
			VariantKey: models.ResolveVariantKey(input.AttributeValueIds),
			Qty:        input.Qty,
			EntryType:  input.EntryType,
			RefType:    input.ReferenceType,
			RefId:      input.ReferenceId,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	})

	// Ledger page, newest first.
	r.GET("/stock/entries", func(c *gin.Context) {
		filter := models.LedgerFilter{
			EntryType: c.Query("entry_type"),
		}
		if v := c.Query("item_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item_id"})
				return
			}
			filter.ItemId = id
		}
		if v := c.Query("location_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location_id"})
				return
			}
			filter.LocationId = id
		}
		if valueIds, err := queryIntList(c, "attribute_value_id"); err == nil && len(valueIds) > 0 {
			key := models.ResolveVariantKey(valueIds)
			filter.VariantKey = &key
		}
		if v := c.Query("limit"); v != "" {
			filter.Limit, _ = strconv.Atoi(v)
		}
		if v := c.Query("offset"); v != "" {
			filter.Offset, _ = strconv.Atoi(v)
		}

		entries, err := models.GetLedgerEntries(st.DB(), c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	})

	// Current balance of one bucket. Attribute value ids arrive as a
	// repeated query param and are canonicalized server side.
	r.GET("/stock/balance", func(c *gin.Context) {
		itemId, err := strconv.Atoi(c.Query("item_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
			return
		}
		locationId, err := strconv.Atoi(c.Query("location_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "location_id is required"})
			return
		}
		valueIds, err := queryIntList(c, "attribute_value_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attribute_value_id"})
			return
		}

		key := models.BalanceKey{
			ItemId:     itemId,
			LocationId: locationId,
			VariantKey: models.ResolveVariantKey(valueIds),
		}
		qty, err := stock.GetBalance(c.Request.Context(), key)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"item_id":     key.ItemId,
			"location_id": key.LocationId,
			"variant_key": key.VariantKey,
			"qty":         qty,
		})
	})

	// All non-zero balances, optionally per location.
	r.GET("/stock/balances", func(c *gin.Context) {
		locationId := 0
		if v := c.Query("location_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location_id"})
				return
			}
			locationId = id
		}
		balances, err := models.GetNonZeroBalances(st.DB(), c.Request.Context(), locationId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, balances)
	})

	// Batch lookup for many buckets in one round trip.
	r.POST("/stock/balances/batch", func(c *gin.Context) {
		var input struct {
			Requests []struct {
				ItemId            int   `json:"item_id" binding:"required"`
				LocationId        int   `json:"location_id" binding:"required"`
				AttributeValueIds []int `json:"attribute_value_ids"`
			} `json:"requests" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		keys := make([]models.BalanceKey, 0, len(input.Requests))
		for _, req := range input.Requests {
			keys = append(keys, models.BalanceKey{
				ItemId:     req.ItemId,
				LocationId: req.LocationId,
				VariantKey: models.ResolveVariantKey(req.AttributeValueIds),
			})
		}
		balances, err := stock.GetBatchBalances(c.Request.Context(), keys)
		if err != nil {
			respondError(c, err)
			return
		}

		type balanceRow struct {
			ItemId     int             `json:"item_id"`
			LocationId int             `json:"location_id"`
			VariantKey string          `json:"variant_key"`
			Qty        decimal.Decimal `json:"qty"`
		}
		rows := make([]balanceRow, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, balanceRow{
				ItemId:     key.ItemId,
				LocationId: key.LocationId,
				VariantKey: key.VariantKey,
				Qty:        balances[key],
			})
		}
		c.JSON(http.StatusOK, rows)
	})
}

func queryIntList(c *gin.Context, name string) ([]int, error) {
	raw := c.QueryArray(name)
	ids := make([]int, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
