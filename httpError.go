package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// respondError maps the error taxonomy onto HTTP statuses:
// not found 404, conflicts 409, caller mistakes 400, everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsDuplicateCode(err), utils.IsIntegrityConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case utils.IsInsufficientStock(err),
		utils.IsInvalidTransition(err),
		errors.Is(err, utils.ErrorInvalidStatus),
		errors.Is(err, utils.ErrorZeroQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id := 0
	if err := pathIdInto(c, &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func pathIdInto(c *gin.Context, out *int) error {
	var uri struct {
		Id int `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		return err
	}
	*out = uri.Id
	return nil
}
