package public

import (
	"errors"
	"strconv"
	"time"

	"github.com/eskept/pricing-engine/internal/http/response"
	"github.com/eskept/pricing-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPrice serves one product's resolved price from the cache.
func (h *Handler) GetPrice(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "bad product id", err)
		return
	}

	price, err := h.PrecomputeService.GetAppliedPrice(c.Request.Context(), uint(productID), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "price fetch failed", err)
		}
		return
	}
	response.Success(c, price)
}

// GetPrices serves resolved prices for a set of products, or for the
// whole catalog when product_ids is omitted.
func (h *Handler) GetPrices(c *gin.Context) {
	ids, err := parseProductIDs(c.Query("product_ids"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad product_ids", err)
		return
	}
	if len(ids) == 0 {
		ids, err = h.ProductRepo.ListIDs()
		if err != nil {
			respondError(c, response.CodeInternal, "price fetch failed", err)
			return
		}
	}

	prices, err := h.PrecomputeService.GetAppliedPrices(c.Request.Context(), ids, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "price fetch failed", err)
		return
	}
	response.Success(c, prices)
}
