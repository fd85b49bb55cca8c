package admin

import (
	"time"

	"github.com/eskept/pricing-engine/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PrecomputePricesRequest optionally narrows a manual recompute.
type PrecomputePricesRequest struct {
	ProductIDs []uint `json:"product_ids"`
}

// PrecomputePrices runs a price recompute synchronously. Admins use it
// to refresh the cache without waiting for the scheduler tick.
func (h *Handler) PrecomputePrices(c *gin.Context) {
	var req PrecomputePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	ctx := c.Request.Context()
	now := time.Now()
	var err error
	if len(req.ProductIDs) > 0 {
		err = h.PrecomputeService.RunForProducts(ctx, req.ProductIDs, now)
	} else {
		err = h.PrecomputeService.RunFull(ctx, now)
	}
	if err != nil {
		respondError(c, response.CodeInternal, "price precompute failed", err)
		return
	}
	requestLog(c).Infow("manual_price_precompute", "products", len(req.ProductIDs))
	response.Success(c, gin.H{"recomputed": true})
}

// PrecomputeAvailabilityRequest addresses a manual availability refresh.
type PrecomputeAvailabilityRequest struct {
	ProductIDs []uint `json:"product_ids" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

// PrecomputeAvailability recomputes and caches the availability grid.
func (h *Handler) PrecomputeAvailability(c *gin.Context) {
	var req PrecomputeAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	start, end, ok := h.parseRange(c, AvailabilityRangeRequest{
		ProductIDs: req.ProductIDs,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
	if !ok {
		return
	}

	entries, err := h.PrecomputeService.RunAvailability(c.Request.Context(), req.ProductIDs, start, end)
	if err != nil {
		h.respondAvailabilityError(c, err, "availability precompute failed")
		return
	}
	response.Success(c, gin.H{"entries": len(entries)})
}
