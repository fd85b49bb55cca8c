package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/eskept/pricing-engine/internal/http/response"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/repository"
	"github.com/eskept/pricing-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// AvailabilityRangeRequest addresses a span of products and days.
type AvailabilityRangeRequest struct {
	ProductIDs []uint `json:"product_ids" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

// SetAvailabilityRequest replaces a span with rules of one type.
type SetAvailabilityRequest struct {
	AvailabilityRangeRequest
	Type  string `json:"type" binding:"required"`
	Value int    `json:"value"`
}

// BlockAvailability zeroes capacity for the addressed span.
func (h *Handler) BlockAvailability(c *gin.Context) {
	var req AvailabilityRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	start, end, ok := h.parseRange(c, req)
	if !ok {
		return
	}

	rules, err := h.AvailabilityService.Block(c.Request.Context(), req.ProductIDs, start, end)
	if err != nil {
		h.respondAvailabilityError(c, err, "availability block failed")
		return
	}
	response.Success(c, gin.H{"created": len(rules), "rules": rules})
}

// UnblockAvailability removes every rule in the addressed span.
func (h *Handler) UnblockAvailability(c *gin.Context) {
	var req AvailabilityRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	start, end, ok := h.parseRange(c, req)
	if !ok {
		return
	}

	removed, err := h.AvailabilityService.Unblock(c.Request.Context(), req.ProductIDs, start, end)
	if err != nil {
		h.respondAvailabilityError(c, err, "availability unblock failed")
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// SetAvailability replaces the addressed span with rules of the given
// type and value.
func (h *Handler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	start, end, ok := h.parseRange(c, req.AvailabilityRangeRequest)
	if !ok {
		return
	}

	rules, err := h.AvailabilityService.SetCapacity(c.Request.Context(), req.ProductIDs, start, end, req.Type, req.Value)
	if err != nil {
		h.respondAvailabilityError(c, err, "availability set failed")
		return
	}
	response.Success(c, gin.H{"created": len(rules), "rules": rules})
}

// GetAvailabilityRules lists the raw per-day rules.
func (h *Handler) GetAvailabilityRules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	productID, _ := strconv.ParseUint(c.Query("product_id"), 10, 64)

	rules, total, err := h.AvailabilityService.List(repository.AvailabilityRuleListFilter{
		ProductID: uint(productID),
		Type:      c.Query("type"),
		Search:    c.Query("search"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "availability rule list failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, rules, pagination)
}

func (h *Handler) parseRange(c *gin.Context, req AvailabilityRangeRequest) (time.Time, time.Time, bool) {
	start, err := parseDay(req.StartDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad start_date", err)
		return time.Time{}, time.Time{}, false
	}
	end, err := parseDay(req.EndDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad end_date", err)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *Handler) respondAvailabilityError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrDateRangeInvalid):
		respondError(c, response.CodeBadRequest, "end date before start date", nil)
	case errors.Is(err, service.ErrAvailabilityRuleInvalid), errors.Is(err, models.ErrRuleConfigInvalid):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeBadRequest, "product not found", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}
