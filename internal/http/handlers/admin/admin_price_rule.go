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

// PriceRuleRequest is the create/update body for a price rule.
type PriceRuleRequest struct {
	Name            *string                 `json:"name"`
	Description     *string                 `json:"description"`
	AdjustmentType  *string                 `json:"adjustment_type"`
	AdjustmentValue *models.AdjustmentValue `json:"adjustment_value"`
	TimeRangeType   *string                 `json:"time_range_type"`
	TimeRangeValue  *models.TimeRangeValue  `json:"time_range_value"`
	IsActive        *bool                   `json:"is_active"`
	ProductIDs      *[]uint                 `json:"product_ids"`
}

func (r PriceRuleRequest) toInput() service.PriceRuleInput {
	return service.PriceRuleInput{
		Name:            r.Name,
		Description:     r.Description,
		AdjustmentType:  r.AdjustmentType,
		AdjustmentValue: r.AdjustmentValue,
		TimeRangeType:   r.TimeRangeType,
		TimeRangeValue:  r.TimeRangeValue,
		IsActive:        r.IsActive,
		ProductIDs:      r.ProductIDs,
	}
}

// CreatePriceRule creates a price rule.
func (h *Handler) CreatePriceRule(c *gin.Context) {
	var req PriceRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if req.Name == nil || req.AdjustmentType == nil || req.AdjustmentValue == nil ||
		req.TimeRangeType == nil || req.TimeRangeValue == nil {
		respondError(c, response.CodeBadRequest, "missing required rule fields", nil)
		return
	}

	rule, err := h.PriceRuleAdminService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRuleConfigInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeBadRequest, "scoped product not found", nil)
		default:
			respondError(c, response.CodeInternal, "price rule create failed", err)
		}
		return
	}
	response.Success(c, rule)
}

// UpdatePriceRule partially updates a price rule.
func (h *Handler) UpdatePriceRule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "bad rule id", nil)
		return
	}
	var req PriceRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	rule, err := h.PriceRuleAdminService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPriceRuleNotFound):
			respondError(c, response.CodeNotFound, "price rule not found", nil)
		case errors.Is(err, models.ErrRuleConfigInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeBadRequest, "scoped product not found", nil)
		default:
			respondError(c, response.CodeInternal, "price rule update failed", err)
		}
		return
	}
	response.Success(c, rule)
}

// SetPriceRuleActiveRequest toggles a rule.
type SetPriceRuleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetPriceRuleActive toggles a price rule on or off.
func (h *Handler) SetPriceRuleActive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "bad rule id", nil)
		return
	}
	var req SetPriceRuleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.PriceRuleAdminService.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		switch {
		case errors.Is(err, service.ErrPriceRuleNotFound):
			respondError(c, response.CodeNotFound, "price rule not found", nil)
		default:
			respondError(c, response.CodeInternal, "price rule toggle failed", err)
		}
		return
	}
	response.Success(c, gin.H{"id": id, "is_active": *req.IsActive})
}

// DeletePriceRule soft-deletes a price rule.
func (h *Handler) DeletePriceRule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "bad rule id", nil)
		return
	}
	if err := h.PriceRuleAdminService.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrPriceRuleNotFound):
			respondError(c, response.CodeNotFound, "price rule not found", nil)
		default:
			respondError(c, response.CodeInternal, "price rule delete failed", err)
		}
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetPriceRule fetches one price rule with its product scope.
func (h *Handler) GetPriceRule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "bad rule id", nil)
		return
	}
	rule, err := h.PriceRuleAdminService.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPriceRuleNotFound):
			respondError(c, response.CodeNotFound, "price rule not found", nil)
		default:
			respondError(c, response.CodeInternal, "price rule fetch failed", err)
		}
		return
	}
	response.Success(c, rule)
}

// GetPriceRules lists price rules.
func (h *Handler) GetPriceRules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "bad is_active", err)
			return
		}
		isActive = &parsed
	}

	rules, total, err := h.PriceRuleAdminService.List(repository.PriceRuleListFilter{
		Search:         c.Query("search"),
		AdjustmentType: c.Query("adjustment_type"),
		TimeRangeType:  c.Query("time_range_type"),
		IsActive:       isActive,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "price rule list failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, rules, pagination)
}

// PreviewPrice resolves a product's price at an arbitrary instant,
// bypassing the cache.
func (h *Handler) PreviewPrice(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "bad product_id", err)
		return
	}
	at := time.Now()
	if parsed, err := parseTimeNullable(c.Query("at")); err != nil {
		respondError(c, response.CodeBadRequest, "bad at timestamp", err)
		return
	} else if parsed != nil {
		at = *parsed
	}

	price, err := h.PriceRuleAdminService.PreviewPrice(uint(productID), at)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "price preview failed", err)
		}
		return
	}
	response.Success(c, price)
}

// PreviewRuleRequest carries a draft rule and the product/instant to
// test it against.
type PreviewRuleRequest struct {
	ProductID uint             `json:"product_id" binding:"required"`
	At        *time.Time       `json:"at"`
	Rule      PriceRuleRequest `json:"rule" binding:"required"`
}

// PreviewRule applies a draft rule to a product without saving it.
func (h *Handler) PreviewRule(c *gin.Context) {
	var req PreviewRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	price, err := h.PriceRuleAdminService.PreviewRule(req.ProductID, req.Rule.toInput(), at)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(err, models.ErrRuleConfigInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrRuleNotInEffect):
			respondError(c, response.CodeBadRequest, "rule not in effect at the given instant", nil)
		default:
			respondError(c, response.CodeInternal, "rule preview failed", err)
		}
		return
	}
	response.Success(c, price)
}
