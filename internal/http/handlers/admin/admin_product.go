package admin

import (
	"errors"
	"strconv"

	"github.com/eskept/pricing-engine/internal/http/response"
	"github.com/eskept/pricing-engine/internal/models"
	"github.com/eskept/pricing-engine/internal/repository"
	"github.com/eskept/pricing-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest is the create/update body for a product.
type ProductRequest struct {
	Name         *string       `json:"name"`
	CodeName     *string       `json:"code_name"`
	Status       *string       `json:"status"`
	ServiceType  *string       `json:"service_type"`
	Unit         *string       `json:"unit"`
	MaxQuantity  *int          `json:"max_quantity"`
	BasePriceVND *models.Money `json:"base_price_vnd"`
	BasePriceUSD *models.Money `json:"base_price_usd"`
	Description  *string       `json:"description"`
	ImageURL     *string       `json:"image_url"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:         r.Name,
		CodeName:     r.CodeName,
		Status:       r.Status,
		ServiceType:  r.ServiceType,
		Unit:         r.Unit,
		MaxQuantity:  r.MaxQuantity,
		BasePriceVND: r.BasePriceVND,
		BasePriceUSD: r.BasePriceUSD,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
	}
}

// CreateProduct creates a product.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductInvalid):
			respondError(c, response.CodeBadRequest, "product invalid", nil)
		default:
			respondError(c, response.CodeInternal, "product create failed", err)
		}
		return
	}
	response.Success(c, product)
}

// UpdateProduct partially updates a product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "bad product id", nil)
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(err, service.ErrProductInvalid):
			respondError(c, response.CodeBadRequest, "product invalid", nil)
		default:
			respondError(c, response.CodeInternal, "product update failed", err)
		}
		return
	}
	response.Success(c, product)
}

// DeleteProduct soft-deletes a product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "bad product id", nil)
		return
	}
	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "product delete failed", err)
		}
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetProduct fetches one product.
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "bad product id", nil)
		return
	}
	product, err := h.ProductService.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "product fetch failed", err)
		}
		return
	}
	response.Success(c, product)
}

// GetProducts lists products.
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		ServiceType: c.Query("service_type"),
		Status:      c.Query("status"),
		Search:      c.Query("search"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}
