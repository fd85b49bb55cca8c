package public

import (
	"errors"
	"time"

	"github.com/eskept/pricing-engine/internal/constants"
	"github.com/eskept/pricing-engine/internal/http/response"
	"github.com/eskept/pricing-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAvailability serves the availability grid for a set of products
// over a date range, grouped by calendar day.
func (h *Handler) GetAvailability(c *gin.Context) {
	ids, err := parseProductIDs(c.Query("product_ids"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad product_ids", err)
		return
	}
	if len(ids) == 0 {
		respondError(c, response.CodeBadRequest, "product_ids required", nil)
		return
	}

	start, err := time.Parse(constants.DayFormat, c.Query("start_date"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad start_date", err)
		return
	}
	end, err := time.Parse(constants.DayFormat, c.Query("end_date"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad end_date", err)
		return
	}

	entries, err := h.PrecomputeService.GetAvailability(c.Request.Context(), ids, start, end)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDateRangeInvalid):
			respondError(c, response.CodeBadRequest, "end date before start date", nil)
		default:
			respondError(c, response.CodeInternal, "availability fetch failed", err)
		}
		return
	}
	response.Success(c, service.GroupAvailabilityByDay(entries))
}
