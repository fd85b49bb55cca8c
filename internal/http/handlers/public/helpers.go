package public

import (
	"strconv"
	"strings"

	handlershared "github.com/eskept/pricing-engine/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// parseProductIDs parses a comma-separated product_ids query value.
func parseProductIDs(raw string) ([]uint, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			return nil, strconv.ErrSyntax
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
