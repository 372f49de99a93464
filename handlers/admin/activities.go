package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/services"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
)

// ListActivities handles GET /api/v1/admin/activities.
// The activity log is append-only; this is the only read surface.
func (h *AdminHandler) ListActivities(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	userID, _ := strconv.ParseUint(c.Query("user_id", "0"), 10, 32)

	activities, total, err := h.activityService.List(c.Context(), services.ListActivitiesOptions{
		Type:   c.Query("type"),
		UserID: uint(userID),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch activities")
	}

	return response.Paginated(c, activities, response.CalculatePagination(page, limit, total))
}
