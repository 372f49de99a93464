package placement

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
)

// 10MB is generous for a placement spreadsheet
const maxSpreadsheetSize = 10 * 1024 * 1024

// UploadPlacements handles POST /api/v1/placements/upload (admin only).
// Rows are matched to existing records by (student_code, year): matches are
// updated in place, everything else is inserted. Rows that fail to parse are
// reported back with their row number but never abort the import.
func (h *PlacementHandler) UploadPlacements(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	name := strings.ToLower(file.Filename)
	if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xlsm") {
		return response.BadRequest(c, "Only .xlsx spreadsheets are supported")
	}
	if file.Size > maxSpreadsheetSize {
		return response.BadRequest(c, "Spreadsheet exceeds the maximum allowed size of 10MB")
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to open file")
	}
	defer src.Close()

	rows, err := services.ParseWorkbook(src)
	if err != nil {
		return response.BadRequest(c, "Failed to read spreadsheet: "+err.Error())
	}

	result, err := h.importService.Import(c.Context(), rows, user)
	if err != nil {
		if errors.Is(err, services.ErrNoHeaderRow) {
			return response.BadRequest(c, "Spreadsheet has no header row")
		}
		if errors.Is(err, services.ErrMissingColumns) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to import placements")
	}

	h.activityService.Record(c.Context(), model.ActivityPlacementImported,
		"Placement spreadsheet imported", user.ID, "placements", 0,
		map[string]interface{}{
			"file_name": file.Filename,
			"inserted":  result.Inserted,
			"updated":   result.Updated,
			"errors":    len(result.Errors),
		})

	return response.Success(c, result)
}
