package placement

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services"
	"github.com/sahilchouksey/campus-portal-api/utils/dberrors"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"github.com/sahilchouksey/campus-portal-api/utils/validation"
	"gorm.io/gorm"
)

// PlacementHandler handles placement-related requests
type PlacementHandler struct {
	db               *gorm.DB
	validator        *validation.Validator
	placementService *services.PlacementService
	importService    *services.PlacementImportService
	activityService  *services.ActivityService
}

// NewPlacementHandler creates a new placement handler
func NewPlacementHandler(db *gorm.DB) *PlacementHandler {
	return &PlacementHandler{
		db:               db,
		validator:        validation.NewValidator(),
		placementService: services.NewPlacementService(db),
		importService:    services.NewPlacementImportService(db),
		activityService:  services.NewActivityService(db),
	}
}

// CreatePlacementRequest represents the request body for adding a placement
type CreatePlacementRequest struct {
	StudentCode     string  `json:"student_code" validate:"required,usercode"`
	CompanyName     string  `json:"company_name" validate:"required,min=1,max=255"`
	Package         float64 `json:"package" validate:"required,gt=0"`
	YearOfPlacement int     `json:"year_of_placement" validate:"omitempty,min=2000,max=2100"`
	Role            string  `json:"role" validate:"omitempty,max=100"`
	Type            string  `json:"type" validate:"omitempty,oneof=campus off-campus"`
}

// ListPlacements handles GET /api/v1/placements
func (h *PlacementHandler) ListPlacements(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	year, _ := strconv.Atoi(c.Query("year", "0"))

	placements, total, err := h.placementService.List(c.Context(), services.ListPlacementsOptions{
		Year:       year,
		Department: c.Query("department"),
		Company:    c.Query("company"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch placements")
	}

	return response.Paginated(c, placements, response.CalculatePagination(page, limit, total))
}

// GetStats handles GET /api/v1/placements/stats
func (h *PlacementHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.placementService.Stats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute placement statistics")
	}
	return response.Success(c, stats)
}

// CreatePlacement handles POST /api/v1/placements (admin only).
// The student is looked up by their user code, not by database ID.
func (h *PlacementHandler) CreatePlacement(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreatePlacementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.User
	if err := h.db.Where("user_code = ? AND role = ?", req.StudentCode, model.RoleStudent).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "No student with this user code")
		}
		return response.InternalServerError(c, "Failed to look up student")
	}

	year := req.YearOfPlacement
	if year == 0 {
		year = time.Now().Year()
	}

	placementType := model.PlacementType(req.Type)
	if placementType == "" {
		placementType = model.PlacementTypeCampus
	}

	placement := model.Placement{
		StudentCode:     student.UserCode,
		StudentName:     student.Name,
		CompanyName:     req.CompanyName,
		Package:         req.Package,
		YearOfPlacement: year,
		Department:      student.Department,
		Role:            req.Role,
		Type:            placementType,
		AddedByID:       user.ID,
	}

	if err := h.db.Create(&placement).Error; err != nil {
		if dberrors.IsUniqueViolation(err) {
			return response.Conflict(c, "A placement for this student and year already exists")
		}
		return response.InternalServerError(c, "Failed to create placement")
	}

	h.activityService.Record(c.Context(), model.ActivityPlacementAdded,
		"Placement added for "+placement.StudentCode, user.ID, "placements", placement.ID,
		map[string]interface{}{"company": placement.CompanyName, "year": placement.YearOfPlacement})

	return response.Created(c, placement)
}

// DeletePlacement handles DELETE /api/v1/placements/:id (admin only)
func (h *PlacementHandler) DeletePlacement(c *fiber.Ctx) error {
	var placement model.Placement
	if err := h.db.First(&placement, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Placement not found")
		}
		return response.InternalServerError(c, "Failed to fetch placement")
	}

	if err := h.db.Delete(&placement).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete placement")
	}

	return response.SuccessWithMessage(c, "Placement deleted successfully", nil)
}
