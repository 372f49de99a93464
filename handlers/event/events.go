package event

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"github.com/sahilchouksey/campus-portal-api/utils/validation"
	"gorm.io/gorm"
)

// EventHandler handles event-related requests
type EventHandler struct {
	db              *gorm.DB
	validator       *validation.Validator
	eventService    *services.EventService
	activityService *services.ActivityService
}

// NewEventHandler creates a new event handler
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		db:              db,
		validator:       validation.NewValidator(),
		eventService:    services.NewEventService(db),
		activityService: services.NewActivityService(db),
	}
}

// CreateEventRequest represents the request body for creating an event
type CreateEventRequest struct {
	Title           string    `json:"title" validate:"required,min=3,max=255"`
	Description     string    `json:"description" validate:"omitempty,max=5000"`
	Date            time.Time `json:"date" validate:"required"`
	Venue           string    `json:"venue" validate:"omitempty,max=255"`
	MaxParticipants int       `json:"max_participants" validate:"omitempty,min=0"`
}

// UpdateStatusRequest represents the request body for approving/rejecting an event
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// UpdateCapacityRequest represents the request body for changing event capacity
type UpdateCapacityRequest struct {
	MaxParticipants int `json:"max_participants" validate:"min=0"`
}

// ListEvents handles GET /api/v1/events.
// Students and faculty see approved and completed events; admins see everything.
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	query := h.db.Model(&model.Event{})

	if user.Role != model.RoleAdmin {
		query = query.Where(
			"status IN ? OR organizer_id = ?",
			[]model.EventStatus{model.EventStatusApproved, model.EventStatusCompleted},
			user.ID,
		)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.Query("upcoming") == "true" {
		query = query.Where("date >= ?", time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count events")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var events []model.Event
	if err := query.Preload("Organizer").
		Order("date ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch events")
	}

	return response.Paginated(c, events, pagination)
}

// GetEvent handles GET /api/v1/events/:id
func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var event model.Event
	if err := h.db.Preload("Organizer").First(&event, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to fetch event")
	}

	// Pending and rejected events are only visible to the organizer and admins
	if event.Status != model.EventStatusApproved && event.Status != model.EventStatusCompleted {
		if user.Role != model.RoleAdmin && event.OrganizerID != user.ID {
			return response.NotFound(c, "Event not found")
		}
	}

	count, err := h.eventService.RegistrationCount(c.Context(), event.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch registrations")
	}

	return response.Success(c, fiber.Map{
		"event":              event,
		"registration_count": count,
	})
}

// CreateEvent handles POST /api/v1/events. New events start out pending
// and need admin approval before students can register.
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.Date.Before(time.Now()) {
		return response.BadRequest(c, "Event date must be in the future")
	}

	event := model.Event{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Venue:           req.Venue,
		OrganizerID:     user.ID,
		Status:          model.EventStatusPending,
		MaxParticipants: req.MaxParticipants,
	}

	// Admin-created events skip the approval queue
	if user.Role == model.RoleAdmin {
		event.Status = model.EventStatusApproved
	}

	if err := h.db.Create(&event).Error; err != nil {
		return response.InternalServerError(c, "Failed to create event")
	}

	h.activityService.Record(c.Context(), model.ActivityEventCreated,
		"Event created: "+event.Title, user.ID, "events", event.ID, nil)

	return response.Created(c, event)
}

// UpdateStatus handles PATCH /api/v1/events/:id/status (admin only)
func (h *EventHandler) UpdateStatus(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}

	event, err := h.eventService.SetStatus(c.Context(), uint(eventID), model.EventStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return response.NotFound(c, "Event not found")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "This status change is not allowed")
		}
		return response.InternalServerError(c, "Failed to update event status")
	}

	h.activityService.Record(c.Context(), model.ActivityEventStatusChange,
		"Event "+event.Title+" marked "+req.Status, user.ID, "events", event.ID,
		map[string]interface{}{"status": req.Status})

	return response.Success(c, event)
}

// UpdateCapacity handles PATCH /api/v1/events/:id/capacity.
// Capacity can never drop below the current registration count.
func (h *EventHandler) UpdateCapacity(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req UpdateCapacityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}

	var event model.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to fetch event")
	}
	if user.Role != model.RoleAdmin && event.OrganizerID != user.ID {
		return response.Forbidden(c, "You do not manage this event")
	}

	if err := h.eventService.UpdateCapacity(c.Context(), uint(eventID), req.MaxParticipants); err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return response.NotFound(c, "Event not found")
		case errors.Is(err, services.ErrCapacityBelowCurrent):
			return response.Conflict(c, "Capacity cannot be lowered below the current registration count")
		}
		return response.InternalServerError(c, "Failed to update capacity")
	}

	return response.SuccessWithMessage(c, "Capacity updated", nil)
}

// Register handles POST /api/v1/events/:id/register (students only)
func (h *EventHandler) Register(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}

	if err := h.eventService.Register(c.Context(), uint(eventID), user.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return response.NotFound(c, "Event not found")
		case errors.Is(err, services.ErrEventNotOpen):
			return response.BadRequest(c, "Event is not open for registration")
		case errors.Is(err, services.ErrEventFull):
			return response.Conflict(c, "Event has reached maximum participants")
		case errors.Is(err, services.ErrAlreadyRegistered):
			return response.Conflict(c, "Already registered for this event")
		}
		return response.InternalServerError(c, "Failed to register for event")
	}

	h.activityService.Record(c.Context(), model.ActivityEventRegistered,
		"Registered for event", user.ID, "events", uint(eventID), nil)

	return response.SuccessWithMessage(c, "Registered successfully", nil)
}

// Unregister handles DELETE /api/v1/events/:id/register
func (h *EventHandler) Unregister(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}

	if err := h.eventService.Unregister(c.Context(), uint(eventID), user.ID); err != nil {
		if errors.Is(err, services.ErrNotRegistered) {
			return response.NotFound(c, "Not registered for this event")
		}
		return response.InternalServerError(c, "Failed to unregister from event")
	}

	return response.SuccessWithMessage(c, "Unregistered successfully", nil)
}

// ListRegistrations handles GET /api/v1/events/:id/registrations
// (organizer or admin only)
func (h *EventHandler) ListRegistrations(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var event model.Event
	if err := h.db.First(&event, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to fetch event")
	}
	if user.Role != model.RoleAdmin && event.OrganizerID != user.ID {
		return response.Forbidden(c, "You do not manage this event")
	}

	var registrations []model.EventRegistration
	if err := h.db.Preload("Student").
		Where("event_id = ?", event.ID).
		Find(&registrations).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch registrations")
	}

	return response.Success(c, fiber.Map{
		"event_id": event.ID,
		"count":    len(registrations),
		"students": registrations,
	})
}

// DeleteEvent handles DELETE /api/v1/events/:id (organizer or admin)
func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var event model.Event
	if err := h.db.First(&event, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to fetch event")
	}
	if user.Role != model.RoleAdmin && event.OrganizerID != user.ID {
		return response.Forbidden(c, "You do not manage this event")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&model.EventRegistration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete event")
	}

	return response.SuccessWithMessage(c, "Event deleted successfully", nil)
}
