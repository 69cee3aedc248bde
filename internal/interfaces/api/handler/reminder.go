package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"medreminder/internal/application/dto"
	"medreminder/internal/application/service"
	"medreminder/internal/domain/entity"
	"medreminder/internal/domain/recurrence"
	"medreminder/internal/infrastructure/catalog"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReminderHandler serves the reminder REST API.
type ReminderHandler struct {
	reminderService service.ReminderService
	model           *recurrence.Model
	catalog         *catalog.Catalog
	log             logger.Logger
	now             func() time.Time
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(
	reminderService service.ReminderService,
	model *recurrence.Model,
	medCatalog *catalog.Catalog,
	log logger.Logger,
) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		model:           model,
		catalog:         medCatalog,
		log:             log,
		now:             time.Now,
	}
}

// Catalog returns the medication catalog.
func (h *ReminderHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog)
}

// List returns all reminders sorted by time.
func (h *ReminderHandler) List(c echo.Context) error {
	reminders, err := h.reminderService.ListReminders(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err, nil)
	}
	return c.JSON(http.StatusOK, dto.ToReminderResponseList(reminders, h.model, h.now()))
}

// Get returns a single reminder with its detail fields.
func (h *ReminderHandler) Get(c echo.Context) error {
	id := c.Param("id")
	reminder, err := h.reminderService.GetReminder(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err, nil)
	}
	return c.JSON(http.StatusOK, dto.ToReminderResponse(*reminder, h.model.DescribeOccurrence(*reminder, h.now())))
}

// Create validates and registers a new reminder.
func (h *ReminderHandler) Create(c echo.Context) error {
	var req dto.CreateReminderRequest
	if err := c.Bind(&req); err != nil {
		h.log.Warn(fmt.Sprintf("Invalid create reminder body: %v", err))
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Solicitud inválida"})
	}

	reminder, err := h.reminderService.CreateReminder(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err, nil)
	}
	return c.JSON(http.StatusCreated, dto.ToReminderResponse(*reminder, h.model.DescribeOccurrence(*reminder, h.now())))
}

// Delete removes a reminder and returns the remaining collection.
func (h *ReminderHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	reminders, err := h.reminderService.DeleteReminder(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err, reminders)
	}
	return c.JSON(http.StatusOK, dto.ToReminderResponseList(reminders, h.model, h.now()))
}

// errorResponse maps service errors to HTTP status codes. A non-nil
// reminders slice is the reloaded collection after a failed delete.
func (h *ReminderHandler) errorResponse(c echo.Context, err error, reminders []entity.Reminder) error {
	var ve *appErrors.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, appErrors.ErrReminderNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: appErrors.ErrReminderNotFound.Error()})
	}

	h.log.Error(fmt.Sprintf("Request %s %s failed", c.Request().Method, c.Request().URL.Path), err)
	resp := dto.ErrorResponse{Error: publicMessage(err)}
	if reminders != nil {
		resp.Reminders = dto.ToReminderResponseList(reminders, h.model, h.now())
	}
	return c.JSON(http.StatusInternalServerError, resp)
}

// publicMessage picks the user-facing message for an internal failure.
func publicMessage(err error) string {
	for _, known := range []error{appErrors.ErrScheduling, appErrors.ErrPersistence, appErrors.ErrCorruptStore} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return appErrors.ErrInternalServer.Error()
}
