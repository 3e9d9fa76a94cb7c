package scheduling

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wellbee/wellbee/internal/platform/auth"
	"github.com/wellbee/wellbee/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.BookAppointment)
	api.GET("/appointments", h.ListAppointments)
	api.PATCH("/appointments", h.UpdateStatus)
	api.POST("/video/create-room", h.CreateRoom)
	api.GET("/doctors/:id/slots", h.AvailableSlots)
}

const dateLayout = "2006-01-02"

type bookRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	TimeSlot TimeSlot  `json:"time_slot"`
	Symptoms *string   `json:"symptoms,omitempty"`
	Type     Type      `json:"type,omitempty"`
}

func (h *Handler) BookAppointment(c echo.Context) error {
	principal, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DoctorID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, &ValidationError{Reason: "doctor_id is required"})
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, &ValidationError{Reason: "date must be YYYY-MM-DD"})
	}

	a, err := h.svc.BookAppointment(c.Request().Context(), principal, BookRequest{
		DoctorID: req.DoctorID,
		Date:     date,
		Slot:     req.TimeSlot,
		Symptoms: req.Symptoms,
		Type:     req.Type,
	})
	if err != nil {
		return schedulingError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	principal, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	var (
		items []*Appointment
		total int
		err   error
	)
	switch {
	case c.QueryParam("doctor_id") != "":
		var doctorID uuid.UUID
		doctorID, err = uuid.Parse(c.QueryParam("doctor_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		items, total, err = h.svc.ListByDoctor(ctx, doctorID, pg.Limit, pg.Offset)
	case c.QueryParam("user_id") != "":
		var patientID uuid.UUID
		patientID, err = uuid.Parse(c.QueryParam("user_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		items, total, err = h.svc.ListByPatient(ctx, patientID, pg.Limit, pg.Offset)
	default:
		// No explicit filter: list the caller's own appointments.
		var selfID uuid.UUID
		selfID, err = uuid.Parse(principal.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid principal")
		}
		if principal.IsDoctor() {
			items, total, err = h.svc.ListByDoctor(ctx, selfID, pg.Limit, pg.Offset)
		} else {
			items, total, err = h.svc.ListByPatient(ctx, selfID, pg.Limit, pg.Offset)
		}
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type statusRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Status        Status    `json:"status"`
	Rating        *int      `json:"rating,omitempty"`
	Review        *string   `json:"review,omitempty"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	principal, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.AppointmentID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, &ValidationError{Reason: "appointment_id is required"})
	}

	a, err := h.svc.UpdateStatus(c.Request().Context(), principal, req.AppointmentID, StatusUpdate{
		Status: req.Status,
		Score:  req.Rating,
		Review: req.Review,
	})
	if err != nil {
		return schedulingError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type createRoomRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
}

type createRoomResponse struct {
	MeetingLink string       `json:"meeting_link"`
	Appointment *Appointment `json:"appointment"`
}

func (h *Handler) CreateRoom(c echo.Context) error {
	principal, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.AppointmentID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, &ValidationError{Reason: "appointment_id is required"})
	}

	a, err := h.svc.StartVideoCall(c.Request().Context(), principal, req.AppointmentID)
	if err != nil {
		return schedulingError(err)
	}
	return c.JSON(http.StatusOK, createRoomResponse{
		MeetingLink: *a.MeetingLink,
		Appointment: a,
	})
}

func (h *Handler) AvailableSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := time.Parse(dateLayout, c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, &ValidationError{Reason: "date must be YYYY-MM-DD"})
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return schedulingError(err)
	}
	if slots == nil {
		slots = []TimeSlot{}
	}
	return c.JSON(http.StatusOK, map[string]any{"date": c.QueryParam("date"), "slots": slots})
}

// schedulingError maps service errors onto HTTP status codes. Validation
// failures echo the violated constraint so the client can re-render the
// booking form.
func schedulingError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr)
	case errors.Is(err, ErrDayFullyBooked):
		return echo.NewHTTPError(http.StatusBadRequest, &ValidationError{Reason: ReasonDayFullyBooked})
	case errors.Is(err, ErrSlotTaken):
		return echo.NewHTTPError(http.StatusBadRequest, &ValidationError{Reason: ReasonSlotTaken})
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidTransition.Error())
	case errors.Is(err, ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, ErrUnauthorized.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrDoctorNotFound.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
