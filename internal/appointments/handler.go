package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/customers"
	httpmiddleware "github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/http/middleware"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/scheduling"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

// PlacementService is the surface the handler calls.
type PlacementService interface {
	Reserve(ctx context.Context, params ReserveParams) (*Appointment, string, error)
	Move(ctx context.Context, params MoveParams) (*Appointment, error)
	DaySchedule(ctx context.Context, date string) ([]Appointment, error)
}

// Handler handles the reserve/move/schedule HTTP endpoints.
type Handler struct {
	svc    PlacementService
	logger *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(svc PlacementService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

type reserveRequest struct {
	ServiceID       string `json:"serviceId"`
	TreatmentID     string `json:"treatmentId"` // legacy alias for serviceId
	CustomerID      string `json:"customerId"`
	Date            string `json:"date"`
	StationID       string `json:"stationId"`
	StartTime       string `json:"startTime"`
	Notes           string `json:"notes"`
	AppointmentKind string `json:"appointmentKind"`
	AppointmentName string `json:"appointmentName"`
}

// Reserve handles POST /reserve-appointment.
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}

	serviceID := req.ServiceID
	if serviceID == "" {
		serviceID = req.TreatmentID
	}
	var authSubject string
	if principal, ok := httpmiddleware.PrincipalFromContext(r.Context()); ok {
		authSubject = principal.Subject
	}

	appt, message, err := h.svc.Reserve(r.Context(), ReserveParams{
		ServiceID:   serviceID,
		CustomerID:  req.CustomerID,
		AuthSubject: authSubject,
		Date:        req.Date,
		StartTime:   req.StartTime,
		StationID:   req.StationID,
		Notes:       req.Notes,
		Kind:        req.AppointmentKind,
		Name:        req.AppointmentName,
	})
	if err != nil {
		status := reserveErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("reservation failed", "error", err, "service_id", serviceID)
		}
		writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": message, "data": appt})
}

func reserveErrorStatus(err error) int {
	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing),
		errors.Is(err, scheduling.ErrInvalidDateTime),
		errors.Is(err, scheduling.ErrStationNotBookableRemotely):
		return http.StatusBadRequest
	case errors.Is(err, customers.ErrCustomerNotFound):
		// The caller exists but has no customer profile yet.
		return http.StatusForbidden
	case errors.Is(err, ErrSlotConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type moveRequest struct {
	AppointmentID   string `json:"appointmentId"`
	NewStationID    string `json:"newStationId"`
	NewStartTime    string `json:"newStartTime"`
	NewEndTime      string `json:"newEndTime"`
	OldStationID    string `json:"oldStationId"`
	OldStartTime    string `json:"oldStartTime"`
	OldEndTime      string `json:"oldEndTime"`
	AppointmentType string `json:"appointmentType"`

	NewGardenAppointmentType *string        `json:"newGardenAppointmentType"`
	NewGardenIsTrial         *bool          `json:"newGardenIsTrial"`
	SelectedHours            *selectedHours `json:"selectedHours"`
	GardenTrimNails          *bool          `json:"gardenTrimNails"`
	GardenBrush              *bool          `json:"gardenBrush"`
	GardenBath               *bool          `json:"gardenBath"`
	LatePickupRequested      *bool          `json:"latePickupRequested"`
	LatePickupNotes          *string        `json:"latePickupNotes"`
	InternalNotes            *string        `json:"internalNotes"`
}

type selectedHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Move handles POST /move-appointment. Its error envelope is the bare
// {"error": ...} shape existing callers depend on.
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	for _, f := range []struct{ name, value string }{
		{"appointmentId", req.AppointmentID},
		{"newStationId", req.NewStationID},
		{"newStartTime", req.NewStartTime},
		{"newEndTime", req.NewEndTime},
		{"oldStationId", req.OldStationID},
		{"oldStartTime", req.OldStartTime},
		{"oldEndTime", req.OldEndTime},
		{"appointmentType", req.AppointmentType},
	} {
		if f.value == "" {
			err := &MissingFieldError{Field: f.name}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
	}

	newStart, err := parseTimestamp(req.NewStartTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid newStartTime"})
		return
	}
	newEnd, err := parseTimestamp(req.NewEndTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid newEndTime"})
		return
	}
	oldStart, err := parseTimestamp(req.OldStartTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid oldStartTime"})
		return
	}
	oldEnd, err := parseTimestamp(req.OldEndTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid oldEndTime"})
		return
	}

	params := MoveParams{
		AppointmentID:         req.AppointmentID,
		NewStationID:          req.NewStationID,
		NewStartTime:          newStart,
		NewEndTime:            newEnd,
		OldStationID:          req.OldStationID,
		OldStartTime:          oldStart,
		OldEndTime:            oldEnd,
		AppointmentType:       req.AppointmentType,
		GardenAppointmentType: req.NewGardenAppointmentType,
		GardenIsTrial:         req.NewGardenIsTrial,
		GardenTrimNails:       req.GardenTrimNails,
		GardenBrush:           req.GardenBrush,
		GardenBath:            req.GardenBath,
		LatePickupRequested:   req.LatePickupRequested,
		LatePickupNotes:       req.LatePickupNotes,
		InternalNotes:         req.InternalNotes,
	}
	if req.SelectedHours != nil {
		params.SelectedHours = &HourSelection{Start: req.SelectedHours.Start, End: req.SelectedHours.End}
	}

	appt, err := h.svc.Move(r.Context(), params)
	if err != nil {
		status := moveErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("relocation failed", "error", err, "appointment_id", req.AppointmentID)
		}
		writeJSON(w, status, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Appointment moved successfully",
		"appointment": appt,
	})
}

func moveErrorStatus(err error) int {
	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing),
		errors.Is(err, ErrInvalidAppointmentType),
		errors.Is(err, scheduling.ErrInvalidDateTime):
		return http.StatusBadRequest
	case errors.Is(err, ErrAppointmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSlotConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Schedule handles GET /schedule?date=YYYY-MM-DD for the manager
// dashboard.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "missing date query parameter"})
		return
	}

	appts, err := h.svc.DaySchedule(r.Context(), date)
	if err != nil {
		if errors.Is(err, scheduling.ErrInvalidDateTime) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
			return
		}
		h.logger.Error("schedule read failed", "error", err, "date", date)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to load schedule"})
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "date": date, "appointments": appts})
}

func parseTimestamp(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
