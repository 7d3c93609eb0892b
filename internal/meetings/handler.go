package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/customers"
	httpmiddleware "github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/http/middleware"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

// BookingService is the surface the handler calls.
type BookingService interface {
	Book(ctx context.Context, params BookParams) (*BookResult, error)
}

// Handler handles the book-proposed-meeting HTTP endpoint.
type Handler struct {
	svc    BookingService
	logger *logging.Logger
}

// NewHandler creates a meetings handler.
func NewHandler(svc BookingService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

type bookRequest struct {
	MeetingID string `json:"meetingId"`
	Code      string `json:"code"`
}

// Book handles POST /book-proposed-meeting.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpmiddleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "authentication required"})
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	if req.MeetingID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "missing required field: meetingId"})
		return
	}

	result, err := h.svc.Book(r.Context(), BookParams{
		MeetingID:   req.MeetingID,
		Code:        req.Code,
		AuthSubject: principal.Subject,
	})
	if err != nil {
		status := bookErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("meeting booking failed", "error", err, "meeting_id", req.MeetingID)
		}
		writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"appointmentId": result.AppointmentID,
		"meetingId":     result.MeetingID,
	})
}

func bookErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingMeetingTimes):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotEligible), errors.Is(err, customers.ErrCustomerNotFound):
		return http.StatusForbidden
	case errors.Is(err, ErrMeetingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMeetingUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
