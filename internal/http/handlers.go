package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/tourinfo/internal/adapters/crdb"
	mongoadapter "github.com/robertarktes/tourinfo/internal/adapters/mongo"
	"github.com/robertarktes/tourinfo/internal/config"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/feed"
	"github.com/robertarktes/tourinfo/internal/idempotency"
	"github.com/robertarktes/tourinfo/internal/orchestrator"
	"github.com/robertarktes/tourinfo/internal/poller"
	"github.com/robertarktes/tourinfo/internal/stats"
)

type Handlers struct {
	cfg     *config.Config
	repo    *crdb.Repository
	catalog *mongoadapter.ServiceCatalog
	feed    *feed.Feed
	orch    *orchestrator.Orchestrator
	stats   *stats.Aggregator
	poller  *poller.Poller
	idemp   *idempotency.Idempotency
}

func NewHandlers(cfg *config.Config, repo *crdb.Repository, catalog *mongoadapter.ServiceCatalog, f *feed.Feed, orch *orchestrator.Orchestrator, agg *stats.Aggregator, p *poller.Poller, idemp *idempotency.Idempotency) *Handlers {
	return &Handlers{
		cfg:     cfg,
		repo:    repo,
		catalog: catalog,
		feed:    f,
		orch:    orch,
		stats:   agg,
		poller:  p,
		idemp:   idemp,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{"code": code, "message": msg},
	})
}

func reservationJSON(rec domain.Reservation) map[string]interface{} {
	return map[string]interface{}{
		"id":             rec.ID,
		"name":           rec.Name,
		"email":          rec.Email,
		"phone":          rec.Phone,
		"service_id":     rec.ServiceID,
		"service_name":   rec.ServiceName,
		"scheduled_at":   rec.ScheduledAt.Format(time.RFC3339),
		"participants":   rec.Participants,
		"notes":          rec.Notes,
		"status":         rec.Status,
		"payment_status": rec.PaymentStatus,
		"created_at":     rec.CreatedAt.Format(time.RFC3339),
	}
}

// CreateReservation persists the record and, only after the write commits,
// hands it to the orchestrator. Fan-out is fire-and-forget: the response
// does not wait on any notification or email.
func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		Phone        string    `json:"phone"`
		ServiceID    uuid.UUID `json:"service_id"`
		ScheduledAt  time.Time `json:"scheduled_at"`
		Participants int       `json:"participants"`
		Notes        string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	svc, err := h.catalog.GetService(r.Context(), req.ServiceID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "SERVICE_NOT_FOUND", "service not found")
		return
	}
	if err != nil {
		h.writeBackendError(w, err)
		return
	}

	rec := domain.NewReservation(req.Name, req.Email, req.Phone, svc.ID, svc.Name, req.ScheduledAt, req.Participants, req.Notes)
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "missing or invalid required fields")
		return
	}

	err = h.repo.WithTx(r.Context(), func(tx pgx.Tx) error {
		return h.repo.CreateReservation(r.Context(), tx, rec)
	})
	if errors.Is(err, domain.ErrSerializationFailure) {
		writeError(w, http.StatusConflict, "CONFLICT", "conflict, try again")
		return
	}
	if err != nil {
		h.writeBackendError(w, err)
		return
	}

	data, _ := json.Marshal(map[string]interface{}{"data": reservationJSON(rec)})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(data)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})

	h.orch.ReservationCreated(rec)
}

func (h *Handlers) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid id")
		return
	}

	var req struct {
		Status        domain.ReservationStatus `json:"status"`
		PaymentStatus domain.PaymentStatus     `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status")
		return
	}
	if req.PaymentStatus != "" && !domain.ValidPaymentStatus(req.PaymentStatus) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown payment status")
		return
	}

	before, err := h.repo.GetReservation(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "reservation not found")
		return
	}
	if err != nil {
		h.writeBackendError(w, err)
		return
	}

	if req.Status != "" {
		if err := h.repo.UpdateReservationStatus(r.Context(), id, req.Status); err != nil {
			h.writeBackendError(w, err)
			return
		}
	}
	if req.PaymentStatus != "" {
		if err := h.repo.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus); err != nil {
			h.writeBackendError(w, err)
			return
		}
	}

	after, err := h.repo.GetReservation(r.Context(), id)
	if err != nil {
		h.writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": reservationJSON(*after)})

	if req.Status != "" && req.Status != before.Status {
		h.orch.ReservationUpdated(*after, before.Status)
	}
}

func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid id")
		return
	}

	rec, err := h.repo.GetReservation(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "reservation not found")
		return
	}
	if err != nil {
		h.writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": reservationJSON(*rec)})
}

// Stats always answers within the configured deadline with whatever the
// aggregator settled; timed_out tells the dashboard to show an advisory.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	snap := h.stats.Aggregate(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":        snap.Values,
		"failed":       snap.Failed,
		"timed_out":    snap.TimedOut,
		"generated_at": snap.GeneratedAt.Format(time.RFC3339),
	})
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	entries := h.feed.List()
	out := make([]map[string]interface{}, 0, len(entries))
	for _, n := range entries {
		out = append(out, map[string]interface{}{
			"id":         n.ID,
			"type":       n.Type,
			"title":      n.Title,
			"message":    n.Message,
			"is_read":    n.IsRead,
			"created_at": n.CreatedAt.Format(time.RFC3339),
			"metadata":   n.Metadata,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (h *Handlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"unread": h.feed.UnreadCount()})
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid id")
		return
	}
	h.feed.MarkRead(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid id")
		return
	}
	h.feed.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// AdminNotices serves the poller's snapshot, which is possibly empty when
// the backing store has been unreachable past the retry budget.
func (h *Handlers) AdminNotices(w http.ResponseWriter, r *http.Request) {
	notices, degraded := h.poller.Snapshot()
	out := make([]map[string]interface{}, 0, len(notices))
	for _, n := range notices {
		out = append(out, map[string]interface{}{
			"id":         n.ID,
			"type":       n.Type,
			"title":      n.Title,
			"message":    n.Message,
			"is_read":    n.IsRead,
			"created_at": n.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out, "degraded": degraded})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func (h *Handlers) writeBackendError(w http.ResponseWriter, err error) {
	if domain.IsConnectionError(err) {
		writeError(w, http.StatusServiceUnavailable, "CONNECTION_ERROR", "backend temporarily unreachable, try again")
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
}
