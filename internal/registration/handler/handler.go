// Package handler wires the registration service to its HTTP routes.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ballot/internal/registration/models"
	"ballot/internal/registration/service"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/httputil"
	"ballot/pkg/requestcontext"
)

// Service defines the registration operations the transport depends on.
type Service interface {
	CreateEvent(ctx context.Context, p service.CreateEventParams) (*models.Event, error)
	GetEvent(ctx context.Context, eventID int64) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	EventsByOrganizer(ctx context.Context, organizerDeviceID string) ([]models.Event, error)
	DeleteEvent(ctx context.Context, eventID int64) error

	JoinWaitlist(ctx context.Context, eventID int64, deviceID string) error
	LeaveWaitlist(ctx context.Context, eventID int64, deviceID string) error
	EntrantStatus(ctx context.Context, eventID int64, deviceID string) (models.Status, error)

	Draw(ctx context.Context, eventID int64, sampleSize int) (*service.DrawResult, error)
	AcceptInvite(ctx context.Context, eventID int64, deviceID string) error
	DeclineInvite(ctx context.Context, eventID int64, deviceID string) error
	CancelInvite(ctx context.Context, eventID int64, deviceID string) error

	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, deviceID string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, deviceID string) error

	CreateNotification(ctx context.Context, p service.CreateNotificationParams) (*models.Notification, error)
	GetNotification(ctx context.Context, id int64) (*models.Notification, error)
	DismissNotification(ctx context.Context, id int64) error
	NotificationsForUser(ctx context.Context, deviceID string) ([]models.Notification, error)
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, id int64) error
}

// Handler wires registration endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.HandleCreateEvent)
		r.Get("/", h.HandleListEvents)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", h.HandleGetEvent)
			r.Post("/waitlist", h.HandleJoinWaitlist)
			r.Delete("/waitlist/{deviceID}", h.HandleLeaveWaitlist)
			r.Post("/draw", h.HandleDraw)
			r.Post("/invitation/{deviceID}/accept", h.HandleAcceptInvite)
			r.Post("/invitation/{deviceID}/decline", h.HandleDeclineInvite)
			r.Delete("/invitation/{deviceID}", h.HandleCancelInvite)
			r.Get("/entrants/{deviceID}/status", h.HandleEntrantStatus)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.HandleRegisterUser)
		r.Route("/{deviceID}", func(r chi.Router) {
			r.Get("/", h.HandleGetUser)
			r.Get("/events", h.HandleEventsByOrganizer)
			r.Get("/notifications", h.HandleNotificationsForUser)
		})
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Post("/", h.HandleCreateNotification)
		r.Get("/{notificationID}", h.HandleGetNotification)
		r.Post("/{notificationID}/dismiss", h.HandleDismissNotification)
	})
}

// RegisterAdmin mounts the administrative endpoints. The caller is expected to
// wrap this group with the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/events", h.HandleListEvents)
	r.Delete("/events/{eventID}", h.HandleDeleteEvent)
	r.Get("/users", h.HandleListUsers)
	r.Delete("/users/{deviceID}", h.HandleDeleteUser)
	r.Get("/notifications", h.HandleListNotifications)
	r.Delete("/notifications/{notificationID}", h.HandleDeleteNotification)
}

func eventIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid event ID")
	}
	return id, nil
}

func notificationIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid notification ID")
	}
	return id, nil
}

// HandleCreateEvent handles POST /events.
func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event, err := h.service.CreateEvent(ctx, req.Params())
	if err != nil {
		h.logger.ErrorContext(ctx, "event creation failed",
			"request_id", requestID,
			"organizer", req.OrganizerDeviceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "event created",
		"request_id", requestID,
		"event_id", event.ID,
		"organizer", event.OrganizerDeviceID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromEvent(event))
}

// HandleListEvents handles GET /events.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleGetEvent handles GET /events/{eventID}.
func (h *Handler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvent(event))
}

// HandleDeleteEvent handles DELETE /admin/events/{eventID}.
func (h *Handler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteEvent(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "event deleted",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", id,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleJoinWaitlist handles POST /events/{eventID}/waitlist.
func (h *Handler) HandleJoinWaitlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[JoinWaitlistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.JoinWaitlist(ctx, id, req.DeviceID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "entrant joined waitlist",
		"request_id", requestID,
		"event_id", id,
		"device_id", req.DeviceID,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleLeaveWaitlist handles DELETE /events/{eventID}/waitlist/{deviceID}.
func (h *Handler) HandleLeaveWaitlist(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deviceID := chi.URLParam(r, "deviceID")
	if err := h.service.LeaveWaitlist(r.Context(), id, deviceID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDraw handles POST /events/{eventID}/draw.
func (h *Handler) HandleDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DrawRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Draw(ctx, id, req.SampleSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "draw failed",
			"request_id", requestID,
			"event_id", id,
			"sample_size", req.SampleSize,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "draw completed",
		"request_id", requestID,
		"event_id", id,
		"selected", len(result.Selected),
		"remaining", len(result.Remaining),
	)
	httputil.WriteJSON(w, http.StatusOK, FromDrawResult(result))
}

// HandleAcceptInvite handles POST /events/{eventID}/invitation/{deviceID}/accept.
func (h *Handler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	h.resolveInvitation(w, r, h.service.AcceptInvite)
}

// HandleDeclineInvite handles POST /events/{eventID}/invitation/{deviceID}/decline.
func (h *Handler) HandleDeclineInvite(w http.ResponseWriter, r *http.Request) {
	h.resolveInvitation(w, r, h.service.DeclineInvite)
}

// HandleCancelInvite handles DELETE /events/{eventID}/invitation/{deviceID}.
func (h *Handler) HandleCancelInvite(w http.ResponseWriter, r *http.Request) {
	h.resolveInvitation(w, r, h.service.CancelInvite)
}

func (h *Handler) resolveInvitation(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, string) error) {
	id, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deviceID := chi.URLParam(r, "deviceID")
	if err := op(r.Context(), id, deviceID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEntrantStatus handles GET /events/{eventID}/entrants/{deviceID}/status.
func (h *Handler) HandleEntrantStatus(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deviceID := chi.URLParam(r, "deviceID")
	status, err := h.service.EntrantStatus(r.Context(), id, deviceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		EventID:  id,
		DeviceID: deviceID,
		Status:   string(status),
	})
}

// HandleRegisterUser handles POST /users.
func (h *Handler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.RegisterUser(ctx, req.User())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"device_id", user.DeviceID,
		"user_type", user.Type,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromUser(user))
}

// HandleGetUser handles GET /users/{deviceID}.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUser(user))
}

// HandleListUsers handles GET /admin/users.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUsers(users))
}

// HandleDeleteUser handles DELETE /admin/users/{deviceID}. For organizers
// this cascades to their events.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := chi.URLParam(r, "deviceID")
	if err := h.service.DeleteUser(ctx, deviceID); err != nil {
		h.logger.ErrorContext(ctx, "user deletion failed",
			"request_id", requestcontext.RequestID(ctx),
			"device_id", deviceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEventsByOrganizer handles GET /users/{deviceID}/events.
func (h *Handler) HandleEventsByOrganizer(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.EventsByOrganizer(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleNotificationsForUser handles GET /users/{deviceID}/notifications.
func (h *Handler) HandleNotificationsForUser(w http.ResponseWriter, r *http.Request) {
	ns, err := h.service.NotificationsForUser(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromNotifications(ns))
}

// HandleCreateNotification handles POST /notifications.
func (h *Handler) HandleCreateNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateNotificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	n, err := h.service.CreateNotification(ctx, req.Params())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromNotification(n))
}

// HandleGetNotification handles GET /notifications/{notificationID}.
func (h *Handler) HandleGetNotification(w http.ResponseWriter, r *http.Request) {
	id, err := notificationIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	n, err := h.service.GetNotification(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromNotification(n))
}

// HandleDismissNotification handles POST /notifications/{notificationID}/dismiss.
func (h *Handler) HandleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := notificationIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DismissNotification(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListNotifications handles GET /admin/notifications.
func (h *Handler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.service.ListNotifications(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromNotifications(ns))
}

// HandleDeleteNotification handles DELETE /admin/notifications/{notificationID}.
func (h *Handler) HandleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := notificationIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteNotification(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
