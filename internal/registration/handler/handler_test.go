package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"ballot/internal/docstore"
	"ballot/internal/platform/config"
	"ballot/internal/registration/service"
	"ballot/internal/registration/store"
	"ballot/internal/sequence"
	"ballot/pkg/platform/middleware/admin"
)

const testAdminToken = "test-admin-token"

type HandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *service.Service
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	docs := docstore.NewMemory()
	cols := config.DefaultCollections()
	allocator := sequence.NewDocstore(docs, cols.Extras)
	s.Require().NoError(allocator.Seed(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	svc, err := service.New(
		store.NewEvents(docs, cols),
		store.NewUsers(docs, cols),
		store.NewNotifications(docs, cols),
		allocator,
		service.WithLogger(logger),
	)
	s.Require().NoError(err)
	s.service = svc

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(testAdminToken, logger))
		h.RegisterAdmin(r)
	})
	s.router = r
}

func (s *HandlerSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	s.T().Helper()
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.T().Helper()
	s.Require().NoError(json.NewDecoder(w.Body).Decode(v))
}

func (s *HandlerSuite) createEvent() int64 {
	s.T().Helper()
	w := s.do(http.MethodPost, "/events", map[string]any{
		"name":                "spring gala",
		"organizer_device_id": "org-1",
		"registration_start":  "2020-01-01",
		"registration_end":    "2099-12-31",
	}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	var resp EventResponse
	s.decode(w, &resp)
	return resp.ID
}

func (s *HandlerSuite) TestCreateEvent() {
	s.Run("returns the created event with its QR payload", func() {
		id := s.createEvent()
		w := s.do(http.MethodGet, fmt.Sprintf("/events/%d", id), nil, nil)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp EventResponse
		s.decode(w, &resp)
		s.Equal(fmt.Sprintf("EVENT:%d", id), resp.QRPayload)
		s.Equal("org-1", resp.OrganizerDeviceID)
	})

	s.Run("rejects a missing name", func() {
		w := s.do(http.MethodPost, "/events", map[string]any{
			"organizer_device_id": "org-1",
		}, nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects malformed JSON", func() {
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString("{nope"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestWaitlistFlow() {
	id := s.createEvent()

	w := s.do(http.MethodPost, fmt.Sprintf("/events/%d/waitlist", id), map[string]any{
		"device_id": "dev-1",
	}, nil)
	s.Require().Equal(http.StatusNoContent, w.Code)

	s.Run("status reflects the join", func() {
		w := s.do(http.MethodGet, fmt.Sprintf("/events/%d/entrants/dev-1/status", id), nil, nil)
		s.Require().Equal(http.StatusOK, w.Code)
		var resp StatusResponse
		s.decode(w, &resp)
		s.Equal("WAITLISTED", resp.Status)
	})

	s.Run("duplicate join conflicts", func() {
		w := s.do(http.MethodPost, fmt.Sprintf("/events/%d/waitlist", id), map[string]any{
			"device_id": "dev-1",
		}, nil)
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("leave resets the status", func() {
		w := s.do(http.MethodDelete, fmt.Sprintf("/events/%d/waitlist/dev-1", id), nil, nil)
		s.Require().Equal(http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, fmt.Sprintf("/events/%d/entrants/dev-1/status", id), nil, nil)
		var resp StatusResponse
		s.decode(w, &resp)
		s.Equal("NONE", resp.Status)
	})
}

func (s *HandlerSuite) TestDrawAndInvitations() {
	id := s.createEvent()
	for _, device := range []string{"dev-1", "dev-2", "dev-3"} {
		w := s.do(http.MethodPost, fmt.Sprintf("/events/%d/waitlist", id), map[string]any{
			"device_id": device,
		}, nil)
		s.Require().Equal(http.StatusNoContent, w.Code)
	}

	w := s.do(http.MethodPost, fmt.Sprintf("/events/%d/draw", id), map[string]any{
		"sample_size": 2,
	}, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var draw DrawResponse
	s.decode(w, &draw)
	s.Require().Len(draw.Selected, 2)
	s.Require().Len(draw.Remaining, 1)

	winner := draw.Selected[0].DeviceID
	s.Run("winner accepts", func() {
		w := s.do(http.MethodPost, fmt.Sprintf("/events/%d/invitation/%s/accept", id, winner), nil, nil)
		s.Require().Equal(http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, fmt.Sprintf("/events/%d/entrants/%s/status", id, winner), nil, nil)
		var resp StatusResponse
		s.decode(w, &resp)
		s.Equal("ACCEPTED", resp.Status)
	})

	s.Run("non-invited entrant cannot accept", func() {
		loser := draw.Remaining[0].DeviceID
		w := s.do(http.MethodPost, fmt.Sprintf("/events/%d/invitation/%s/accept", id, loser), nil, nil)
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("draw with empty waitlist conflicts", func() {
		empty := s.createEvent()
		w := s.do(http.MethodPost, fmt.Sprintf("/events/%d/draw", empty), map[string]any{
			"sample_size": 1,
		}, nil)
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("draw notifications reach the entrants", func() {
		w := s.do(http.MethodGet, "/users/"+winner+"/notifications", nil, nil)
		s.Require().Equal(http.StatusOK, w.Code)
		var ns []NotificationResponse
		s.decode(w, &ns)
		s.Require().NotEmpty(ns)
		s.Equal("You've been selected", ns[0].Header)
	})
}

func (s *HandlerSuite) TestUserEndpoints() {
	w := s.do(http.MethodPost, "/users", map[string]any{
		"user_type":  "ENTRANT",
		"first_name": "Ada",
	}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	var user UserResponse
	s.decode(w, &user)
	s.NotEmpty(user.DeviceID)

	s.Run("fetch round-trips", func() {
		w := s.do(http.MethodGet, "/users/"+user.DeviceID, nil, nil)
		s.Require().Equal(http.StatusOK, w.Code)
		var got UserResponse
		s.decode(w, &got)
		s.Equal("ENTRANT", got.UserType)
	})

	s.Run("unknown user type is rejected", func() {
		w := s.do(http.MethodPost, "/users", map[string]any{"user_type": "WIZARD"}, nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("missing user is 404", func() {
		w := s.do(http.MethodGet, "/users/nobody", nil, nil)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *HandlerSuite) TestAdminGating() {
	id := s.createEvent()
	path := fmt.Sprintf("/admin/events/%d", id)

	s.Run("no token is unauthorized", func() {
		w := s.do(http.MethodDelete, path, nil, nil)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("wrong token is unauthorized", func() {
		w := s.do(http.MethodDelete, path, nil, map[string]string{"X-Admin-Token": "nope"})
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("valid token deletes", func() {
		w := s.do(http.MethodDelete, path, nil, map[string]string{"X-Admin-Token": testAdminToken})
		s.Require().Equal(http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, fmt.Sprintf("/events/%d", id), nil, nil)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *HandlerSuite) TestOrganizerCascadeOverHTTP() {
	w := s.do(http.MethodPost, "/users", map[string]any{
		"device_id": "org-1",
		"user_type": "ORGANIZER",
	}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	owned := s.createEvent()

	w = s.do(http.MethodDelete, "/admin/users/org-1", nil, map[string]string{"X-Admin-Token": testAdminToken})
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/events/%d", owned), nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
}
