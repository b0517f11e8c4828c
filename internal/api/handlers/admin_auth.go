package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/planora-events/server/internal/api/envelope"
	"github.com/planora-events/server/internal/audit"
	"github.com/planora-events/server/internal/domain/admins"
)

type AdminService interface {
	Signup(ctx context.Context, input admins.SignupInput) (admins.PublicView, error)
	Login(ctx context.Context, input admins.LoginInput) (admins.LoginResult, error)
}

// AuthRecorder observes login outcomes.
type AuthRecorder interface {
	RecordAuth(kind, result string)
}

type AdminAuthHandler struct {
	Service     AdminService
	Recorder    AuthRecorder
	Audit       *audit.Logger
	Development bool
}

func NewAdminAuthHandler(service AdminService, recorder AuthRecorder, auditLog *audit.Logger, development bool) *AdminAuthHandler {
	return &AdminAuthHandler{Service: service, Recorder: recorder, Audit: auditLog, Development: development}
}

// Admin fields sit at the top level of both bodies, next to success.
type signupResponse struct {
	Success bool `json:"success"`
	admins.PublicView
}

type loginResponse struct {
	Success bool `json:"success"`
	admins.PublicView
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// Signup handles POST /api/admin/signup
func (h *AdminAuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input admins.SignupInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Development)
		return
	}

	view, err := h.Service.Signup(r.Context(), input)
	if err != nil {
		writeError(w, r, err, h.Development)
		return
	}
	h.Audit.LogFromRequest(r, audit.Entry{Action: "admin.signup", AdminID: view.ID})
	envelope.JSON(w, http.StatusCreated, signupResponse{Success: true, PublicView: view})
}

// Login handles POST /api/admin/login
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input admins.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Development)
		return
	}

	result, err := h.Service.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, admins.ErrInvalidCredentials) {
			h.record("invalid_credentials")
			h.Audit.LogFromRequest(r, audit.Entry{Action: "admin.login", Status: audit.StatusFailure})
		}
		writeError(w, r, err, h.Development)
		return
	}
	h.record("success")
	h.Audit.LogFromRequest(r, audit.Entry{Action: "admin.login", AdminID: result.Admin.ID})

	envelope.JSON(w, http.StatusOK, loginResponse{
		Success:    true,
		PublicView: result.Admin,
		Token:      result.Token,
		ExpiresAt:  result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AdminAuthHandler) record(result string) {
	if h.Recorder != nil {
		h.Recorder.RecordAuth("login", result)
	}
}
