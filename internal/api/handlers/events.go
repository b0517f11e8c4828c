package handlers

import (
	"context"
	"net/http"

	"github.com/planora-events/server/internal/api/envelope"
	"github.com/planora-events/server/internal/audit"
	"github.com/planora-events/server/internal/auth"
	"github.com/planora-events/server/internal/domain/events"
)

type EventService interface {
	List(ctx context.Context) ([]events.Event, error)
	Get(ctx context.Context, id string) (*events.Event, error)
	Create(ctx context.Context, input events.CreateInput, actor auth.Identity) (*events.Event, error)
	Update(ctx context.Context, id string, input events.UpdateInput, actor auth.Identity) (*events.Event, error)
	Delete(ctx context.Context, id string, actor auth.Identity) error
}

type EventsHandler struct {
	Service     EventService
	Audit       *audit.Logger
	Development bool
}

func NewEventsHandler(service EventService, auditLog *audit.Logger, development bool) *EventsHandler {
	return &EventsHandler{Service: service, Audit: auditLog, Development: development}
}

type listResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Data    []events.Event `json:"data"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Development)
		return
	}
	envelope.JSON(w, http.StatusOK, listResponse{Success: true, Count: len(items), Data: items})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.Development)
		return
	}
	envelope.Data(w, http.StatusOK, event)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.CreateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Development)
		return
	}

	actor := auth.IdentityFromContext(r.Context())
	event, err := h.Service.Create(r.Context(), input, actor)
	if err != nil {
		writeError(w, r, err, h.Development)
		return
	}
	h.logAction(r, "event.create", actor, event.ID)
	envelope.Data(w, http.StatusCreated, event)
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input events.UpdateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Development)
		return
	}

	actor := auth.IdentityFromContext(r.Context())
	event, err := h.Service.Update(r.Context(), r.PathValue("id"), input, actor)
	if err != nil {
		writeError(w, r, err, h.Development)
		return
	}
	h.logAction(r, "event.update", actor, event.ID)
	envelope.Data(w, http.StatusOK, event)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	actor := auth.IdentityFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), id, actor); err != nil {
		writeError(w, r, err, h.Development)
		return
	}
	h.logAction(r, "event.delete", actor, id)
	envelope.Message(w, http.StatusOK, "Event deleted successfully")
}

func (h *EventsHandler) logAction(r *http.Request, action string, actor auth.Identity, id string) {
	h.Audit.LogFromRequest(r, audit.Entry{Action: action, AdminID: actor.AdminID, ResourceType: "event", ResourceID: id})
}
