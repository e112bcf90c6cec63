package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/controller"
	"github.com/ukydev/maintenance-tracker/internal/maintenance"
	"github.com/ukydev/maintenance-tracker/internal/middleware"
)

const maxBodyBytes = 1 << 20

// MaintenanceHandler exposes the signed-in user's controller over HTTP
type MaintenanceHandler struct {
	registry *controller.Registry
	logger   *log.Entry
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(registry *controller.Registry, logger *log.Entry) *MaintenanceHandler {
	return &MaintenanceHandler{
		registry: registry,
		logger:   logger,
	}
}

type errorResponse struct {
	Error    string                       `json:"error,omitempty"`
	Errors   maintenance.ValidationErrors `json:"errors,omitempty"`
	Snapshot *controller.Snapshot         `json:"snapshot,omitempty"`
}

type statusResponse struct {
	VehicleID *string            `json:"vehicle_id,omitempty"`
	Status    maintenance.Status `json:"status"`
}

// GetSession returns the current snapshot, loading it on first use
func (h *MaintenanceHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// Reload refetches the user's vehicles and the active vehicle's history
func (h *MaintenanceHandler) Reload(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := c.Load(r.Context())
	h.respond(w, snap, err)
}

// CreateVehicle handles onboarding and additional vehicles
func (h *MaintenanceHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := c.CreateVehicle(r.Context(), req.input())
	if err == nil {
		writeJSON(w, http.StatusCreated, snap)
		return
	}
	h.respond(w, snap, err)
}

// EditVehicle updates name, category and mileage of a vehicle
func (h *MaintenanceHandler) EditVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := c.EditVehicle(r.Context(), chi.URLParam(r, "vehicleID"), req.input())
	h.respond(w, snap, err)
}

// SelectVehicle makes a vehicle the active one
func (h *MaintenanceHandler) SelectVehicle(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := c.SelectVehicle(r.Context(), chi.URLParam(r, "vehicleID"))
	h.respond(w, snap, err)
}

// UpdateMileage sets the active vehicle's odometer reading
func (h *MaintenanceHandler) UpdateMileage(w http.ResponseWriter, r *http.Request) {
	var req mileageRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := c.UpdateMileage(r.Context(), string(req.Mileage))
	h.respond(w, snap, err)
}

// AddServiceRecord records a completed service on the active vehicle
func (h *MaintenanceHandler) AddServiceRecord(w http.ResponseWriter, r *http.Request) {
	var req serviceRecordRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	result, err := c.AddServiceRecord(r.Context(), req.input())
	if err == nil {
		writeJSON(w, http.StatusCreated, result)
		return
	}
	h.respond(w, result.Snapshot, err)
}

// GetStatus returns only the active vehicle's due-status
func (h *MaintenanceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap := c.Snapshot()
	resp := statusResponse{Status: snap.Status}
	if snap.Vehicle != nil {
		resp.VehicleID = &snap.Vehicle.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDefaults returns form defaults and option lists
func (h *MaintenanceHandler) GetDefaults(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, maintenance.Defaults())
}

// controller returns the request user's controller. A first load that fails
// still yields the controller; its snapshot carries the error state.
func (h *MaintenanceHandler) controller(w http.ResponseWriter, r *http.Request) (*controller.Controller, bool) {
	session := middleware.SessionFromContext(r.Context())
	c, err := h.registry.Get(r.Context(), session)
	if errors.Is(err, controller.ErrSignedOut) {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return nil, false
	}
	return c, true
}

func (h *MaintenanceHandler) respond(w http.ResponseWriter, snap controller.Snapshot, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}

	var verrs maintenance.ValidationErrors
	var remote *controller.RemoteError
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Errors: verrs})
	case errors.Is(err, controller.ErrBusy):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Snapshot: &snap})
	case errors.Is(err, controller.ErrNoActiveVehicle):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Snapshot: &snap})
	case errors.Is(err, controller.ErrVehicleNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, controller.ErrSignedOut):
		http.Error(w, "Authentication required", http.StatusUnauthorized)
	case errors.As(err, &remote):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: controller.RetryMessage, Snapshot: &snap})
	default:
		h.logger.WithError(err).Error("Unhandled controller error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
