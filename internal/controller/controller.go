// Package controller orchestrates one user's vehicles, service history and
// due-status on top of the remote store.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/calendar"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/logging"
	"github.com/ukydev/maintenance-tracker/internal/maintenance"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"github.com/ukydev/maintenance-tracker/internal/notify"
)

// State is the view state of a controller.
type State string

const (
	StateLoading   State = "loading"
	StateNoVehicle State = "no-vehicle"
	StateReady     State = "ready"
	StateError     State = "error"
)

// RetryMessage is shown to the user after a remote failure.
const RetryMessage = "Something went wrong while talking to the server. Please try again."

var (
	ErrBusy            = errors.New("another operation is in progress")
	ErrNoActiveVehicle = errors.New("no active vehicle")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrSignedOut       = errors.New("not signed in")
)

// RemoteError marks a failed store call. The message shown to users is
// RetryMessage; the cause is only logged.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Snapshot is a consistent view of the controller. Status is computed when the
// snapshot is taken.
type Snapshot struct {
	State    State                  `json:"state"`
	Busy     bool                   `json:"busy"`
	Error    string                 `json:"error,omitempty"`
	Vehicles []models.Vehicle       `json:"vehicles"`
	Vehicle  *models.Vehicle        `json:"vehicle,omitempty"`
	History  []HistoryEntry         `json:"history"`
	Status   maintenance.Status     `json:"status"`
}

// HistoryEntry is a stored service record with its dates formatted for
// display in both calendars.
type HistoryEntry struct {
	models.ServiceRecord
	DateText             string `json:"date_text"`
	DateJalali           string `json:"date_jalali"`
	NextChangeDateText   string `json:"next_change_date_text"`
	NextChangeDateJalali string `json:"next_change_date_jalali"`
}

func newHistoryEntry(r models.ServiceRecord) HistoryEntry {
	return HistoryEntry{
		ServiceRecord:        r,
		DateText:             maintenance.FormatDate(r.Date),
		DateJalali:           maintenance.FormatJalaliDate(r.Date),
		NextChangeDateText:   maintenance.FormatDate(r.NextChangeDate),
		NextChangeDateJalali: maintenance.FormatJalaliDate(r.NextChangeDate),
	}
}

// AddRecordResult is returned by AddServiceRecord. CalendarLink is empty when
// no link could be built.
type AddRecordResult struct {
	Snapshot     Snapshot             `json:"snapshot"`
	Record       models.ServiceRecord `json:"record"`
	CalendarLink string               `json:"calendar_link,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithNotifier enables notifications after a service record is saved.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the logger used for remote and side-effect failures.
func WithLogger(logger *log.Entry) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller serializes one user's operations. A call made while another is in
// flight fails with ErrBusy instead of waiting.
type Controller struct {
	session  Session
	vehicles db.VehicleCollection
	records  db.ServiceRecordCollection
	notifier notify.Notifier
	logger   *log.Entry
	now      func() time.Time

	mu          sync.Mutex
	busy        bool
	state       State
	errMsg      string
	vehicleList []models.Vehicle
	active      *models.Vehicle
	history     []models.ServiceRecord
}

// New creates a controller for session. Call Load before anything else.
func New(session Session, vehicles db.VehicleCollection, records db.ServiceRecordCollection, opts ...Option) *Controller {
	c := &Controller{
		session:  session,
		vehicles: vehicles,
		records:  records,
		logger:   logging.Discard(),
		now:      time.Now,
		state:    StateLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField("user_id", session.UserID)
	return c
}

// Session returns the session the controller was created with.
func (c *Controller) Session() Session {
	return c.session
}

// Snapshot returns the current view with a freshly computed status.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:    c.state,
		Busy:     c.busy,
		Error:    c.errMsg,
		Vehicles: append([]models.Vehicle{}, c.vehicleList...),
		History:  make([]HistoryEntry, 0, len(c.history)),
		Status:   maintenance.Status{Level: maintenance.LevelUnknown},
	}
	for _, r := range c.history {
		s.History = append(s.History, newHistoryEntry(r))
	}
	if c.active != nil {
		v := *c.active
		s.Vehicle = &v
		last := maintenance.LatestOilChange(c.history)
		s.Status = maintenance.ComputeStatus(v.CurrentMileage, last, c.now())
	}
	return s
}

// Load fetches the user's vehicles and the active vehicle's history. The
// current selection is kept if it still exists; otherwise the most recently
// created vehicle becomes active.
func (c *Controller) Load(ctx context.Context) (Snapshot, error) {
	err := c.run(func() error {
		return c.refresh(ctx, "load", c.activeID())
	})
	return c.Snapshot(), err
}

// SelectVehicle makes vehicleID the active vehicle.
func (c *Controller) SelectVehicle(ctx context.Context, vehicleID string) (Snapshot, error) {
	err := c.run(func() error {
		if _, err := c.vehicles.FindVehicleByID(ctx, c.session.UserID, vehicleID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return ErrVehicleNotFound
			}
			return c.fail("select vehicle", err)
		}
		return c.refresh(ctx, "select vehicle", vehicleID)
	})
	return c.Snapshot(), err
}

// CreateVehicle adds a vehicle and makes it active.
func (c *Controller) CreateVehicle(ctx context.Context, in maintenance.VehicleInput) (Snapshot, error) {
	err := c.run(func() error {
		vehicle, err := maintenance.BuildVehicle(c.session.UserID, in, c.now())
		if err != nil {
			return err
		}
		if err := c.vehicles.InsertVehicle(ctx, vehicle); err != nil {
			return c.fail("create vehicle", err)
		}

		c.logger.WithFields(log.Fields{
			"vehicle_id": vehicle.ID,
			"mileage":    vehicle.CurrentMileage,
		}).Info("Vehicle created")
		return c.refresh(ctx, "create vehicle", vehicle.ID)
	})
	return c.Snapshot(), err
}

// EditVehicle changes the name, category and mileage of one of the user's
// vehicles. The active selection is unchanged.
func (c *Controller) EditVehicle(ctx context.Context, vehicleID string, in maintenance.VehicleInput) (Snapshot, error) {
	err := c.run(func() error {
		update, err := maintenance.BuildVehicleUpdate(in, c.now())
		if err != nil {
			return err
		}
		if err := c.vehicles.UpdateVehicle(ctx, c.session.UserID, vehicleID, update); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return ErrVehicleNotFound
			}
			return c.fail("edit vehicle", err)
		}
		return c.refresh(ctx, "edit vehicle", c.activeID())
	})
	return c.Snapshot(), err
}

// UpdateMileage records a new odometer reading for the active vehicle.
func (c *Controller) UpdateMileage(ctx context.Context, mileage string) (Snapshot, error) {
	err := c.run(func() error {
		vehicleID := c.activeID()
		if vehicleID == "" {
			return ErrNoActiveVehicle
		}
		update, err := maintenance.BuildMileageUpdate(mileage, c.now())
		if err != nil {
			return err
		}
		if err := c.vehicles.UpdateVehicle(ctx, c.session.UserID, vehicleID, update); err != nil {
			return c.fail("update mileage", err)
		}
		return c.refresh(ctx, "update mileage", vehicleID)
	})
	return c.Snapshot(), err
}

// AddServiceRecord validates and stores a service record for the active
// vehicle, then sets the vehicle's mileage to the record's mileage. The
// mileage update is a separate call; its failure is logged and the record is
// kept. Notification and calendar link are best effort.
func (c *Controller) AddServiceRecord(ctx context.Context, in maintenance.ServiceRecordInput) (AddRecordResult, error) {
	var result AddRecordResult
	err := c.run(func() error {
		vehicle, ok := c.activeVehicle()
		if !ok {
			return ErrNoActiveVehicle
		}

		now := c.now()
		in.VehicleID = vehicle.ID
		record, err := maintenance.BuildServiceRecord(in, now)
		if err != nil {
			return err
		}
		if err := c.records.InsertServiceRecord(ctx, record); err != nil {
			return c.fail("add service record", err)
		}
		result.Record = record

		mileage := record.MileageAtChange
		update := models.VehicleUpdate{CurrentMileage: &mileage, LastUpdated: now}
		if err := c.vehicles.UpdateVehicle(ctx, c.session.UserID, vehicle.ID, update); err != nil {
			c.logger.WithError(err).WithFields(log.Fields{
				"vehicle_id": vehicle.ID,
				"record_id":  record.ID,
			}).Error("Failed to update vehicle mileage after service record")
		}

		c.logger.WithFields(log.Fields{
			"vehicle_id":   vehicle.ID,
			"record_id":    record.ID,
			"service_type": record.ServiceType,
			"next_mileage": record.NextChangeMileage,
		}).Info("Service record added")

		if err := c.refresh(ctx, "add service record", vehicle.ID); err != nil {
			return err
		}

		c.sendNotification(ctx, vehicle, record)
		if link, err := calendar.ReminderLink(vehicle.Name, record); err == nil {
			result.CalendarLink = link
		} else {
			c.logger.WithError(err).Debug("Calendar link skipped")
		}
		return nil
	})
	result.Snapshot = c.Snapshot()
	return result, err
}

// sendNotification sends the saved-record notification when permission is granted, and
// otherwise asks for permission unless it was denied.
func (c *Controller) sendNotification(ctx context.Context, vehicle models.Vehicle, record models.ServiceRecord) {
	if c.notifier == nil {
		return
	}

	switch c.notifier.Permission() {
	case notify.PermissionGranted:
		title := "Oil change recorded"
		if !record.IsOilChange() {
			title = "Service recorded"
		}
		err := c.notifier.Notify(ctx, notify.Notification{
			UserID:            c.session.UserID,
			VehicleID:         vehicle.ID,
			Title:             title,
			Body:              fmt.Sprintf("Next change at %d km", record.NextChangeMileage),
			NextChangeMileage: record.NextChangeMileage,
			NextChangeDate:    maintenance.FormatDate(record.NextChangeDate),
			NextChangeJalali:  maintenance.FormatJalaliDate(record.NextChangeDate),
			SentAt:            c.now(),
		})
		if err != nil {
			c.logger.WithError(err).Debug("Notification not delivered")
		}
	case notify.PermissionDenied:
	default:
		c.notifier.RequestPermission(ctx)
	}
}

// refresh refetches the vehicle list and the preferred vehicle's data and
// commits them together. Nothing is changed if any call fails.
func (c *Controller) refresh(ctx context.Context, op, preferredID string) error {
	vehicles, err := c.vehicles.FindVehiclesByOwner(ctx, c.session.UserID)
	if err != nil {
		return c.fail(op, err)
	}

	activeID := pickActive(vehicles, preferredID)
	var (
		active  *models.Vehicle
		history []models.ServiceRecord
	)
	if activeID != "" {
		active, err = c.vehicles.FindVehicleByID(ctx, c.session.UserID, activeID)
		if err != nil {
			return c.fail(op, err)
		}
		history, err = c.records.FindServiceRecordsByVehicle(ctx, activeID)
		if err != nil {
			return c.fail(op, err)
		}
	}

	// Stored instants come back in UTC; dates are shown in the clock's location.
	loc := c.now().Location()
	localVehicles := make([]models.Vehicle, len(vehicles))
	for i, v := range vehicles {
		localVehicles[i] = v.In(loc)
	}
	if active != nil {
		v := active.In(loc)
		active = &v
	}
	localHistory := make([]models.ServiceRecord, len(history))
	for i, r := range history {
		localHistory[i] = r.In(loc)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.vehicleList = localVehicles
	c.active = active
	c.history = localHistory
	c.errMsg = ""
	if active == nil {
		c.state = StateNoVehicle
	} else {
		c.state = StateReady
	}
	return nil
}

// pickActive returns preferredID when it is one of vehicles, else the most
// recently created vehicle. vehicles is ordered oldest first.
func pickActive(vehicles []models.Vehicle, preferredID string) string {
	if len(vehicles) == 0 {
		return ""
	}
	for _, v := range vehicles {
		if v.ID == preferredID {
			return preferredID
		}
	}
	return vehicles[len(vehicles)-1].ID
}

// fail logs a remote failure and moves to the error state, keeping all
// previously loaded data.
func (c *Controller) fail(op string, err error) error {
	c.logger.WithError(err).WithField("op", op).Error("Remote call failed")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateError
	c.errMsg = RetryMessage
	return &RemoteError{Op: op, Err: err}
}

func (c *Controller) activeID() string {
	v, _ := c.activeVehicle()
	return v.ID
}

func (c *Controller) activeVehicle() (models.Vehicle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return models.Vehicle{}, false
	}
	return *c.active, true
}

func (c *Controller) run(fn func() error) error {
	if !c.session.SignedIn || c.session.UserID == "" {
		return ErrSignedOut
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()
	return fn()
}
