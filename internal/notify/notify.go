// Package notify delivers best-effort "service recorded" notifications.
package notify

import (
	"context"
	"errors"
	"time"
)

// Permission is the process-wide notification permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

var ErrNotGranted = errors.New("notification permission not granted")

// Notification is the payload delivered to a user after a service record is saved.
type Notification struct {
	UserID            string    `json:"user_id"`
	VehicleID         string    `json:"vehicle_id"`
	Title             string    `json:"title"`
	Body              string    `json:"body"`
	NextChangeMileage int       `json:"next_change_mileage"`
	NextChangeDate    string    `json:"next_change_date"`
	NextChangeJalali  string    `json:"next_change_jalali,omitempty"`
	SentAt            time.Time `json:"sent_at"`
}

// Notifier is a permission-gated notification capability.
type Notifier interface {
	Permission() Permission
	// RequestPermission asks for permission once; later calls return the settled state.
	RequestPermission(ctx context.Context) Permission
	Notify(ctx context.Context, n Notification) error
}
