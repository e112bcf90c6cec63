package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/controller"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/handlers"
	"github.com/ukydev/maintenance-tracker/internal/maintenance"
)

func newTestAPI(t *testing.T) (*httptest.Server, *auth.Service) {
	t.Helper()
	sqlite, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	tokens, err := auth.NewService("sim-secret", time.Hour)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	router := handlers.NewRouter(handlers.Options{
		Registry:    controller.NewRegistry(sqlite, sqlite, nil, nil),
		AuthService: tokens,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, tokens
}

func TestDriver_SetupCreatesVehicle(t *testing.T) {
	server, tokens := newTestAPI(t)
	token, _ := tokens.GenerateToken("sim-driver-1", "sim-driver-1")
	d := newDriver("sim-driver-1", newAPIClient(server.URL+"/api", token), 1)

	snap, err := d.setup(context.Background())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if snap.Vehicle == nil {
		t.Fatal("expected an active vehicle after setup")
	}
	if snap.Vehicle.CurrentMileage != d.mileage {
		t.Errorf("expected mileage %d, got %d", d.mileage, snap.Vehicle.CurrentMileage)
	}

	// a second setup reuses the vehicle
	again, err := d.setup(context.Background())
	if err != nil {
		t.Fatalf("second setup: %v", err)
	}
	if len(again.Vehicles) != 1 {
		t.Errorf("expected 1 vehicle, got %d", len(again.Vehicles))
	}
}

func TestDriver_StepRecordsOilChange(t *testing.T) {
	server, tokens := newTestAPI(t)
	token, _ := tokens.GenerateToken("sim-driver-2", "sim-driver-2")
	d := newDriver("sim-driver-2", newAPIClient(server.URL+"/api", token), 2)
	if _, err := d.setup(context.Background()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// no history yet, so the first step services the vehicle
	serviced, err := d.step(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !serviced {
		t.Error("expected an oil change on a vehicle with unknown status")
	}

	// the next day is well inside the interval
	serviced, err = d.step(context.Background(), time.Now().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if serviced {
		t.Error("did not expect a second oil change")
	}

	var snap controller.Snapshot
	if err := d.client.do(context.Background(), http.MethodGet, "/session", nil, &snap); err != nil {
		t.Fatalf("session: %v", err)
	}
	if len(snap.History) != 1 {
		t.Errorf("expected 1 record, got %d", len(snap.History))
	}
	if snap.Status.Level != maintenance.LevelGood {
		t.Errorf("expected good status, got %s", snap.Status.Level)
	}
}

func TestDriver_NextMileage(t *testing.T) {
	d := newDriver("sim", nil, 3)
	for i := 0; i < 100; i++ {
		before := d.mileage
		after := d.nextMileage()
		bounds := dailyKm[d.category]
		if diff := after - before; diff < bounds[0] || diff > bounds[1] {
			t.Fatalf("daily distance %d outside %v", diff, bounds)
		}
	}
}

func TestDriver_NeedsService(t *testing.T) {
	d := &driver{lateness: 200}
	tests := []struct {
		name   string
		status maintenance.Status
		want   bool
	}{
		{"unknown", maintenance.Status{Level: maintenance.LevelUnknown}, true},
		{"danger", maintenance.Status{Level: maintenance.LevelDanger}, true},
		{"good", maintenance.Status{Level: maintenance.LevelGood}, false},
		{"early warning", maintenance.Status{Level: maintenance.LevelWarning, Projection: &maintenance.Projection{KmRemaining: 900}}, false},
		{"late warning", maintenance.Status{Level: maintenance.LevelWarning, Projection: &maintenance.Projection{KmRemaining: 700}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.needsService(tt.status); got != tt.want {
				t.Errorf("needsService() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := newAPIClient(server.URL, "tok").do(context.Background(), http.MethodGet, "/session", nil, nil)
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apiError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", apiErr.Status)
	}
	if apiErr.Body != "Rate limit exceeded" {
		t.Errorf("unexpected body %q", apiErr.Body)
	}
}

func TestAPIClient_NetworkError(t *testing.T) {
	err := newAPIClient("http://127.0.0.1:1", "").do(context.Background(), http.MethodGet, "/session", nil, nil)
	if err == nil {
		t.Error("expected error for unreachable API")
	}
}

func TestLoadSimConfig(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test/api")
	t.Setenv("SIM_DRIVERS", "5")
	t.Setenv("SIM_TICK_SECONDS", "0")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("SIM_AUTH_TOKEN", "")

	cfg, err := loadSimConfig()
	if err != nil {
		t.Fatalf("loadSimConfig: %v", err)
	}
	if cfg.APIURL != "http://api.test/api" {
		t.Errorf("unexpected API URL %s", cfg.APIURL)
	}
	if cfg.Drivers != 5 {
		t.Errorf("expected 5 drivers, got %d", cfg.Drivers)
	}
	if cfg.Interval != 2*time.Second {
		t.Errorf("invalid tick should keep the default, got %s", cfg.Interval)
	}
	if cfg.JWTSecret != "s" {
		t.Errorf("expected JWT secret from env, got %q", cfg.JWTSecret)
	}
}

func TestLoadSimConfig_Defaults(t *testing.T) {
	for _, key := range []string{"API_BASE_URL", "SIM_DRIVERS", "SIM_TICK_SECONDS", "SIM_AUTH_TOKEN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := loadSimConfig()
	if err != nil {
		t.Fatalf("loadSimConfig: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080/api" {
		t.Errorf("unexpected API URL %s", cfg.APIURL)
	}
	if cfg.Drivers != 3 {
		t.Errorf("expected 3 drivers, got %d", cfg.Drivers)
	}
	if cfg.Interval != 2*time.Second {
		t.Errorf("expected 2s interval, got %s", cfg.Interval)
	}
}

func TestLoadSimConfig_BadNumber(t *testing.T) {
	t.Setenv("SIM_DRIVERS", "many")

	if _, err := loadSimConfig(); err == nil {
		t.Error("expected error for non-numeric SIM_DRIVERS")
	}
}

func TestSimConfig_TokenFor(t *testing.T) {
	tokens, _ := auth.NewService("sim-secret", time.Hour)

	token, err := simConfig{}.tokenFor(tokens, "sim-driver-1")
	if err != nil {
		t.Fatalf("tokenFor: %v", err)
	}
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		t.Fatalf("minted token invalid: %v", err)
	}
	if claims.UserID != "sim-driver-1" {
		t.Errorf("expected sim-driver-1, got %s", claims.UserID)
	}

	fixed, _ := simConfig{Token: "fixed"}.tokenFor(nil, "ignored")
	if fixed != "fixed" {
		t.Errorf("expected fixed token, got %s", fixed)
	}

	if _, err := (simConfig{}).tokenFor(nil, "x"); err == nil {
		t.Error("expected error without secret or token")
	}
}
