package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/controller"
	"github.com/ukydev/maintenance-tracker/internal/maintenance"
)

// Vehicle categories the simulator picks from, with a typical daily distance.
var dailyKm = map[string][2]int{
	"sedan":      {20, 80},
	"hatchback":  {15, 60},
	"SUV":        {30, 120},
	"pickup":     {40, 200},
	"motorcycle": {10, 50},
}

var categories = []string{"sedan", "hatchback", "SUV", "pickup", "motorcycle"}

// apiClient talks to the maintenance tracker API as one user.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Body)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &apiError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// driver is one simulated user with one vehicle.
type driver struct {
	userID   string
	client   *apiClient
	rng      *rand.Rand
	category string
	mileage  int
	// lateness is how many km past a warning the driver waits before servicing.
	lateness int
}

func newDriver(userID string, client *apiClient, seed int64) *driver {
	rng := rand.New(rand.NewSource(seed))
	return &driver{
		userID:   userID,
		client:   client,
		rng:      rng,
		category: categories[rng.Intn(len(categories))],
		mileage:  5000 + rng.Intn(150000),
		lateness: rng.Intn(1500),
	}
}

// setup loads the user's session and onboards a vehicle if there is none.
func (d *driver) setup(ctx context.Context) (controller.Snapshot, error) {
	var snap controller.Snapshot
	if err := d.client.do(ctx, http.MethodGet, "/session", nil, &snap); err != nil {
		return snap, err
	}
	if snap.Vehicle != nil {
		d.mileage = snap.Vehicle.CurrentMileage
		return snap, nil
	}

	req := map[string]interface{}{
		"name":     fmt.Sprintf("%s %s", d.userID, d.category),
		"category": d.category,
		"mileage":  d.mileage,
	}
	if err := d.client.do(ctx, http.MethodPost, "/vehicles", req, &snap); err != nil {
		return snap, fmt.Errorf("failed to create vehicle: %w", err)
	}
	log.WithFields(log.Fields{
		"user_id":  d.userID,
		"category": d.category,
		"mileage":  d.mileage,
	}).Info("Created vehicle")
	return snap, nil
}

// nextMileage advances the odometer by one simulated day of driving.
func (d *driver) nextMileage() int {
	bounds, ok := dailyKm[d.category]
	if !ok {
		bounds = [2]int{20, 80}
	}
	d.mileage += bounds[0] + d.rng.Intn(bounds[1]-bounds[0]+1)
	return d.mileage
}

// needsService reports whether the driver would book a service now.
func (d *driver) needsService(status maintenance.Status) bool {
	switch status.Level {
	case maintenance.LevelUnknown, maintenance.LevelDanger:
		return true
	case maintenance.LevelWarning:
		return status.Projection != nil && status.Projection.KmRemaining <= maintenance.WarningKmThreshold-d.lateness
	default:
		return false
	}
}

// step drives one day and records an oil change when one is due.
func (d *driver) step(ctx context.Context, day time.Time) (bool, error) {
	var snap controller.Snapshot
	mileage := d.nextMileage()
	if err := d.client.do(ctx, http.MethodPut, "/vehicle/mileage", map[string]int{"mileage": mileage}, &snap); err != nil {
		return false, fmt.Errorf("failed to update mileage: %w", err)
	}

	entry := log.WithFields(log.Fields{
		"user_id": d.userID,
		"mileage": mileage,
		"status":  snap.Status.Level,
	})
	if !d.needsService(snap.Status) {
		entry.Debug("Drove")
		return false, nil
	}

	defaults := maintenance.Defaults()
	record := map[string]interface{}{
		"service_type":    "oil_change",
		"date":            day.Format(maintenance.DisplayDateLayout),
		"mileage":         mileage,
		"interval_km":     defaults.IntervalKm,
		"interval_months": defaults.IntervalMonths,
		"oil_type":        defaults.OilTypes[d.rng.Intn(len(defaults.OilTypes))],
	}
	var result controller.AddRecordResult
	if err := d.client.do(ctx, http.MethodPost, "/vehicle/records", record, &result); err != nil {
		return false, fmt.Errorf("failed to add oil change: %w", err)
	}
	entry.WithField("next_change_mileage", result.Record.NextChangeMileage).Info("Recorded oil change")
	return true, nil
}

func (d *driver) run(ctx context.Context, interval time.Duration) {
	if _, err := d.setup(ctx); err != nil {
		log.WithError(err).WithField("user_id", d.userID).Error("Failed to set up driver")
		return
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()
	day := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		day = day.AddDate(0, 0, 1)
		if _, err := d.step(ctx, day); err != nil {
			log.WithError(err).WithField("user_id", d.userID).Warn("Simulation step failed")
		}
	}
}

type simConfig struct {
	APIURL      string `env:"API_BASE_URL" envDefault:"http://localhost:8080/api"`
	Drivers     int    `env:"SIM_DRIVERS" envDefault:"3"`
	TickSeconds int    `env:"SIM_TICK_SECONDS" envDefault:"2"`
	JWTSecret   string `env:"JWT_SECRET"`
	Token       string `env:"SIM_AUTH_TOKEN"`

	Interval time.Duration
}

func loadSimConfig() (simConfig, error) {
	var cfg simConfig
	if err := env.Parse(&cfg); err != nil {
		return simConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "http://localhost:8080/api"
	}
	if cfg.Drivers < 1 {
		cfg.Drivers = 3
	}
	if cfg.TickSeconds < 1 {
		cfg.TickSeconds = 2
	}
	cfg.Interval = time.Duration(cfg.TickSeconds) * time.Second
	return cfg, nil
}

// tokenFor returns a token for userID. A fixed SIM_AUTH_TOKEN makes every
// driver the same user, so it only supports a single driver.
func (cfg simConfig) tokenFor(tokens *auth.Service, userID string) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	if tokens == nil {
		return "", fmt.Errorf("JWT_SECRET or SIM_AUTH_TOKEN is required")
	}
	return tokens.GenerateToken(userID, userID)
}

func main() {
	cfg, err := loadSimConfig()
	if err != nil {
		log.WithError(err).Fatal("Invalid simulator configuration")
	}

	var tokens *auth.Service
	if cfg.JWTSecret != "" {
		svc, err := auth.NewService(cfg.JWTSecret, 0)
		if err != nil {
			log.WithError(err).Fatal("Invalid JWT secret")
		}
		tokens = svc
	}
	if cfg.Token != "" {
		cfg.Drivers = 1
	}

	log.WithFields(log.Fields{
		"drivers":  cfg.Drivers,
		"api_url":  cfg.APIURL,
		"interval": cfg.Interval,
	}).Info("Starting maintenance simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Drivers; i++ {
		userID := fmt.Sprintf("sim-driver-%d", i+1)
		token, err := cfg.tokenFor(tokens, userID)
		if err != nil {
			log.WithError(err).Fatal("Cannot authenticate drivers")
		}
		d := newDriver(userID, newAPIClient(cfg.APIURL, token), time.Now().UnixNano()+int64(i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.run(ctx, cfg.Interval)
		}()
	}

	wg.Wait()
	log.Info("Simulation stopped")
}
