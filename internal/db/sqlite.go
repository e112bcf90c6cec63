package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/models"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width and always UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS vehicles (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT,
	current_mileage INTEGER NOT NULL,
	last_updated TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vehicles_owner ON vehicles (owner_id, created_at);

CREATE TABLE IF NOT EXISTS service_records (
	id TEXT PRIMARY KEY,
	vehicle_id TEXT NOT NULL REFERENCES vehicles (id),
	service_type TEXT,
	date TEXT NOT NULL,
	mileage_at_change INTEGER NOT NULL,
	interval_km INTEGER NOT NULL,
	interval_months INTEGER NOT NULL,
	next_change_mileage INTEGER NOT NULL,
	next_change_date TEXT NOT NULL,
	note TEXT,
	oil_type TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_service_records_vehicle ON service_records (vehicle_id, date);
`

// SQLiteStore implements both collections on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer and ":memory:" is per connection.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: sqlDB}, nil
}

// Store exposes the SQLite database as a Store.
func (s *SQLiteStore) Store() *Store {
	return &Store{
		Vehicles: s,
		Records:  s,
		close:    func(context.Context) error { return s.Close() },
	}
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertVehicle inserts a vehicle row.
func (s *SQLiteStore) InsertVehicle(ctx context.Context, v models.Vehicle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, owner_id, name, category, current_mileage, last_updated, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OwnerID, v.Name, nullString(v.Category), v.CurrentMileage,
		formatTime(v.LastUpdated), formatTime(v.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// FindVehiclesByOwner returns the owner's vehicles, oldest first.
func (s *SQLiteStore) FindVehiclesByOwner(ctx context.Context, ownerID string) ([]models.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, category, current_mileage, last_updated, created_at
		 FROM vehicles WHERE owner_id = ? ORDER BY created_at ASC, rowid ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

// FindVehicleByID returns one of the owner's vehicles.
func (s *SQLiteStore) FindVehicleByID(ctx context.Context, ownerID, id string) (*models.Vehicle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, category, current_mileage, last_updated, created_at
		 FROM vehicles WHERE id = ? AND owner_id = ?`, id, ownerID)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return v, err
}

// UpdateVehicle applies an update to one of the owner's vehicles.
func (s *SQLiteStore) UpdateVehicle(ctx context.Context, ownerID, id string, update models.VehicleUpdate) error {
	sets := []string{"last_updated = ?"}
	args := []any{formatTime(update.LastUpdated)}
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Category != nil {
		sets = append(sets, "category = ?")
		if update.ClearsCategory() {
			args = append(args, nil)
		} else {
			args = append(args, *update.Category)
		}
	}
	if update.CurrentMileage != nil {
		sets = append(sets, "current_mileage = ?")
		args = append(args, *update.CurrentMileage)
	}
	args = append(args, id, ownerID)

	res, err := s.db.ExecContext(ctx,
		"UPDATE vehicles SET "+strings.Join(sets, ", ")+" WHERE id = ? AND owner_id = ?", args...)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return nil
}

// InsertServiceRecord inserts a service record row.
func (s *SQLiteStore) InsertServiceRecord(ctx context.Context, r models.ServiceRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO service_records (id, vehicle_id, service_type, date, mileage_at_change,
			interval_km, interval_months, next_change_mileage, next_change_date, note, oil_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.VehicleID, string(r.ServiceType), formatTime(r.Date), r.MileageAtChange,
		r.IntervalKm, r.IntervalMonths, r.NextChangeMileage, formatTime(r.NextChangeDate),
		nullString(r.Note), nullString(r.OilType), formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert service record: %w", err)
	}
	return nil
}

// FindServiceRecordsByVehicle returns the vehicle's records, newest first.
func (s *SQLiteStore) FindServiceRecordsByVehicle(ctx context.Context, vehicleID string) ([]models.ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vehicle_id, service_type, date, mileage_at_change, interval_km, interval_months,
			next_change_mileage, next_change_date, note, oil_type, created_at
		 FROM service_records WHERE vehicle_id = ? ORDER BY date DESC, created_at DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("query service records: %w", err)
	}
	defer rows.Close()

	records := []models.ServiceRecord{}
	for rows.Next() {
		var (
			r                               models.ServiceRecord
			serviceType, note, oilType      sql.NullString
			date, nextChangeDate, createdAt string
		)
		if err := rows.Scan(&r.ID, &r.VehicleID, &serviceType, &date, &r.MileageAtChange,
			&r.IntervalKm, &r.IntervalMonths, &r.NextChangeMileage, &nextChangeDate,
			&note, &oilType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan service record: %w", err)
		}
		r.ServiceType = models.ServiceType(serviceType.String)
		r.Note = stringPtr(note)
		r.OilType = stringPtr(oilType)
		if r.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		if r.NextChangeDate, err = parseTime(nextChangeDate); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	var (
		v                      models.Vehicle
		category               sql.NullString
		lastUpdated, createdAt string
	)
	if err := row.Scan(&v.ID, &v.OwnerID, &v.Name, &category, &v.CurrentMileage, &lastUpdated, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	v.Category = stringPtr(category)

	var err error
	if v.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return nil, err
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
