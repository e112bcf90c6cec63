package db

import (
	"context"
	"fmt"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Options selects and configures the store backend.
type Options struct {
	Driver     string
	MongoURI   string
	MongoDB    string
	SQLitePath string
}

// Store bundles the two logical tables of the tracker.
type Store struct {
	Vehicles VehicleCollection
	Records  ServiceRecordCollection

	close func(ctx context.Context) error
}

// Open connects to the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case DriverMongo, "":
		client, err := ConnectMongo(ctx, opts.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(client, opts.MongoDB), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s.Store(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}
