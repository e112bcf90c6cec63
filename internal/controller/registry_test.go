package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

func TestRegistry_Get(t *testing.T) {
	vehicles := &MockVehicleCollection{}
	records := &MockServiceRecordCollection{}
	registry := NewRegistry(vehicles, records, nil, nil, WithClock(fixedClock))

	vehicles.On("FindVehiclesByOwner", mock.Anything, "user-1").Return([]models.Vehicle{}, nil).Once()
	vehicles.On("FindVehiclesByOwner", mock.Anything, "user-2").Return(nil, errStore).Once()
	vehicles.On("FindVehiclesByOwner", mock.Anything, "user-2").Return([]models.Vehicle{}, nil).Once()

	t.Run("creates and loads on first use", func(t *testing.T) {
		c, err := registry.Get(context.Background(), Session{UserID: "user-1", SignedIn: true})
		require.NoError(t, err)
		assert.Equal(t, StateNoVehicle, c.Snapshot().State)

		again, err := registry.Get(context.Background(), Session{UserID: "user-1", SignedIn: true})
		require.NoError(t, err)
		assert.Same(t, c, again)
	})

	t.Run("failed first load still returns the controller", func(t *testing.T) {
		c, err := registry.Get(context.Background(), Session{UserID: "user-2", SignedIn: true})
		assert.ErrorIs(t, err, errStore)
		require.NotNil(t, c)
		assert.Equal(t, StateError, c.Snapshot().State)
		assert.Equal(t, 1, registry.Len())

		retried, err := registry.Get(context.Background(), Session{UserID: "user-2", SignedIn: true})
		require.NoError(t, err)
		assert.NotSame(t, c, retried)
		assert.Equal(t, StateNoVehicle, retried.Snapshot().State)
	})

	t.Run("signed out", func(t *testing.T) {
		_, err := registry.Get(context.Background(), Session{UserID: "user-3"})
		assert.ErrorIs(t, err, ErrSignedOut)
	})

	assert.Equal(t, 2, registry.Len())
	vehicles.AssertExpectations(t)
}

func TestRegistry_ConcurrentFirstGetWaitsForLoad(t *testing.T) {
	vehicles := &MockVehicleCollection{}
	records := &MockServiceRecordCollection{}
	registry := NewRegistry(vehicles, records, nil, nil, WithClock(fixedClock))

	v := vehicle("v1", 1000, fixedNow)
	release := make(chan time.Time)
	vehicles.On("FindVehiclesByOwner", mock.Anything, userID).
		WaitUntil(release).
		Return([]models.Vehicle{v}, nil).Once()
	vehicles.On("FindVehicleByID", mock.Anything, userID, "v1").Return(&v, nil).Once()
	records.On("FindServiceRecordsByVehicle", mock.Anything, "v1").Return([]models.ServiceRecord{}, nil).Once()

	const callers = 4
	var wg sync.WaitGroup
	results := make([]*Controller, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := registry.Get(context.Background(), testSession)
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	close(release)
	wg.Wait()

	for _, c := range results {
		require.NotNil(t, c)
		assert.Same(t, results[0], c)
		assert.Equal(t, StateReady, c.Snapshot().State)
	}
	assert.Equal(t, 1, registry.Len())
	vehicles.AssertExpectations(t)
	records.AssertExpectations(t)
}
