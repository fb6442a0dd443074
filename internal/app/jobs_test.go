//go:build !integration

package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/meal-ledger/config"
	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/mocks"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/service"
)

func TestInitializeScheduler(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.SweepConfig
		wantJobs []string
		wantErr  bool
	}{
		{
			name:     "both jobs",
			cfg:      config.SweepConfig{Enabled: true, Schedule: "0 0 0 * * *", BillingSchedule: "0 30 0 * * *"},
			wantJobs: []string{JobBillingReport, JobReconciliationSweep},
		},
		{
			name: "disabled",
			cfg:  config.SweepConfig{Enabled: false, Schedule: "bogus"},
		},
		{
			name:    "invalid billing schedule",
			cfg:     config.SweepConfig{Enabled: true, Schedule: "0 0 0 * * *", BillingSchedule: "half past midnight"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := InitializeScheduler(tt.cfg, newTestServices(t))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantJobs == nil {
				assert.Nil(t, s)
				return
			}
			require.NotNil(t, s)
			assert.Equal(t, tt.wantJobs, s.Jobs())
		})
	}
}

func TestSweepJob(t *testing.T) {
	t.Run("runs the sweep", func(t *testing.T) {
		clock := service.NewFixedClock(calendar.Date(2024, time.January, 1))
		sweeper := service.NewSweeper(repository.NewMemoryOrderStore(), nil, clock, nil, service.SweepConfig{})

		require.NoError(t, sweepJob(sweeper)(context.Background()))
		report, ok := sweeper.LastReport()
		require.True(t, ok)
		assert.True(t, calendar.Date(2024, time.January, 1).Equal(report.Day))
	})

	t.Run("reports listing failures", func(t *testing.T) {
		store := new(mocks.MockOrderStore)
		store.On("ListIDs", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)
		sweeper := service.NewSweeper(store, nil, nil, nil, service.SweepConfig{})

		assert.ErrorIs(t, sweepJob(sweeper)(context.Background()), assert.AnError)
	})
}

func TestBillingJob(t *testing.T) {
	store := new(mocks.MockOrderStore)
	store.On("CountUnbilledExpired", mock.Anything, mock.Anything).Return(int64(0), assert.AnError).Once()
	store.On("CountUnbilledExpired", mock.Anything, mock.Anything).Return(int64(4), nil).Once()
	job := billingJob(service.NewBillingReporter(store, nil))

	assert.ErrorIs(t, job(context.Background()), assert.AnError)
	assert.NoError(t, job(context.Background()))
	store.AssertExpectations(t)
}
