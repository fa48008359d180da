package handlers

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"appointments/internal/appointment"
	"appointments/internal/metrics"
	"appointments/internal/scheduling"
	"appointments/internal/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)        {}
func (nopLogger) Error(string, ...any)       {}
func (nopLogger) Warn(string, ...any)        {}
func (l nopLogger) With(...any) types.Logger { return l }

type mockRegisterer struct{ mock.Mock }

func (m *mockRegisterer) Execute(ctx context.Context, in scheduling.RegisterInput) (*scheduling.RegisterOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*scheduling.RegisterOutput)
	return out, args.Error(1)
}

type mockFinder struct{ mock.Mock }

func (m *mockFinder) Execute(ctx context.Context, raw string) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, raw)
	out, _ := args.Get(0).([]*appointment.Appointment)
	return out, args.Error(1)
}

type mockProcessor struct{ mock.Mock }

func (m *mockProcessor) Execute(ctx context.Context, insured, schedule string) error {
	return m.Called(ctx, insured, schedule).Error(0)
}

type recordingMetrics struct {
	mu            sync.Mutex
	scheduled     []string
	notifications []metrics.Result
}

func (r *recordingMetrics) RecordScheduled(_ context.Context, country string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, country)
}

func (r *recordingMetrics) RecordNotification(_ context.Context, result metrics.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, result)
}

func testAppointment() *appointment.Appointment {
	a, err := appointment.FromSnapshot(appointment.Snapshot{
		InsuredID:   "12345",
		CountryID:   "PE",
		ScheduleID:  98701,
		CenterID:    101,
		SpecialtyID: 105,
		MedicID:     201,
		Date:        "2025-12-25T10:00:00Z",
		Estado:      "pending",
	}, nil)
	if err != nil {
		panic(err)
	}
	return a
}
