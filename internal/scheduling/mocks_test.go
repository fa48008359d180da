package scheduling

import (
	"context"

	"github.com/stretchr/testify/mock"

	"appointments/internal/appointment"
	"appointments/internal/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)        {}
func (nopLogger) Error(string, ...any)       {}
func (nopLogger) Warn(string, ...any)        {}
func (l nopLogger) With(...any) types.Logger { return l }

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByInsuredID(ctx context.Context, id appointment.InsuredID) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, id)
	found, _ := args.Get(0).([]*appointment.Appointment)
	return found, args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, a *appointment.Appointment) (*appointment.Appointment, error) {
	args := m.Called(ctx, a)
	if fn, ok := args.Get(0).(func(*appointment.Appointment) *appointment.Appointment); ok {
		return fn(a), args.Error(1)
	}
	saved, _ := args.Get(0).(*appointment.Appointment)
	return saved, args.Error(1)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, insured appointment.InsuredID, schedule appointment.ScheduleID, status appointment.Status) error {
	args := m.Called(ctx, insured, schedule, status)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendAppointmentScheduled(ctx context.Context, a *appointment.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
