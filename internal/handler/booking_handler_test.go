package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"glowdesk/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBookingService is a mock implementation of service.BookingService.
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateAppointment(ctx context.Context, req *model.AppointmentRequest) (*model.Appointment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockBookingService) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockBookingService) CancelAppointment(ctx context.Context, id uuid.UUID, actor model.CancellationActor) (*model.Appointment, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockBookingService) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockBookingService) CompleteAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockBookingService) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func testAppointment(id uuid.UUID, status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		ID:         id,
		CustomerID: uuid.New(),
		StaffID:    uuid.New(),
		StartsAt:   time.Now().Add(48 * time.Hour),
		EndsAt:     time.Now().Add(49 * time.Hour),
		Status:     status,
	}
}

func TestBookingHandler_Create(t *testing.T) {
	logger := zerolog.Nop()
	apptID := uuid.New()

	validRequest := &model.AppointmentRequest{
		CustomerID: uuid.New(),
		StaffID:    uuid.New(),
		StartsAt:   time.Now().Add(48 * time.Hour),
		EndsAt:     time.Now().Add(49 * time.Hour),
	}

	tests := []struct {
		name           string
		method         string
		requestBody    interface{}
		mockReturn     *model.Appointment
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			method:         http.MethodPost,
			requestBody:    validRequest,
			mockReturn:     testAppointment(apptID, model.AppointmentReserved),
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Slot already taken",
			method:         http.MethodPost,
			requestBody:    validRequest,
			mockError:      model.ErrSlotAlreadyTaken,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Lead time violated",
			method:         http.MethodPost,
			requestBody:    validRequest,
			mockError:      model.ErrLeadTimeViolated,
			expectedStatus: http.StatusUnprocessableEntity,
			expectService:  true,
		},
		{
			name:           "Horizon exceeded",
			method:         http.MethodPost,
			requestBody:    validRequest,
			mockError:      model.ErrHorizonExceeded,
			expectedStatus: http.StatusUnprocessableEntity,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPost,
			requestBody:    "{broken",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodGet,
			requestBody:    validRequest,
			expectedStatus: http.StatusMethodNotAllowed,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockBookingService)
			if tt.expectService {
				mockService.On("CreateAppointment", mock.Anything, mock.AnythingOfType("*model.AppointmentRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			h := NewBookingHandler(mockService, logger)

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest(tt.method, "/api/appointments", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestBookingHandler_Cancel(t *testing.T) {
	logger := zerolog.Nop()
	apptID := uuid.New()

	t.Run("Defaults to customer actor", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CancelAppointment", mock.Anything, apptID, model.CancelledByCustomer).
			Return(testAppointment(apptID, model.AppointmentCancelled), nil)

		h := NewBookingHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/appointments/"+apptID.String()+"/cancel", nil)
		rec := httptest.NewRecorder()

		h.Cancel(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Admin actor from body", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CancelAppointment", mock.Anything, apptID, model.CancelledByAdmin).
			Return(testAppointment(apptID, model.AppointmentCancelled), nil)

		h := NewBookingHandler(mockService, logger)

		body := bytes.NewReader([]byte(`{"actor":"admin"}`))
		req := httptest.NewRequest(http.MethodPost, "/api/appointments/"+apptID.String()+"/cancel", body)
		rec := httptest.NewRecorder()

		h.Cancel(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Too late", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CancelAppointment", mock.Anything, apptID, model.CancelledByCustomer).
			Return(nil, model.ErrCancellationTooLate)

		h := NewBookingHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/appointments/"+apptID.String()+"/cancel", nil)
		rec := httptest.NewRecorder()

		h.Cancel(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, model.ErrCodeCancellationLate, resp.Error)
	})

	t.Run("Unknown actor rejected", func(t *testing.T) {
		mockService := new(MockBookingService)
		h := NewBookingHandler(mockService, logger)

		body := bytes.NewReader([]byte(`{"actor":"robot"}`))
		req := httptest.NewRequest(http.MethodPost, "/api/appointments/"+apptID.String()+"/cancel", body)
		rec := httptest.NewRecorder()

		h.Cancel(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CancelAppointment")
	})
}

func TestBookingHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	apptID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("GetAppointment", mock.Anything, apptID).
			Return(testAppointment(apptID, model.AppointmentConfirmed), nil)

		h := NewBookingHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/appointments/"+apptID.String(), nil)
		rec := httptest.NewRecorder()

		h.GetByID(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("GetAppointment", mock.Anything, apptID).Return(nil, nil)

		h := NewBookingHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/appointments/"+apptID.String(), nil)
		rec := httptest.NewRecorder()

		h.GetByID(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		mockService := new(MockBookingService)
		h := NewBookingHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/appointments/nope", nil)
		rec := httptest.NewRecorder()

		h.GetByID(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookingHandler_Confirm(t *testing.T) {
	logger := zerolog.Nop()
	apptID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("ConfirmAppointment", mock.Anything, apptID).
			Return(testAppointment(apptID, model.AppointmentConfirmed), nil)

		h := NewBookingHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/appointments/"+apptID.String()+"/confirm", nil)
		rec := httptest.NewRecorder()

		h.Confirm(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Invalid transition", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("ConfirmAppointment", mock.Anything, apptID).
			Return(nil, &model.InvalidTransitionError{Entity: "appointment", From: "completed", To: "confirmed"})

		h := NewBookingHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/appointments/"+apptID.String()+"/confirm", nil)
		rec := httptest.NewRecorder()

		h.Confirm(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
	})
}
