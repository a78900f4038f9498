package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mesaclub/reservas/internal/auth"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
	"mesaclub/reservas/internal/services"
)

// Mock ReservationWorkflow
type mockReservationWorkflow struct {
	createFunc func(ctx context.Context, actor services.Actor, req *dtos.CreateReservationReq) (*dtos.CreateReservationResp, error)
	cancelFunc func(ctx context.Context, actor services.Actor, reservationID string) error
	updateFunc func(ctx context.Context, actor services.Actor, reservationID string, req *dtos.UpdateReservationReq) error
	getFunc    func(ctx context.Context, reservationID string) (*gormModels.Reservation, error)
}

func (m *mockReservationWorkflow) Create(ctx context.Context, actor services.Actor, req *dtos.CreateReservationReq) (*dtos.CreateReservationResp, error) {
	return m.createFunc(ctx, actor, req)
}

func (m *mockReservationWorkflow) Cancel(ctx context.Context, actor services.Actor, reservationID string) error {
	return m.cancelFunc(ctx, actor, reservationID)
}

func (m *mockReservationWorkflow) Update(ctx context.Context, actor services.Actor, reservationID string, req *dtos.UpdateReservationReq) error {
	return m.updateFunc(ctx, actor, reservationID, req)
}

func (m *mockReservationWorkflow) Get(ctx context.Context, reservationID string) (*gormModels.Reservation, error) {
	return m.getFunc(ctx, reservationID)
}

func relatorRequest(body any) *http.Request {
	bodyBytes, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/v1/reservations", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	claims := &auth.JWTClaims{
		UserUUID:  "relator-1",
		RoleValue: constants.RoleRelator,
		EmailVal:  "relator@test.local",
	}
	return req.WithContext(auth.SetUserClaims(req.Context(), claims))
}

func TestCreateReservationHandler_Success(t *testing.T) {
	mockService := &mockReservationWorkflow{
		createFunc: func(ctx context.Context, actor services.Actor, req *dtos.CreateReservationReq) (*dtos.CreateReservationResp, error) {
			if actor.ID != "relator-1" {
				t.Errorf("Expected actor from claims, got %s", actor.ID)
			}
			return &dtos.CreateReservationResp{
				ReservationID: "res-1",
				Status:        string(constants.ReservationPending),
			}, nil
		},
	}

	handler := CreateReservationHandler(mockService, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, relatorRequest(dtos.CreateReservationReq{
		EventID:  "event-1",
		SectorID: "sector-1",
	}))

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}

	var response dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status ok, got %s", response.Status)
	}
}

func TestCreateReservationHandler_ValidationFields(t *testing.T) {
	mockService := &mockReservationWorkflow{
		createFunc: func(ctx context.Context, actor services.Actor, req *dtos.CreateReservationReq) (*dtos.CreateReservationResp, error) {
			return nil, services.NewValidationError("Datos de reserva inválidos", "guests", "tableType")
		},
	}

	handler := CreateReservationHandler(mockService, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, relatorRequest(dtos.CreateReservationReq{}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	var response dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Fields) != 2 {
		t.Errorf("Expected 2 offending fields, got %v", response.Fields)
	}
}

func TestCreateReservationHandler_CapacityStatus(t *testing.T) {
	mockService := &mockReservationWorkflow{
		createFunc: func(ctx context.Context, actor services.Actor, req *dtos.CreateReservationReq) (*dtos.CreateReservationResp, error) {
			return nil, services.NewCapacityError(constants.MsgCapacityExceeded)
		},
	}

	handler := CreateReservationHandler(mockService, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, relatorRequest(dtos.CreateReservationReq{}))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rr.Code)
	}
}

func TestCreateReservationHandler_MissingClaims(t *testing.T) {
	mockService := &mockReservationWorkflow{}
	handler := CreateReservationHandler(mockService, nil)

	bodyBytes, _ := json.Marshal(dtos.CreateReservationReq{})
	req := httptest.NewRequest("POST", "/api/v1/reservations", bytes.NewReader(bodyBytes))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}
