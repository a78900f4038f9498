package services

import (
	"context"
	"testing"

	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

func createPendingReservation(t *testing.T, f *testFixture) (*dtos.CreateReservationResp, string) {
	svc := newReservationService(f.db)
	resp, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.vipSector.ID, 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.ApprovalID == nil {
		t.Fatal("Expected routed approval")
	}
	return resp, *resp.ApprovalID
}

func TestApprovalService_Decide_Approve(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp, approvalID := createPendingReservation(t, f)

	svc := NewApprovalService(db, NoopNotifier{}, nil)

	decision, err := svc.Decide(context.Background(), f.approverActor(), approvalID, &dtos.DecideApprovalReq{
		Decision: "APPROVE",
	})
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if decision.ReservationStatus != string(constants.ReservationApproved) {
		t.Errorf("Expected APPROVED, got %s", decision.ReservationStatus)
	}

	var reservation gormModels.Reservation
	db.Where("id = ?", resp.ReservationID).First(&reservation)
	if reservation.Status != constants.ReservationApproved {
		t.Errorf("Expected reservation APPROVED, got %s", reservation.Status)
	}

	var approval gormModels.Approval
	db.Where("id = ?", approvalID).First(&approval)
	if approval.Status != constants.ApprovalApproved {
		t.Errorf("Expected approval APPROVED, got %s", approval.Status)
	}
	if approval.ApprovedAt == nil {
		t.Error("Expected approved_at to be set")
	}

	// Guest QR tokens are untouched by approval.
	var guests []gormModels.Guest
	db.Where("reservation_id = ?", resp.ReservationID).Find(&guests)
	for i, g := range guests {
		if g.QRCode != resp.Guests[i].QRCode {
			t.Error("Expected guest QR to remain unchanged through approval")
		}
	}
}

func TestApprovalService_Decide_AlreadyDecided(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	_, approvalID := createPendingReservation(t, f)

	svc := NewApprovalService(db, NoopNotifier{}, nil)
	ctx := context.Background()

	if _, err := svc.Decide(ctx, f.approverActor(), approvalID, &dtos.DecideApprovalReq{Decision: "APPROVE"}); err != nil {
		t.Fatalf("First decision failed: %v", err)
	}

	_, err := svc.Decide(ctx, f.approverActor(), approvalID, &dtos.DecideApprovalReq{Decision: "REJECT", Comments: "demasiado tarde para decidir"})
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindConflict {
		t.Fatalf("Expected conflict on second decision, got %v", err)
	}

	// Admin hits the same conflict; terminal is terminal.
	_, err = svc.Decide(ctx, f.adminActor(), approvalID, &dtos.DecideApprovalReq{Decision: "APPROVE"})
	werr, ok = err.(*WorkflowError)
	if !ok || werr.Kind != KindConflict {
		t.Fatalf("Expected conflict for admin too, got %v", err)
	}
}

func TestApprovalService_Decide_RejectRequiresComments(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp, approvalID := createPendingReservation(t, f)

	svc := NewApprovalService(db, NoopNotifier{}, nil)
	ctx := context.Background()

	_, err := svc.Decide(ctx, f.approverActor(), approvalID, &dtos.DecideApprovalReq{Decision: "REJECT", Comments: "corto"})
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindValidation {
		t.Fatalf("Expected validation error for short comments, got %v", err)
	}

	decision, err := svc.Decide(ctx, f.approverActor(), approvalID, &dtos.DecideApprovalReq{
		Decision: "REJECT",
		Comments: "Mesa duplicada con otra reserva del mismo grupo",
	})
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if decision.ReservationStatus != string(constants.ReservationRejected) {
		t.Errorf("Expected REJECTED, got %s", decision.ReservationStatus)
	}

	var reservation gormModels.Reservation
	db.Where("id = ?", resp.ReservationID).First(&reservation)
	if reservation.Status != constants.ReservationRejected {
		t.Errorf("Expected reservation REJECTED, got %s", reservation.Status)
	}
}

func TestApprovalService_Decide_Forbidden(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	_, approvalID := createPendingReservation(t, f)

	svc := NewApprovalService(db, NoopNotifier{}, nil)

	_, err := svc.Decide(context.Background(), f.relatorActor(), approvalID, &dtos.DecideApprovalReq{Decision: "APPROVE"})
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindForbidden {
		t.Fatalf("Expected forbidden error, got %v", err)
	}
}

func TestApprovalService_Decide_AdminOverride(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp, approvalID := createPendingReservation(t, f)

	svc := NewApprovalService(db, NoopNotifier{}, nil)

	if _, err := svc.Decide(context.Background(), f.adminActor(), approvalID, &dtos.DecideApprovalReq{Decision: "APPROVE"}); err != nil {
		t.Fatalf("Admin decide failed: %v", err)
	}

	var reservation gormModels.Reservation
	db.Where("id = ?", resp.ReservationID).First(&reservation)
	if reservation.Status != constants.ReservationApproved {
		t.Errorf("Expected APPROVED, got %s", reservation.Status)
	}
}

func TestApprovalService_Decide_NotFound(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)

	svc := NewApprovalService(db, NoopNotifier{}, nil)

	_, err := svc.Decide(context.Background(), f.adminActor(), "00000000-0000-0000-0000-000000000000", &dtos.DecideApprovalReq{Decision: "APPROVE"})
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindNotFound {
		t.Fatalf("Expected not found error, got %v", err)
	}
}
