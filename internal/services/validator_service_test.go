package services

import (
	"context"
	"testing"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

func createApprovedReservation(t *testing.T, f *testFixture) *dtos.CreateReservationResp {
	svc := newReservationService(f.db)
	resp, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.openSector.ID, 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return resp
}

func validatorActor(f *testFixture) Actor {
	return Actor{ID: f.admin.ID, Role: constants.RoleValidator}
}

func TestValidatorService_Scan_GuestSuccess(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp := createApprovedReservation(t, f)

	svc := NewValidatorService(db, nil)

	scan, err := svc.Scan(context.Background(), validatorActor(f), resp.Guests[0].QRCode)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if scan.IsAdditionalPass {
		t.Error("Expected a guest credential")
	}
	if scan.GuestName != resp.Guests[0].Name {
		t.Errorf("Expected guest %s, got %s", resp.Guests[0].Name, scan.GuestName)
	}

	var guest gormModels.Guest
	db.Where("id = ?", resp.Guests[0].ID).First(&guest)
	if !guest.QRValidated || guest.ValidatedAt == nil {
		t.Error("Expected guest marked validated with timestamp")
	}

	var audits int64
	db.Model(&gormModels.AuditLog{}).
		Where("action = ? AND entity_id = ?", constants.ActionValidateQR, guest.ID).
		Count(&audits)
	if audits != 1 {
		t.Errorf("Expected 1 validation audit row, got %d", audits)
	}
}

func TestValidatorService_Scan_ExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp := createApprovedReservation(t, f)

	svc := NewValidatorService(db, nil)
	ctx := context.Background()
	code := resp.Guests[0].QRCode

	if _, err := svc.Scan(ctx, validatorActor(f), code); err != nil {
		t.Fatalf("First scan failed: %v", err)
	}

	_, err := svc.Scan(ctx, validatorActor(f), code)
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindConflict {
		t.Fatalf("Expected conflict on second scan, got %v", err)
	}
}

func TestValidatorService_Scan_UnknownCode(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)

	svc := NewValidatorService(db, nil)

	_, err := svc.Scan(context.Background(), validatorActor(f), "GUEST-nope")
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindNotFound {
		t.Fatalf("Expected not found, got %v", err)
	}
	if werr.Message != constants.MsgQRInvalid {
		t.Errorf("Expected %q, got %q", constants.MsgQRInvalid, werr.Message)
	}
}

func TestValidatorService_Scan_ReservationNotApproved(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)

	rsvc := newReservationService(db)
	resp, err := rsvc.Create(context.Background(), f.relatorActor(), createReq(f, f.vipSector.ID, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc := NewValidatorService(db, nil)

	_, err = svc.Scan(context.Background(), validatorActor(f), resp.Guests[0].QRCode)
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindPreconditionFailed {
		t.Fatalf("Expected precondition error for pending reservation, got %v", err)
	}
}

func TestValidatorService_Scan_PassLifecycle(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp := createApprovedReservation(t, f)

	psvc := NewPassService(db, common.NewQRMinter(), NoopNotifier{})
	pass, err := psvc.Create(context.Background(), f.relatorActor(), &dtos.CreatePassReq{
		ReservationID: resp.ReservationID,
		GuestName:     "Invitado Extra",
		GuestCI:       "7012345",
		Reason:        "Invitado adicional del responsable",
	})
	if err != nil {
		t.Fatalf("Pass create failed: %v", err)
	}

	svc := NewValidatorService(db, nil)
	ctx := context.Background()

	scan, err := svc.Scan(ctx, validatorActor(f), pass.QRCode)
	if err != nil {
		t.Fatalf("Pass scan failed: %v", err)
	}
	if !scan.IsAdditionalPass {
		t.Error("Expected an additional pass credential")
	}

	var stored gormModels.AdditionalPass
	db.Where("id = ?", pass.ID).First(&stored)
	if stored.Status != constants.PassUsed {
		t.Errorf("Expected pass USED, got %s", stored.Status)
	}
	if !stored.QRValidated {
		t.Error("Expected pass validated")
	}

	// Second scan of a used pass conflicts.
	_, err = svc.Scan(ctx, validatorActor(f), pass.QRCode)
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindConflict {
		t.Fatalf("Expected conflict for used pass, got %v", err)
	}
}

func TestValidatorService_Scan_RevokedPass(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp := createApprovedReservation(t, f)

	psvc := NewPassService(db, common.NewQRMinter(), NoopNotifier{})
	pass, err := psvc.Create(context.Background(), f.relatorActor(), &dtos.CreatePassReq{
		ReservationID: resp.ReservationID,
		GuestName:     "Invitado Extra",
		GuestCI:       "7012345",
		Reason:        "Invitado adicional del responsable",
	})
	if err != nil {
		t.Fatalf("Pass create failed: %v", err)
	}

	if _, err := psvc.Revoke(context.Background(), f.adminActor(), pass.ID, &dtos.RevokePassReq{Reason: "Cupo reasignado a otro grupo"}); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	svc := NewValidatorService(db, nil)

	_, err = svc.Scan(context.Background(), validatorActor(f), pass.QRCode)
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindConflict {
		t.Fatalf("Expected conflict for revoked pass, got %v", err)
	}
	if werr.Message != constants.MsgPassRevoked {
		t.Errorf("Expected %q, got %q", constants.MsgPassRevoked, werr.Message)
	}
}
