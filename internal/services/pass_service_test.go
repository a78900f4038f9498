package services

import (
	"context"
	"strings"
	"testing"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

func newPassService(f *testFixture) *PassService {
	return NewPassService(f.db, common.NewQRMinter(), NoopNotifier{})
}

func passReq(reservationID string) *dtos.CreatePassReq {
	return &dtos.CreatePassReq{
		ReservationID: reservationID,
		GuestName:     "Invitado Extra",
		GuestCI:       "7098765",
		Reason:        "Acompañante confirmado por el responsable",
	}
}

func TestPassService_Create(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp := createApprovedReservation(t, f)

	svc := newPassService(f)
	pass, err := svc.Create(context.Background(), f.relatorActor(), passReq(resp.ReservationID))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if pass.Status != string(constants.PassActive) {
		t.Errorf("Expected ACTIVE, got %s", pass.Status)
	}
	if !strings.HasPrefix(pass.QRCode, "PASS-") {
		t.Errorf("Expected PASS token, got %s", pass.QRCode)
	}

	var audits int64
	db.Model(&gormModels.AuditLog{}).
		Where("action = ? AND entity_id = ?", constants.ActionCreateAdditionalPass, pass.ID).
		Count(&audits)
	if audits != 1 {
		t.Errorf("Expected 1 audit row, got %d", audits)
	}
}

func TestPassService_Create_RequiresApprovedReservation(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)

	rsvc := newReservationService(db)
	resp, err := rsvc.Create(context.Background(), f.relatorActor(), createReq(f, f.vipSector.ID, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc := newPassService(f)
	_, err = svc.Create(context.Background(), f.relatorActor(), passReq(resp.ReservationID))
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindPreconditionFailed {
		t.Fatalf("Expected precondition error for pending reservation, got %v", err)
	}
}

func TestPassService_Create_CapacityGate(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)

	rsvc := newReservationService(db)
	req := createReq(f, f.openSector.ID, 10)
	req.TableType = string(constants.TableFly10)
	resp, err := rsvc.Create(context.Background(), f.relatorActor(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc := newPassService(f)
	_, err = svc.Create(context.Background(), f.relatorActor(), passReq(resp.ReservationID))
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindCapacityExceeded {
		t.Fatalf("Expected capacity error on a full table, got %v", err)
	}
}

func TestPassService_Create_CapacityFailureLeavesNoRow(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)

	rsvc := newReservationService(db)
	req := createReq(f, f.openSector.ID, 10)
	req.TableType = string(constants.TableFly10)
	resp, err := rsvc.Create(context.Background(), f.relatorActor(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc := newPassService(f)
	_, err = svc.Create(context.Background(), f.relatorActor(), passReq(resp.ReservationID))
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindCapacityExceeded {
		t.Fatalf("Expected capacity error, got %v", err)
	}

	// The rejection happens inside the transaction; nothing persists.
	var passes int64
	db.Model(&gormModels.AdditionalPass{}).Where("reservation_id = ?", resp.ReservationID).Count(&passes)
	if passes != 0 {
		t.Errorf("Expected no pass row after rejected create, got %d", passes)
	}

	var audits int64
	db.Model(&gormModels.AuditLog{}).
		Where("action = ? AND reservation_id = ?", constants.ActionCreateAdditionalPass, resp.ReservationID).
		Count(&audits)
	if audits != 0 {
		t.Errorf("Expected no audit row after rejected create, got %d", audits)
	}
}

func TestPassService_Create_RevokedPassFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)

	rsvc := newReservationService(db)
	req := createReq(f, f.openSector.ID, 9)
	req.TableType = string(constants.TableFly10)
	resp, err := rsvc.Create(context.Background(), f.relatorActor(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc := newPassService(f)
	ctx := context.Background()

	first, err := svc.Create(ctx, f.relatorActor(), passReq(resp.ReservationID))
	if err != nil {
		t.Fatalf("First pass failed: %v", err)
	}

	// Table is now full.
	if _, err := svc.Create(ctx, f.relatorActor(), passReq(resp.ReservationID)); err == nil {
		t.Fatal("Expected capacity error on full table")
	}

	if _, err := svc.Revoke(ctx, f.adminActor(), first.ID, &dtos.RevokePassReq{Reason: "Cupo liberado por cancelación"}); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if _, err := svc.Create(ctx, f.relatorActor(), passReq(resp.ReservationID)); err != nil {
		t.Fatalf("Expected revoked pass to free its slot: %v", err)
	}
}

func TestPassService_Revoke_BlockedOnceValidated(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp := createApprovedReservation(t, f)

	svc := newPassService(f)
	ctx := context.Background()

	pass, err := svc.Create(ctx, f.relatorActor(), passReq(resp.ReservationID))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	vsvc := NewValidatorService(db, nil)
	if _, err := vsvc.Scan(ctx, f.adminActor(), pass.QRCode); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	_, err = svc.Revoke(ctx, f.adminActor(), pass.ID, &dtos.RevokePassReq{Reason: "Intento de revocar pase usado"})
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindConflict {
		t.Fatalf("Expected conflict revoking validated pass, got %v", err)
	}
}

func TestPassService_Revoke_RelatorForbidden(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp := createApprovedReservation(t, f)

	svc := newPassService(f)
	ctx := context.Background()

	pass, err := svc.Create(ctx, f.relatorActor(), passReq(resp.ReservationID))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Revoke(ctx, f.relatorActor(), pass.ID, &dtos.RevokePassReq{Reason: "Relator intenta revocar su pase"})
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindForbidden {
		t.Fatalf("Expected forbidden for relator revoke, got %v", err)
	}
}

func TestPassService_QRImage(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	resp := createApprovedReservation(t, f)

	svc := newPassService(f)
	pass, err := svc.Create(context.Background(), f.relatorActor(), passReq(resp.ReservationID))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	qr, err := svc.QRImage(context.Background(), pass.ID)
	if err != nil {
		t.Fatalf("QRImage failed: %v", err)
	}
	if qr.QRCode != pass.QRCode {
		t.Error("Expected the stored token")
	}
	if !strings.HasPrefix(qr.QRImage, "data:image/png;base64,") {
		t.Errorf("Expected PNG data URL, got %.40s", qr.QRImage)
	}
}
