package services

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&gormModels.User{},
		&gormModels.Event{},
		&gormModels.EventSector{},
		&gormModels.Sector{},
		&gormModels.SectorApprover{},
		&gormModels.Reservation{},
		&gormModels.Guest{},
		&gormModels.AdditionalPass{},
		&gormModels.Approval{},
		&gormModels.AuditLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

// testFixture seeds the users, event and sectors every workflow test needs.
type testFixture struct {
	db       *gorm.DB
	relator  gormModels.User
	approver gormModels.User
	admin    gormModels.User
	event    gormModels.Event
	// vipSector requires approval with one approver; openSector does not.
	vipSector  gormModels.Sector
	openSector gormModels.Sector
	// orphanSector requires approval but has no approvers configured.
	orphanSector gormModels.Sector
}

func seedWorkflow(t *testing.T, db *gorm.DB) *testFixture {
	f := &testFixture{db: db}

	f.relator = gormModels.User{Name: "Rel Uno", Email: "relator@test.local", Role: constants.RoleRelator, IsActive: true}
	f.approver = gormModels.User{Name: "Apr Uno", Email: "approver@test.local", Role: constants.RoleApprover, IsActive: true}
	f.admin = gormModels.User{Name: "Admin", Email: "admin@test.local", Role: constants.RoleAdmin, IsActive: true}
	for _, u := range []*gormModels.User{&f.relator, &f.approver, &f.admin} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("Failed to seed user: %v", err)
		}
	}

	f.event = gormModels.Event{Name: "Noche Blanca", IsActive: true}
	if err := db.Create(&f.event).Error; err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}

	f.vipSector = gormModels.Sector{Name: "VIP", Code: "VIP", Capacity: 50, RequiresApproval: true, IsActive: true}
	f.openSector = gormModels.Sector{Name: "General", Code: "GEN", Capacity: 200, RequiresApproval: false, IsActive: true}
	f.orphanSector = gormModels.Sector{Name: "Terraza", Code: "TER", Capacity: 40, RequiresApproval: true, IsActive: true}
	for _, s := range []*gormModels.Sector{&f.vipSector, &f.openSector, &f.orphanSector} {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("Failed to seed sector: %v", err)
		}
		es := gormModels.EventSector{EventID: f.event.ID, SectorID: s.ID}
		if err := db.Create(&es).Error; err != nil {
			t.Fatalf("Failed to seed event sector: %v", err)
		}
	}

	sa := gormModels.SectorApprover{SectorID: f.vipSector.ID, UserID: f.approver.ID, Position: 0}
	if err := db.Create(&sa).Error; err != nil {
		t.Fatalf("Failed to seed sector approver: %v", err)
	}

	return f
}

func (f *testFixture) relatorActor() Actor {
	return Actor{ID: f.relator.ID, Role: constants.RoleRelator, Email: f.relator.Email}
}

func (f *testFixture) approverActor() Actor {
	return Actor{ID: f.approver.ID, Role: constants.RoleApprover, Email: f.approver.Email}
}

func (f *testFixture) adminActor() Actor {
	return Actor{ID: f.admin.ID, Role: constants.RoleAdmin, Email: f.admin.Email}
}

func guestInputs(n int) []dtos.GuestInput {
	guests := make([]dtos.GuestInput, n)
	for i := range guests {
		guests[i] = dtos.GuestInput{
			Name: fmt.Sprintf("Invitado %d", i+1),
			CI:   fmt.Sprintf("700%04d", i),
		}
	}
	return guests
}

func createReq(f *testFixture, sectorID string, guests int) *dtos.CreateReservationReq {
	return &dtos.CreateReservationReq{
		EventID:         f.event.ID,
		SectorID:        sectorID,
		TableType:       string(constants.TableJet15),
		TableClass:      string(constants.ClassReservation),
		PaymentType:     string(constants.PaymentPaid),
		ResponsibleName: "Responsable Test",
		Guests:          guestInputs(guests),
	}
}

func newReservationService(db *gorm.DB) *ReservationService {
	return NewReservationService(db, common.NewQRMinter(), NoopNotifier{}, nil)
}

func TestReservationService_Create_SectorWithoutApproval(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	resp, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.openSector.ID, 3))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.Status != string(constants.ReservationApproved) {
		t.Errorf("Expected APPROVED, got %s", resp.Status)
	}
	if len(resp.Guests) != 3 {
		t.Errorf("Expected 3 guests, got %d", len(resp.Guests))
	}
	for _, g := range resp.Guests {
		if g.QRCode == "" {
			t.Error("Expected minted QR token for every guest")
		}
	}

	var audits int64
	db.Model(&gormModels.AuditLog{}).
		Where("action = ? AND reservation_id = ?", constants.ActionCreateReservation, resp.ReservationID).
		Count(&audits)
	if audits != 1 {
		t.Errorf("Expected 1 audit row, got %d", audits)
	}
}

func TestReservationService_Create_RoutesApproval(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	resp, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.vipSector.ID, 1))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.Status != string(constants.ReservationPending) {
		t.Errorf("Expected PENDING, got %s", resp.Status)
	}
	if resp.ApprovalID == nil {
		t.Fatal("Expected an approval to be routed")
	}

	var approval gormModels.Approval
	if err := db.Where("id = ?", *resp.ApprovalID).First(&approval).Error; err != nil {
		t.Fatalf("Approval not found: %v", err)
	}
	if approval.ApproverID != f.approver.ID {
		t.Errorf("Expected approval routed to first approver, got %s", approval.ApproverID)
	}
	if approval.Status != constants.ApprovalPending {
		t.Errorf("Expected PENDING approval, got %s", approval.Status)
	}
}

func TestReservationService_Create_NoApproverConfigured(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	resp, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.orphanSector.ID, 1))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.Status != string(constants.ReservationPending) {
		t.Errorf("Expected PENDING, got %s", resp.Status)
	}
	if resp.ApprovalID != nil {
		t.Error("Expected no approval row for a sector with no approvers")
	}
	if !resp.PendingNoApprover {
		t.Error("Expected PendingNoApprover to be surfaced")
	}
}

func TestReservationService_Create_ValidationFailures(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	req := createReq(f, f.openSector.ID, 1)
	req.Guests = nil

	_, err := svc.Create(context.Background(), f.relatorActor(), req)
	werr, ok := err.(*WorkflowError)
	if !ok {
		t.Fatalf("Expected WorkflowError, got %v", err)
	}
	if werr.Kind != KindValidation {
		t.Errorf("Expected validation error, got %s", werr.Kind)
	}
	if len(werr.Fields) == 0 {
		t.Error("Expected offending fields to be reported")
	}
}

func TestReservationService_Create_CapacityExceeded(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	req := createReq(f, f.openSector.ID, 11)
	req.TableType = string(constants.TableFly10)

	_, err := svc.Create(context.Background(), f.relatorActor(), req)
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindCapacityExceeded {
		t.Fatalf("Expected capacity error, got %v", err)
	}
}

func TestReservationService_Create_UnknownEvent(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	req := createReq(f, f.openSector.ID, 1)
	req.EventID = "00000000-0000-0000-0000-000000000000"

	_, err := svc.Create(context.Background(), f.relatorActor(), req)
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindNotFound {
		t.Fatalf("Expected not found error, got %v", err)
	}
}

func TestReservationService_Cancel(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	resp, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.openSector.ID, 2))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Cancel(context.Background(), f.relatorActor(), resp.ReservationID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	var reservation gormModels.Reservation
	db.Where("id = ?", resp.ReservationID).First(&reservation)
	if reservation.Status != constants.ReservationCancelled {
		t.Errorf("Expected CANCELLED, got %s", reservation.Status)
	}

	// Terminal state blocks a second cancel.
	err = svc.Cancel(context.Background(), f.relatorActor(), resp.ReservationID)
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindPreconditionFailed {
		t.Fatalf("Expected precondition error on double cancel, got %v", err)
	}
}

func TestReservationService_Cancel_ForbiddenForStranger(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	resp, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.openSector.ID, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stranger := Actor{ID: f.approver.ID, Role: constants.RoleApprover}
	err = svc.Cancel(context.Background(), stranger, resp.ReservationID)
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindForbidden {
		t.Fatalf("Expected forbidden error, got %v", err)
	}

	// An admin who is not the owner may cancel.
	if err := svc.Cancel(context.Background(), f.adminActor(), resp.ReservationID); err != nil {
		t.Fatalf("Admin cancel failed: %v", err)
	}
}

func TestReservationService_Create_UsesCachedLookups(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := NewReservationService(db, common.NewQRMinter(), NoopNotifier{}, common.NewCacheService(60, 60, nil))

	if _, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.openSector.ID, 1)); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	// Deactivate both rows; within the TTL the cache still serves them.
	db.Model(&gormModels.Event{}).Where("id = ?", f.event.ID).Update("is_active", false)
	db.Model(&gormModels.Sector{}).Where("id = ?", f.openSector.ID).Update("is_active", false)

	if _, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.openSector.ID, 1)); err != nil {
		t.Fatalf("Expected cached event and sector lookups, got %v", err)
	}
}

func TestReservationService_Update_NonStructuralOnly(t *testing.T) {
	db := setupTestDB(t)
	f := seedWorkflow(t, db)
	svc := newReservationService(db)

	resp, err := svc.Create(context.Background(), f.relatorActor(), createReq(f, f.openSector.ID, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	name := "Nuevo Responsable"
	err = svc.Update(context.Background(), f.relatorActor(), resp.ReservationID, &dtos.UpdateReservationReq{
		ResponsibleName: &name,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var reservation gormModels.Reservation
	db.Where("id = ?", resp.ReservationID).First(&reservation)
	if reservation.ResponsibleName != name {
		t.Errorf("Expected responsible name updated, got %s", reservation.ResponsibleName)
	}

	// Empty patch is rejected.
	err = svc.Update(context.Background(), f.relatorActor(), resp.ReservationID, &dtos.UpdateReservationReq{})
	werr, ok := err.(*WorkflowError)
	if !ok || werr.Kind != KindValidation {
		t.Fatalf("Expected validation error for empty patch, got %v", err)
	}
}
