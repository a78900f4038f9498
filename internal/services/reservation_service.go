package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/logging"
	"mesaclub/reservas/internal/models/dtos"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

// Actor is the authenticated identity a service operation runs as.
type Actor struct {
	ID    string
	Role  constants.UserRole
	Email string
}

func (a Actor) IsAdmin() bool { return a.Role == constants.RoleAdmin }

// ReservationService drives the reservation lifecycle: creation with
// approval routing, cancellation and non-structural updates.
type ReservationService struct {
	db       *gorm.DB
	minter   *common.QRMinter
	notifier Notifier
	cache    *common.CacheService
}

func NewReservationService(db *gorm.DB, minter *common.QRMinter, notifier Notifier, cache *common.CacheService) *ReservationService {
	return &ReservationService{db: db, minter: minter, notifier: notifier, cache: cache}
}

// cacheTTL bounds how stale an event or sector row may be served. Both
// change rarely; approver lists are reloaded on every create anyway.
const cacheTTL = 2 * time.Minute

func (svc *ReservationService) loadEvent(ctx context.Context, eventID string) (*gormModels.Event, error) {
	load := func() (any, error) {
		var event gormModels.Event
		err := svc.db.WithContext(ctx).Where("id = ? AND is_active = ?", eventID, true).First(&event).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, NewNotFoundError(constants.MsgEventNotFound)
			}
			return nil, fmt.Errorf("failed to load event: %w", err)
		}
		return &event, nil
	}

	if svc.cache == nil {
		val, err := load()
		if err != nil {
			return nil, err
		}
		return val.(*gormModels.Event), nil
	}

	val, err := svc.cache.GetOrSet(string(constants.CachePrefixEvent)+eventID, cacheTTL, load)
	if err != nil {
		return nil, err
	}
	return val.(*gormModels.Event), nil
}

func (svc *ReservationService) loadSector(ctx context.Context, sectorID string) (*gormModels.Sector, error) {
	load := func() (any, error) {
		var sector gormModels.Sector
		err := svc.db.WithContext(ctx).Where("id = ? AND is_active = ?", sectorID, true).First(&sector).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, NewNotFoundError(constants.MsgSectorNotFound)
			}
			return nil, fmt.Errorf("failed to load sector: %w", err)
		}
		return &sector, nil
	}

	if svc.cache == nil {
		val, err := load()
		if err != nil {
			return nil, err
		}
		return val.(*gormModels.Sector), nil
	}

	val, err := svc.cache.GetOrSet(string(constants.CachePrefixSector)+sectorID, cacheTTL, load)
	if err != nil {
		return nil, err
	}
	return val.(*gormModels.Sector), nil
}

// Create validates the request, creates the reservation with its guests
// in one transaction and routes it for approval when the sector demands
// one. Initial status is APPROVED when the sector does not require
// approval, PENDING otherwise.
func (svc *ReservationService) Create(ctx context.Context, actor Actor, req *dtos.CreateReservationReq) (*dtos.CreateReservationResp, error) {
	if werr := validateCreateReq(req); werr != nil {
		return nil, werr
	}

	event, err := svc.loadEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	sector, err := svc.loadSector(ctx, req.SectorID)
	if err != nil {
		return nil, err
	}

	// Approver routing is never served from cache.
	var approvers []gormModels.SectorApprover
	if sector.RequiresApproval {
		err = svc.db.WithContext(ctx).
			Where("sector_id = ?", sector.ID).
			Order("position ASC").
			Find(&approvers).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load approvers: %w", err)
		}
	}

	var configured int64
	err = svc.db.WithContext(ctx).Model(&gormModels.EventSector{}).
		Where("event_id = ? AND sector_id = ?", event.ID, sector.ID).
		Count(&configured).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check event sector: %w", err)
	}
	if configured == 0 {
		return nil, NewNotFoundError(constants.MsgSectorNotFound)
	}

	tableType := constants.TableType(req.TableType)
	if len(req.Guests) > tableType.Capacity() {
		return nil, NewCapacityError(constants.MsgCapacityExceeded)
	}

	status := constants.ReservationApproved
	if sector.RequiresApproval {
		status = constants.ReservationPending
	}

	reservation := gormModels.Reservation{
		EventID:          event.ID,
		SectorID:         sector.ID,
		TableType:        tableType,
		TableClass:       constants.TableClass(req.TableClass),
		PaymentType:      constants.PaymentType(req.PaymentType),
		Status:           status,
		RelatorMainID:    actor.ID,
		RelatorSaleID:    req.RelatorSaleID,
		ResponsibleName:  req.ResponsibleName,
		ResponsiblePhone: req.ResponsiblePhone,
		Notes:            req.Notes,
	}

	if req.PaymentAmount != nil {
		amount, err := decimal.NewFromString(*req.PaymentAmount)
		if err != nil {
			return nil, NewValidationError("Monto de pago inválido", "paymentAmount")
		}
		reservation.PaymentAmount = decimal.NullDecimal{Decimal: amount, Valid: true}
	}

	var approval *gormModels.Approval
	var routedApprover *gormModels.User

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		guests := make([]gormModels.Guest, len(req.Guests))
		for i, g := range req.Guests {
			guests[i] = gormModels.Guest{
				ReservationID: reservation.ID,
				Name:          g.Name,
				CI:            g.CI,
				Phone:         g.Phone,
				Email:         g.Email,
				QRCode:        svc.minter.MintGuestToken(),
			}
		}
		if err := tx.Create(&guests).Error; err != nil {
			return fmt.Errorf("failed to create guests: %w", err)
		}
		reservation.Guests = guests

		if status == constants.ReservationPending && len(approvers) > 0 {
			first := approvers[0]
			approval = &gormModels.Approval{
				ReservationID: reservation.ID,
				ApproverID:    first.UserID,
				Status:        constants.ApprovalPending,
			}
			if err := tx.Create(approval).Error; err != nil {
				return fmt.Errorf("failed to create approval: %w", err)
			}

			var approver gormModels.User
			if err := tx.Where("id = ?", first.UserID).First(&approver).Error; err != nil {
				return fmt.Errorf("failed to load approver: %w", err)
			}
			routedApprover = &approver
		}

		return writeAudit(tx, actor.ID, constants.ActionCreateReservation, "reservation", reservation.ID, &reservation.ID, nil, map[string]interface{}{
			"event_id":   reservation.EventID,
			"sector_id":  reservation.SectorID,
			"table_type": string(reservation.TableType),
			"status":     string(reservation.Status),
			"guests":     len(req.Guests),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := &dtos.CreateReservationResp{
		ReservationID: reservation.ID,
		Status:        string(reservation.Status),
		Guests:        guestViews(reservation.Guests),
	}

	if approval != nil {
		resp.ApprovalID = &approval.ID
		svc.notifier.ApprovalRequested(ctx, routedApprover.Email, event.Name, sector.Name, actor.Email, actor.ID, reservation.ID)
	} else if status == constants.ReservationPending {
		// Requires approval but the sector has no configured approvers.
		// The reservation stays PENDING until an admin resolves it.
		resp.PendingNoApprover = true
		logging.Warn("Reservation pending with no configured approver",
			"reservation_id", reservation.ID,
			"sector_id", sector.ID,
		)
	}

	return resp, nil
}

// Cancel transitions the reservation to CANCELLED from any non-terminal
// state. Only the owning relator or an admin may cancel.
func (svc *ReservationService) Cancel(ctx context.Context, actor Actor, reservationID string) error {
	var reservation gormModels.Reservation
	err := svc.db.WithContext(ctx).Where("id = ?", reservationID).First(&reservation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewNotFoundError(constants.MsgReservationNotFound)
		}
		return fmt.Errorf("failed to load reservation: %w", err)
	}

	if reservation.RelatorMainID != actor.ID && !actor.IsAdmin() {
		return NewForbiddenError(constants.MsgForbidden)
	}

	if reservation.Status.IsTerminal() {
		return NewPreconditionError("La reserva ya está en un estado final")
	}

	oldStatus := reservation.Status

	return svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&reservation).Update("status", constants.ReservationCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation: %w", err)
		}

		return writeAudit(tx, actor.ID, constants.ActionCancelReservation, "reservation", reservation.ID, &reservation.ID,
			map[string]interface{}{"status": string(oldStatus)},
			map[string]interface{}{"status": string(constants.ReservationCancelled)},
		)
	})
}

// Update patches non-structural fields while the reservation is PENDING
// or APPROVED. Structural changes go through transfers only.
func (svc *ReservationService) Update(ctx context.Context, actor Actor, reservationID string, req *dtos.UpdateReservationReq) error {
	var reservation gormModels.Reservation
	err := svc.db.WithContext(ctx).Where("id = ?", reservationID).First(&reservation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewNotFoundError(constants.MsgReservationNotFound)
		}
		return fmt.Errorf("failed to load reservation: %w", err)
	}

	if reservation.RelatorMainID != actor.ID && !actor.IsAdmin() {
		return NewForbiddenError(constants.MsgForbidden)
	}

	if reservation.Status.IsTerminal() {
		return NewPreconditionError("La reserva ya está en un estado final")
	}

	updates := map[string]interface{}{}
	oldData := map[string]interface{}{}
	if req.ResponsibleName != nil {
		oldData["responsible_name"] = reservation.ResponsibleName
		updates["responsible_name"] = *req.ResponsibleName
	}
	if req.ResponsiblePhone != nil {
		updates["responsible_phone"] = *req.ResponsiblePhone
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return NewValidationError("Nada que actualizar")
	}

	return svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&reservation).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}

		newData := map[string]interface{}{}
		for k, v := range updates {
			newData[k] = v
		}

		return writeAudit(tx, actor.ID, constants.ActionUpdateReservation, "reservation", reservation.ID, &reservation.ID, oldData, newData)
	})
}

// Get loads the reservation with guests and passes for the detail view.
func (svc *ReservationService) Get(ctx context.Context, reservationID string) (*gormModels.Reservation, error) {
	var reservation gormModels.Reservation
	err := svc.db.WithContext(ctx).
		Preload("Guests").
		Preload("AdditionalPasses").
		Preload("Approvals").
		Where("id = ?", reservationID).
		First(&reservation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError(constants.MsgReservationNotFound)
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return &reservation, nil
}

func validateCreateReq(req *dtos.CreateReservationReq) *WorkflowError {
	var fields []string

	if !constants.TableType(req.TableType).Valid() {
		fields = append(fields, "tableType")
	}
	if !constants.TableClass(req.TableClass).Valid() {
		fields = append(fields, "tableClass")
	}
	if !constants.PaymentType(req.PaymentType).Valid() {
		fields = append(fields, "paymentType")
	}
	if len(req.ResponsibleName) < 2 {
		fields = append(fields, "responsibleName")
	}
	if len(req.Guests) == 0 {
		fields = append(fields, "guests")
	}
	for i, g := range req.Guests {
		if len(g.Name) < 2 {
			fields = append(fields, fmt.Sprintf("guests[%d].name", i))
		}
		if len(g.CI) < 5 {
			fields = append(fields, fmt.Sprintf("guests[%d].ci", i))
		}
	}

	if len(fields) > 0 {
		return NewValidationError("Datos de reserva inválidos", fields...)
	}
	return nil
}

func guestViews(guests []gormModels.Guest) []dtos.GuestView {
	views := make([]dtos.GuestView, len(guests))
	for i, g := range guests {
		views[i] = dtos.GuestView{
			ID:          g.ID,
			Name:        g.Name,
			CI:          g.CI,
			QRCode:      g.QRCode,
			QRValidated: g.QRValidated,
			ValidatedAt: g.ValidatedAt,
		}
	}
	return views
}
