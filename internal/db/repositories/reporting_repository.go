package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mesaclub/reservas/internal/constants"
)

// ReportingRepository serves the read-only reporting queries over the
// sqlx connection. Mutations never go through here.
type ReportingRepository struct {
	db *sqlx.DB
}

func NewReportingRepository(db *sqlx.DB) *ReportingRepository {
	return &ReportingRepository{db}
}

// AuditRow is the raw audit_logs projection used by the transfer history.
type AuditRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	Action        string         `db:"action"`
	Entity        string         `db:"entity"`
	EntityID      sql.NullString `db:"entity_id"`
	ReservationID sql.NullString `db:"reservation_id"`
	OldData       []byte         `db:"old_data"`
	NewData       []byte         `db:"new_data"`
	CreatedAt     time.Time      `db:"created_at"`
}

// ValidatorTotalsRow aggregates lifetime validation counts.
type ValidatorTotalsRow struct {
	GuestsValidated int `db:"guests_validated"`
	PassesValidated int `db:"passes_validated"`
}

// PendingApprovalRow joins a pending approval with its reservation summary.
type PendingApprovalRow struct {
	ID              string         `db:"id"`
	ReservationID   string         `db:"reservation_id"`
	ApproverID      string         `db:"approver_id"`
	Status          string         `db:"status"`
	Comments        sql.NullString `db:"comments"`
	CreatedAt       time.Time      `db:"created_at"`
	EventID         string         `db:"event_id"`
	SectorID        string         `db:"sector_id"`
	TableType       string         `db:"table_type"`
	ResponsibleName string         `db:"responsible_name"`
	RelatorMainID   string         `db:"relator_main_id"`
}

// TransferHistory lists the audit rows for transfer actions on a reservation.
func (r *ReportingRepository) TransferHistory(ctx context.Context, reservationID string) ([]AuditRow, error) {
	actions := make([]string, 0, len(constants.TransferActions))
	for _, a := range constants.TransferActions {
		actions = append(actions, string(a))
	}

	var rows []AuditRow
	err := r.db.SelectContext(ctx, &rows, constants.QueryTransferHistory, reservationID, pq.Array(actions))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transfer history: %w", err)
	}
	return rows, nil
}

// ValidatorTotals returns lifetime guest and pass validation counts.
func (r *ReportingRepository) ValidatorTotals(ctx context.Context) (*ValidatorTotalsRow, error) {
	var row ValidatorTotalsRow
	err := r.db.GetContext(ctx, &row, constants.QueryValidatorTotals)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch validator totals: %w", err)
	}
	return &row, nil
}

// ValidationsToday counts scans performed today by the given validator.
func (r *ReportingRepository) ValidationsToday(ctx context.Context, validatorID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, constants.QueryValidatorToday, validatorID)
	if err != nil {
		return 0, fmt.Errorf("failed to count validations: %w", err)
	}
	return count, nil
}

// LastValidation returns the timestamp of the validator's most recent scan.
func (r *ReportingRepository) LastValidation(ctx context.Context, validatorID string) (*time.Time, error) {
	var ts time.Time
	err := r.db.GetContext(ctx, &ts, constants.QueryLastValidation, validatorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch last validation: %w", err)
	}
	return &ts, nil
}

// PendingApprovals lists the approver's open inbox, newest first.
func (r *ReportingRepository) PendingApprovals(ctx context.Context, approverID string) ([]PendingApprovalRow, error) {
	var rows []PendingApprovalRow
	err := r.db.SelectContext(ctx, &rows, constants.QueryPendingApprovals, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending approvals: %w", err)
	}
	return rows, nil
}
