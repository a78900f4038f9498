package constants

// AuditAction tags one append-only audit_logs row per state-changing operation.
type AuditAction string

const (
	ActionCreateReservation  AuditAction = "CREATE_RESERVATION"
	ActionUpdateReservation  AuditAction = "UPDATE_RESERVATION"
	ActionCancelReservation  AuditAction = "CANCEL_RESERVATION"
	ActionApproveReservation AuditAction = "APPROVE_RESERVATION"
	ActionRejectReservation  AuditAction = "REJECT_RESERVATION"

	ActionValidateQR             AuditAction = "VALIDATE_QR"
	ActionValidateAdditionalPass AuditAction = "VALIDATE_ADDITIONAL_PASS"

	ActionCreateAdditionalPass AuditAction = "CREATE_ADDITIONAL_PASS"
	ActionRevokeAdditionalPass AuditAction = "REVOKE_ADDITIONAL_PASS"

	ActionTransferSector    AuditAction = "TRANSFER_SECTOR"
	ActionTransferEvent     AuditAction = "TRANSFER_EVENT"
	ActionTransferRelator   AuditAction = "TRANSFER_RELATOR"
	ActionChangeTableType   AuditAction = "CHANGE_TABLE_TYPE"
	ActionMergeReservations AuditAction = "MERGE_RESERVATIONS"
	ActionSplitReservation  AuditAction = "SPLIT_RESERVATION"
)

func (a AuditAction) String() string { return string(a) }

// TransferActions lists the audit actions written by transfer operations,
// in the order they were introduced. Used by the history read path.
var TransferActions = []AuditAction{
	ActionTransferSector,
	ActionTransferEvent,
	ActionTransferRelator,
	ActionChangeTableType,
	ActionMergeReservations,
	ActionSplitReservation,
}
