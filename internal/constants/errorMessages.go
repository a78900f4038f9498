package constants

// Operator-facing messages stay in Spanish, matching what door staff and
// relators see in the clients.
const (
	MsgQRInvalid              = "QR no válido"
	MsgQRAlreadyUsed          = "Este código QR ya fue escaneado anteriormente"
	MsgPassRevoked            = "Este pase ha sido revocado"
	MsgPassUsed               = "Este pase ya ha sido usado"
	MsgReservationNotApproved = "Esta reserva no ha sido aprobada aún"
	MsgAccessGranted          = "Acceso permitido"

	MsgReservationNotFound = "Reserva no encontrada"
	MsgEventNotFound       = "Evento no válido"
	MsgSectorNotFound      = "Sector no válido"
	MsgApprovalNotFound    = "Aprobación no encontrada"
	MsgPassNotFound        = "Pase no encontrado"

	MsgApprovalDecided  = "Esta aprobación ya fue decidida"
	MsgCapacityExceeded = "Capacidad máxima alcanzada"
	MsgOnlyApproved     = "Solo se pueden modificar reservas aprobadas"
	MsgForbidden        = "No tienes permiso para realizar esta acción"
)

// Queries used by the sqlx read path (reporting only, never mutations).
const (
	QueryTransferHistory = `
	SELECT id, user_id, action, entity, entity_id, reservation_id, old_data, new_data, created_at
	FROM audit_logs
	WHERE reservation_id = $1 AND action = ANY($2)
	ORDER BY created_at DESC
	`

	QueryValidatorTotals = `
	SELECT
		(SELECT COUNT(*) FROM guests WHERE qr_validated = TRUE) AS guests_validated,
		(SELECT COUNT(*) FROM additional_passes WHERE qr_validated = TRUE) AS passes_validated
	`

	QueryValidatorToday = `
	SELECT COUNT(*) FROM audit_logs
	WHERE user_id = $1
	  AND action IN ('VALIDATE_QR', 'VALIDATE_ADDITIONAL_PASS')
	  AND created_at >= CURRENT_DATE
	`

	QueryLastValidation = `
	SELECT created_at FROM audit_logs
	WHERE user_id = $1
	  AND action IN ('VALIDATE_QR', 'VALIDATE_ADDITIONAL_PASS')
	ORDER BY created_at DESC
	LIMIT 1
	`

	QueryPendingApprovals = `
	SELECT a.id, a.reservation_id, a.approver_id, a.status, a.comments, a.created_at,
	       r.event_id, r.sector_id, r.table_type, r.responsible_name, r.relator_main_id
	FROM approvals a
	JOIN reservations r ON r.id = a.reservation_id
	WHERE a.approver_id = $1 AND a.status = 'PENDING'
	ORDER BY a.created_at DESC
	`
)
