package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixSector CachePrefix = "SECTOR_"
	CachePrefixEvent  CachePrefix = "EVENT_"
)

// Realtime event names emitted over the publisher port, scoped to the
// owning relator on the client side.
const (
	RealtimeReservationApproved = "reservation-approved"
	RealtimeReservationRejected = "reservation-rejected"
	RealtimeReservationPending  = "reservation-pending"
	RealtimeReservationTransfer = "reservation-transferred"
)

// Redis stream used for queued outbound mail.
const (
	MailStream        = "reservas:mail"
	MailConsumerGroup = "mail-senders"
)
