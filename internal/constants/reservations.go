package constants

import (
	"database/sql/driver"
	"fmt"
)

// ReservationStatus mirrors the Postgres ENUM 'reservation_status'
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationApproved  ReservationStatus = "APPROVED"
	ReservationRejected  ReservationStatus = "REJECTED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

func (s ReservationStatus) String() string { return string(s) }

// IsTerminal reports whether no further approval transition is possible.
// APPROVED stays mutable through transfers, REJECTED and CANCELLED do not.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationRejected || s == ReservationCancelled
}

func (s *ReservationStatus) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = ReservationStatus(v)
	case []byte:
		*s = ReservationStatus(v)
	default:
		return fmt.Errorf("ReservationStatus: cannot scan type %T", src)
	}
	return nil
}

func (s ReservationStatus) Value() (driver.Value, error) { return string(s), nil }

// TableType identifies the table product sold for an event.
type TableType string

const (
	TableJet15         TableType = "JET_15"
	TableFly10         TableType = "FLY_10"
	TableJetBirthday15 TableType = "JET_BIRTHDAY_15"
	TableFlyBirthday10 TableType = "FLY_BIRTHDAY_10"
)

// tableCapacities is fixed per product, independent of sector capacity.
var tableCapacities = map[TableType]int{
	TableJet15:         15,
	TableFly10:         10,
	TableJetBirthday15: 15,
	TableFlyBirthday10: 10,
}

// Capacity returns the seat count for the table type, or 0 for an
// unknown type so callers can treat it as a validation failure.
func (t TableType) Capacity() int { return tableCapacities[t] }

func (t TableType) Valid() bool {
	_, ok := tableCapacities[t]
	return ok
}

func (t TableType) String() string { return string(t) }

// TableClass distinguishes how the table was sold.
type TableClass string

const (
	ClassReservation   TableClass = "RESERVATION"
	ClassGuest         TableClass = "GUEST"
	ClassCollaboration TableClass = "COLLABORATION"
)

func (c TableClass) Valid() bool {
	switch c {
	case ClassReservation, ClassGuest, ClassCollaboration:
		return true
	}
	return false
}

// PaymentType for a reservation.
type PaymentType string

const (
	PaymentPaid    PaymentType = "PAID"
	PaymentPartial PaymentType = "PARTIAL"
	PaymentGuest   PaymentType = "GUEST"
)

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentPaid, PaymentPartial, PaymentGuest:
		return true
	}
	return false
}

// ApprovalStatus mirrors the Postgres ENUM 'approval_status'
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

func (s ApprovalStatus) String() string { return string(s) }

// PassStatus mirrors the Postgres ENUM 'pass_status'
type PassStatus string

const (
	PassActive  PassStatus = "ACTIVE"
	PassUsed    PassStatus = "USED"
	PassRevoked PassStatus = "REVOKED"
)

func (s PassStatus) String() string { return string(s) }

// TransferType selects the structural mutation applied to an approved reservation.
type TransferType string

const (
	TransferSector    TransferType = "SECTOR"
	TransferEvent     TransferType = "EVENT"
	TransferRelator   TransferType = "RELATOR"
	TransferTableType TransferType = "TABLE_TYPE"
	TransferMerge     TransferType = "MERGE"
	TransferSplit     TransferType = "SPLIT"
)

func (t TransferType) Valid() bool {
	switch t {
	case TransferSector, TransferEvent, TransferRelator, TransferTableType, TransferMerge, TransferSplit:
		return true
	}
	return false
}

// MinReasonLen is the minimum length for transfer/revocation/pass reasons.
const MinReasonLen = 10

// MinCommentLen is the minimum length for rejection comments.
const MinCommentLen = 10
