package dtos

// ---- RESERVATIONS ----

type GuestInput struct {
	Name  string  `json:"name"`
	CI    string  `json:"ci"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

type CreateReservationReq struct {
	EventID          string       `json:"eventId"`
	SectorID         string       `json:"sectorId"`
	TableType        string       `json:"tableType"`
	TableClass       string       `json:"tableClass"`
	PaymentType      string       `json:"paymentType"`
	PaymentAmount    *string      `json:"paymentAmount,omitempty"`
	RelatorSaleID    *string      `json:"relatorSaleId,omitempty"`
	ResponsibleName  string       `json:"responsibleName"`
	ResponsiblePhone *string      `json:"responsiblePhone,omitempty"`
	Notes            *string      `json:"notes,omitempty"`
	Guests           []GuestInput `json:"guests"`
}

// UpdateReservationReq carries the non-structural fields a relator may
// patch. Structural changes (sector, event, table type) go through
// transfers only.
type UpdateReservationReq struct {
	ResponsibleName  *string `json:"responsibleName,omitempty"`
	ResponsiblePhone *string `json:"responsiblePhone,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// ---- APPROVALS ----

type DecideApprovalReq struct {
	Decision string `json:"decision"` // APPROVE | REJECT
	Comments string `json:"comments"`
}

// ---- VALIDATOR ----

type ScanReq struct {
	QRCode string `json:"qrCode"`
}

// ---- TRANSFERS ----

type TransferReq struct {
	ReservationID          string   `json:"reservationId"`
	TransferType           string   `json:"transferType"`
	NewSectorID            *string  `json:"newSectorId,omitempty"`
	NewEventID             *string  `json:"newEventId,omitempty"`
	NewRelatorID           *string  `json:"newRelatorId,omitempty"`
	NewTableType           *string  `json:"newTableType,omitempty"`
	MergeWithReservationID *string  `json:"mergeWithReservationId,omitempty"`
	SplitGuestIDs          []string `json:"splitGuestIds,omitempty"`
	NewResponsibleName     *string  `json:"newResponsibleName,omitempty"`
	Reason                 string   `json:"reason"`
	NotifyUsers            bool     `json:"notifyUsers"`
}

// ---- ADDITIONAL PASSES ----

type CreatePassReq struct {
	ReservationID string  `json:"reservationId"`
	GuestName     string  `json:"guestName"`
	GuestCI       string  `json:"guestCI"`
	GuestPhone    *string `json:"guestPhone,omitempty"`
	Reason        string  `json:"reason"`
}

type RevokePassReq struct {
	Reason string `json:"reason"`
}
