package dtos

import "time"

// APIResponse is the standard envelope for all JSON responses.
type APIResponse struct {
	Status       string   `json:"status"`
	Message      string   `json:"message,omitempty"`
	ResponseTime string   `json:"response_time,omitempty"`
	Data         any      `json:"data,omitempty"`
	Fields       []string `json:"fields,omitempty"`
}

// ---- RESERVATIONS ----

type GuestView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	CI          string     `json:"ci"`
	QRCode      string     `json:"qrCode"`
	QRValidated bool       `json:"qrValidated"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty"`
}

type CreateReservationResp struct {
	ReservationID     string      `json:"reservationId"`
	Status            string      `json:"status"`
	Guests            []GuestView `json:"guests"`
	ApprovalID        *string     `json:"approvalId,omitempty"`
	PendingNoApprover bool        `json:"pendingNoApprover,omitempty"`
}

// ---- VALIDATOR ----

type ScanResp struct {
	GuestName        string    `json:"guestName"`
	GuestCI          string    `json:"guestCI"`
	IsAdditionalPass bool      `json:"isAdditionalPass"`
	ReservationID    string    `json:"reservationId"`
	ResponsibleName  string    `json:"responsibleName"`
	TableType        string    `json:"tableType"`
	SectorName       string    `json:"sectorName"`
	EventName        string    `json:"eventName"`
	ValidatedAt      time.Time `json:"validatedAt"`
}

type ValidatorStatsResp struct {
	GuestsValidated    int        `json:"guestsValidated"`
	PassesValidated    int        `json:"passesValidated"`
	MyValidationsToday int        `json:"myValidationsToday"`
	LastValidation     *time.Time `json:"lastValidation,omitempty"`
}

// ---- APPROVALS ----

type PendingApprovalView struct {
	ID              string    `json:"id"`
	ReservationID   string    `json:"reservationId"`
	EventID         string    `json:"eventId"`
	SectorID        string    `json:"sectorId"`
	TableType       string    `json:"tableType"`
	ResponsibleName string    `json:"responsibleName"`
	RelatorMainID   string    `json:"relatorMainId"`
	CreatedAt       time.Time `json:"createdAt"`
}

type DecisionResp struct {
	ApprovalID        string `json:"approvalId"`
	ReservationID     string `json:"reservationId"`
	ReservationStatus string `json:"reservationStatus"`
}

// ---- TRANSFERS ----

type TransferResp struct {
	TransferType     string  `json:"transferType"`
	ReservationID    string  `json:"reservationId"`
	NewReservationID *string `json:"newReservationId,omitempty"`
	Status           string  `json:"status"`
	RegeneratedQRs   bool    `json:"regeneratedQRs,omitempty"`
}

type TransferHistoryEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Action    string         `json:"action"`
	OldData   map[string]any `json:"oldData,omitempty"`
	NewData   map[string]any `json:"newData,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ---- ADDITIONAL PASSES ----

type PassView struct {
	ID            string     `json:"id"`
	ReservationID string     `json:"reservationId"`
	GuestName     string     `json:"guestName"`
	GuestCI       string     `json:"guestCI"`
	QRCode        string     `json:"qrCode"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason"`
	QRValidated   bool       `json:"qrValidated"`
	ValidatedAt   *time.Time `json:"validatedAt,omitempty"`
}

type PassQRResp struct {
	QRCode    string `json:"qrCode"`
	QRImage   string `json:"qrImage"` // base64 PNG data URL
	GuestName string `json:"guestName"`
	GuestCI   string `json:"guestCI"`
}
