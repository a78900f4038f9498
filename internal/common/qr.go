package common

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// QRMinter produces globally-unique opaque entry tokens. Uniqueness is
// ultimately enforced by the qr_code unique index, not by the generator.
type QRMinter struct{}

func NewQRMinter() *QRMinter { return &QRMinter{} }

// MintGuestToken returns a fresh token for a guest credential.
func (m *QRMinter) MintGuestToken() string {
	return "GUEST-" + uuid.NewString()
}

// MintPassToken returns a fresh token for an additional pass.
func (m *QRMinter) MintPassToken() string {
	return "PASS-" + uuid.NewString()
}

// RenderPNG renders the token as a PNG data URL for emails and the pass
// QR endpoint.
func RenderPNG(token string, size int) (string, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to render QR: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
