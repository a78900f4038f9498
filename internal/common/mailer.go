package common

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"mesaclub/reservas/internal/config"
)

// termsBlock is appended verbatim to every confirmation email.
const termsBlock = `
<hr>
<h4>Términos y condiciones</h4>
<p>El código QR es personal e intransferible y permite un único ingreso.
La reserva no garantiza permanencia en caso de incumplimiento de las
normas del local. La administración se reserva el derecho de admisión.</p>
`

// Mailer sends workflow emails over SMTP. All sends are best-effort;
// callers never treat a mail failure as a workflow failure.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.Config) *Mailer {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.SMTPFrom,
	}
}

// GuestQR pairs a guest name with their rendered QR image for
// confirmation emails.
type GuestQR struct {
	Name    string `json:"name"`
	QRImage string `json:"qr_image"` // data URL
}

func (m *Mailer) SendApprovalRequest(to, eventName, sectorName, relatorName string) error {
	html := fmt.Sprintf(`<h1>Reserva pendiente de aprobación</h1>
<p>El relacionador <strong>%s</strong> ha creado una reserva que requiere tu aprobación.</p>
<ul><li>Evento: %s</li><li>Sector: %s</li></ul>`, relatorName, eventName, sectorName)
	return m.send(to, "Reserva pendiente de aprobación", html, nil)
}

func (m *Mailer) SendReservationConfirmation(to, eventName, sectorName string, guests []GuestQR) error {
	var b strings.Builder
	b.WriteString("<h1>Reserva Aprobada</h1>")
	b.WriteString("<p>Su reserva ha sido aprobada exitosamente.</p>")
	fmt.Fprintf(&b, "<ul><li>Evento: %s</li><li>Sector: %s</li></ul>", eventName, sectorName)
	var attachments []Attachment
	for i, g := range guests {
		fmt.Fprintf(&b, "<p>%s — ver código QR adjunto</p>", g.Name)
		attachments = append(attachments, Attachment{
			Name:    fmt.Sprintf("qr-%d.png", i+1),
			DataURL: g.QRImage,
		})
	}
	b.WriteString(termsBlock)
	return m.send(to, "Reserva Aprobada", b.String(), attachments)
}

func (m *Mailer) SendRejection(to, reason string) error {
	if reason == "" {
		reason = "No especificado"
	}
	html := fmt.Sprintf(`<h1>Reserva Rechazada</h1>
<p>Lamentamos informarle que su reserva ha sido rechazada.</p>
<p><strong>Motivo:</strong> %s</p>`, reason)
	return m.send(to, "Reserva Rechazada", html, nil)
}

func (m *Mailer) SendTransferNotice(to, transferType, reason string) error {
	html := fmt.Sprintf(`<h1>Reserva Modificada</h1>
<p>Su reserva fue modificada (%s). Revisa los detalles en el sistema.</p>
<p><strong>Razón:</strong> %s</p>`, transferType, reason)
	return m.send(to, "Reserva Modificada", html, nil)
}

func (m *Mailer) SendPassQR(to, guestName, eventName, qrImage string) error {
	html := fmt.Sprintf(`<h1>Código QR - Pase Adicional</h1>
<p>Se ha generado un pase adicional para la reserva.</p>
<ul><li>Evento: %s</li><li>Invitado: %s</li></ul>`, eventName, guestName)
	return m.send(to, "Código QR - Pase Adicional", html, []Attachment{{Name: "pase.png", DataURL: qrImage}})
}

// Attachment is a named inline PNG, carried as a data URL so mail jobs
// serialize cleanly through the queue.
type Attachment struct {
	Name    string `json:"name"`
	DataURL string `json:"data_url"`
}

func (m *Mailer) send(to, subject, html string, attachments []Attachment) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	for _, a := range attachments {
		raw, err := decodeDataURL(a.DataURL)
		if err != nil {
			continue
		}
		msg.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(raw)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func decodeDataURL(u string) ([]byte, error) {
	idx := strings.Index(u, "base64,")
	if idx < 0 {
		return nil, fmt.Errorf("not a base64 data URL")
	}
	return base64.StdEncoding.DecodeString(u[idx+len("base64,"):])
}
