package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/constants"
	"mesaclub/reservas/internal/logging"
	"mesaclub/reservas/internal/metrics"
	gormModels "mesaclub/reservas/internal/models/gorm"
)

// Notifier is the side-effect port the workflow emits through. Every
// method is best-effort; implementations log failures and never return
// them into the transaction path.
type Notifier interface {
	ApprovalRequested(ctx context.Context, approverEmail, eventName, sectorName, relatorName, relatorID string, reservationID string)
	ReservationApproved(ctx context.Context, relatorEmail, eventName, sectorName string, guests []gormModels.Guest, relatorID, reservationID string)
	ReservationRejected(ctx context.Context, relatorEmail, reason, relatorID, reservationID string)
	ReservationTransferred(ctx context.Context, relatorEmail, transferType, reason, relatorID, reservationID string)
	PassCreated(ctx context.Context, relatorEmail, guestName, eventName, qrToken string)
}

// QueueNotifier pushes emails onto the Redis mail stream and mirrors
// workflow events to the realtime publisher.
type QueueNotifier struct {
	queue    *common.MailQueueService
	realtime common.RealtimePublisher
	metrics  *metrics.MetricsRegistry
}

var _ Notifier = (*QueueNotifier)(nil)

func NewQueueNotifier(queue *common.MailQueueService, realtime common.RealtimePublisher, reg *metrics.MetricsRegistry) *QueueNotifier {
	return &QueueNotifier{queue: queue, realtime: realtime, metrics: reg}
}

func (n *QueueNotifier) enqueue(ctx context.Context, job *common.MailJob) {
	if err := n.queue.Enqueue(ctx, job); err != nil {
		logging.Error("Failed to enqueue mail job", "kind", string(job.Kind), "error", err)
		return
	}
	if n.metrics != nil {
		n.metrics.MailJobsEnqueuedTotal.WithLabelValues(string(job.Kind)).Inc()
	}
}

func (n *QueueNotifier) emit(ctx context.Context, event, relatorID string, payload any) {
	if err := n.realtime.Emit(ctx, event, relatorID, payload); err != nil {
		logging.Error("Failed to publish realtime event", "event", event, "error", err)
	}
}

func (n *QueueNotifier) ApprovalRequested(ctx context.Context, approverEmail, eventName, sectorName, relatorName, relatorID string, reservationID string) {
	n.enqueue(ctx, &common.MailJob{
		Kind:        common.MailApprovalRequest,
		To:          approverEmail,
		EventName:   eventName,
		SectorName:  sectorName,
		RelatorName: relatorName,
	})
	n.emit(ctx, constants.RealtimeReservationPending, relatorID, map[string]string{
		"reservationId": reservationID,
	})
}

// ReservationApproved renders one QR image per guest concurrently, then
// ships a single confirmation mail carrying all of them.
func (n *QueueNotifier) ReservationApproved(ctx context.Context, relatorEmail, eventName, sectorName string, guests []gormModels.Guest, relatorID, reservationID string) {
	images := make([]common.GuestQR, len(guests))

	g, gctx := errgroup.WithContext(ctx)
	for i, guest := range guests {
		i, guest := i, guest
		g.Go(func() error {
			img, err := common.RenderPNG(guest.QRCode, 256)
			if err != nil {
				return err
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			images[i] = common.GuestQR{Name: guest.Name, QRImage: img}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.Error("Failed to render guest QR images", "reservation_id", reservationID, "error", err)
		images = nil
	}

	n.enqueue(ctx, &common.MailJob{
		Kind:       common.MailConfirmation,
		To:         relatorEmail,
		EventName:  eventName,
		SectorName: sectorName,
		Guests:     images,
	})
	n.emit(ctx, constants.RealtimeReservationApproved, relatorID, map[string]string{
		"reservationId": reservationID,
	})
}

func (n *QueueNotifier) ReservationRejected(ctx context.Context, relatorEmail, reason, relatorID, reservationID string) {
	n.enqueue(ctx, &common.MailJob{
		Kind:   common.MailRejection,
		To:     relatorEmail,
		Reason: reason,
	})
	n.emit(ctx, constants.RealtimeReservationRejected, relatorID, map[string]string{
		"reservationId": reservationID,
		"reason":        reason,
	})
}

func (n *QueueNotifier) ReservationTransferred(ctx context.Context, relatorEmail, transferType, reason, relatorID, reservationID string) {
	n.enqueue(ctx, &common.MailJob{
		Kind:         common.MailTransferNotice,
		To:           relatorEmail,
		TransferType: transferType,
		Reason:       reason,
	})
	n.emit(ctx, constants.RealtimeReservationTransfer, relatorID, map[string]string{
		"reservationId": reservationID,
		"transferType":  transferType,
	})
}

func (n *QueueNotifier) PassCreated(ctx context.Context, relatorEmail, guestName, eventName, qrToken string) {
	img, err := common.RenderPNG(qrToken, 256)
	if err != nil {
		logging.Error("Failed to render pass QR image", "error", err)
	}
	n.enqueue(ctx, &common.MailJob{
		Kind:      common.MailPassQR,
		To:        relatorEmail,
		GuestName: guestName,
		EventName: eventName,
		QRImage:   img,
	})
}

// NoopNotifier drops every notification. Used in tests.
type NoopNotifier struct{}

var _ Notifier = (*NoopNotifier)(nil)

func (NoopNotifier) ApprovalRequested(context.Context, string, string, string, string, string, string) {
}
func (NoopNotifier) ReservationApproved(context.Context, string, string, string, []gormModels.Guest, string, string) {
}
func (NoopNotifier) ReservationRejected(context.Context, string, string, string, string)    {}
func (NoopNotifier) ReservationTransferred(context.Context, string, string, string, string, string) {}
func (NoopNotifier) PassCreated(context.Context, string, string, string, string)            {}
