package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/logging"
)

// MailWorker drains the outbound mail stream and hands each job to the
// SMTP mailer. A failed send is logged and acked; the workflow already
// committed and a retry storm at the door helps nobody.
type MailWorker struct {
	workerID string
	queue    *common.MailQueueService
	mailer   *common.Mailer
}

func NewMailWorker(workerID string, queue *common.MailQueueService, mailer *common.Mailer) *MailWorker {
	return &MailWorker{workerID: workerID, queue: queue, mailer: mailer}
}

// Start runs numWorkers consumers until the context is cancelled.
func (w *MailWorker) Start(ctx context.Context, numWorkers int) error {
	if err := w.queue.CreateConsumerGroup(ctx); err != nil {
		return fmt.Errorf("failed to create mail consumer group: %w", err)
	}

	logging.Info("Starting mail workers", "count", numWorkers, "worker_id", w.workerID)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		consumerName := fmt.Sprintf("%s-mail-%d", w.workerID, i)

		go func(consumerName string) {
			defer wg.Done()
			w.consume(ctx, consumerName)
		}(consumerName)
	}

	wg.Wait()
	logging.Info("All mail workers stopped", "worker_id", w.workerID)
	return nil
}

func (w *MailWorker) consume(ctx context.Context, consumerName string) {
	processed := 0
	failed := 0

	for {
		select {
		case <-ctx.Done():
			logging.Info("Mail worker shutting down", "consumer", consumerName, "processed", processed, "failed", failed)
			return
		default:
			job, messageID, err := w.queue.Dequeue(ctx, consumerName, 5*time.Second)
			if err != nil {
				logging.Error("Failed to dequeue mail job", "consumer", consumerName, "error", err)
				time.Sleep(2 * time.Second)
				continue
			}
			if job == nil {
				continue
			}

			if err := w.dispatch(job); err != nil {
				failed++
				logging.Error("Failed to send mail", "consumer", consumerName, "kind", string(job.Kind), "to", job.To, "error", err)
			} else {
				processed++
			}

			if err := w.queue.Ack(ctx, messageID); err != nil {
				logging.Error("Failed to ack mail message", "consumer", consumerName, "message_id", messageID, "error", err)
			}
		}
	}
}

func (w *MailWorker) dispatch(job *common.MailJob) error {
	switch job.Kind {
	case common.MailApprovalRequest:
		return w.mailer.SendApprovalRequest(job.To, job.EventName, job.SectorName, job.RelatorName)
	case common.MailConfirmation:
		return w.mailer.SendReservationConfirmation(job.To, job.EventName, job.SectorName, job.Guests)
	case common.MailRejection:
		return w.mailer.SendRejection(job.To, job.Reason)
	case common.MailTransferNotice:
		return w.mailer.SendTransferNotice(job.To, job.TransferType, job.Reason)
	case common.MailPassQR:
		return w.mailer.SendPassQR(job.To, job.GuestName, job.EventName, job.QRImage)
	default:
		return fmt.Errorf("unknown mail kind: %s", job.Kind)
	}
}
