package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mesaclub/reservas/internal/constants"
)

// MailKind selects which template the worker renders.
type MailKind string

const (
	MailApprovalRequest MailKind = "APPROVAL_REQUEST"
	MailConfirmation    MailKind = "CONFIRMATION"
	MailRejection       MailKind = "REJECTION"
	MailTransferNotice  MailKind = "TRANSFER_NOTICE"
	MailPassQR          MailKind = "PASS_QR"
)

// MailJob is one outbound email, serialized through the Redis stream so
// SMTP latency and failures never touch the request path.
type MailJob struct {
	Kind         MailKind  `json:"kind"`
	To           string    `json:"to"`
	EventName    string    `json:"event_name,omitempty"`
	SectorName   string    `json:"sector_name,omitempty"`
	RelatorName  string    `json:"relator_name,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	TransferType string    `json:"transfer_type,omitempty"`
	GuestName    string    `json:"guest_name,omitempty"`
	QRImage      string    `json:"qr_image,omitempty"`
	Guests       []GuestQR `json:"guests,omitempty"`
}

// MailQueueService provides queue functionality using Redis Streams.
type MailQueueService struct {
	client *redis.Client
}

func NewMailQueueService(client *redis.Client) *MailQueueService {
	return &MailQueueService{client: client}
}

// Enqueue adds a mail job to the stream.
func (s *MailQueueService) Enqueue(ctx context.Context, job *MailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: constants.MailStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	return nil
}

// Dequeue reads one mail job via the consumer group. Returns (nil, "", nil)
// when the block time elapses without messages.
func (s *MailQueueService) Dequeue(ctx context.Context, consumerName string, blockTime time.Duration) (*MailJob, string, error) {
	args := &redis.XReadGroupArgs{
		Group:    constants.MailConsumerGroup,
		Consumer: consumerName,
		Streams:  []string{constants.MailStream, ">"},
		Count:    1,
		Block:    blockTime,
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]

	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return nil, "", fmt.Errorf("invalid message format: data field missing")
	}

	var job MailJob
	if err := json.Unmarshal([]byte(dataStr), &job); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal mail job: %w", err)
	}

	return &job, msg.ID, nil
}

// Ack acknowledges successful processing of a message.
func (s *MailQueueService) Ack(ctx context.Context, messageID string) error {
	return s.client.XAck(ctx, constants.MailStream, constants.MailConsumerGroup, messageID).Err()
}

// CreateConsumerGroup creates the consumer group if it doesn't exist.
func (s *MailQueueService) CreateConsumerGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, constants.MailStream, constants.MailConsumerGroup, "0").Err()
	if err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists" {
		return nil
	}
	return err
}
