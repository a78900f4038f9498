package api

import (
	"github.com/redis/go-redis/v9"

	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/config"
	"mesaclub/reservas/internal/db"
	"mesaclub/reservas/internal/db/repositories"
	"mesaclub/reservas/internal/metrics"
	"mesaclub/reservas/internal/services"
)

type Repositories struct {
	Reporting *repositories.ReportingRepository
}

type Services struct {
	Cache        *common.CacheService
	MailQueue    *common.MailQueueService
	Mailer       *common.Mailer
	Realtime     common.RealtimePublisher
	Notifier     services.Notifier
	Reservations *services.ReservationService
	Approvals    *services.ApprovalService
	Validator    *services.ValidatorService
	Transfers    *services.TransferService
	Passes       *services.PassService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

func InitDependencies(cfg config.Config, redisClient *redis.Client) (*Dependencies, error) {
	repos := &Repositories{
		Reporting: repositories.NewReportingRepository(db.DB),
	}

	metricsReg := metrics.NewMetricsRegistry()

	cacheSvc := common.NewCacheService(60000, 600, metricsReg)
	mailQueue := common.NewMailQueueService(redisClient)
	mailer := common.NewMailer(cfg)
	realtime := common.NewRedisRealtimeService(redisClient)
	notifier := services.NewQueueNotifier(mailQueue, realtime, metricsReg)
	minter := common.NewQRMinter()

	svcs := &Services{
		Cache:        cacheSvc,
		MailQueue:    mailQueue,
		Mailer:       mailer,
		Realtime:     realtime,
		Notifier:     notifier,
		Reservations: services.NewReservationService(db.PgDB, minter, notifier, cacheSvc),
		Approvals:    services.NewApprovalService(db.PgDB, notifier, repos.Reporting),
		Validator:    services.NewValidatorService(db.PgDB, repos.Reporting),
		Transfers:    services.NewTransferService(db.PgDB, minter, notifier, repos.Reporting),
		Passes:       services.NewPassService(db.PgDB, minter, notifier),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
	}, nil
}
