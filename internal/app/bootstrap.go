// Package app is the composition root: it wires config, stores,
// services, use cases, and the HTTP router together with manual DI.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"securevet.io/securevet/internal/api/handlers"
	"securevet.io/securevet/internal/api/middleware"
	"securevet.io/securevet/internal/audit"
	"securevet.io/securevet/internal/config"
	"securevet.io/securevet/internal/infrastructure"
	"securevet.io/securevet/internal/notification"
	"securevet.io/securevet/internal/pkg/fieldcrypt"
	"securevet.io/securevet/internal/pkg/worker"
	"securevet.io/securevet/internal/service"
	"securevet.io/securevet/internal/store"
	"securevet.io/securevet/internal/store/memory"
	"securevet.io/securevet/internal/store/postgres"
	"securevet.io/securevet/internal/usecase"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine
	DB     *infrastructure.DatabaseClients
	Pools  *worker.Pools
}

// storeBundle is the per-entity store surface both backends provide.
type storeBundle interface {
	Users() store.Users
	Pets() store.Pets
	Appointments() store.Appointments
	Records() store.Records
	Audit() store.Audit
	PasswordRequests() store.PasswordRequests
}

// Bootstrap initializes all dependencies using manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	keyring, err := fieldcrypt.NewKeyring(cfg.Security.EncryptionKeyID, cfg.Security.Keys())
	if err != nil {
		return nil, fmt.Errorf("init keyring: %w", err)
	}

	var (
		db     *infrastructure.DatabaseClients
		stores storeBundle
		pinger handlers.Pinger
	)
	switch cfg.Store.Driver {
	case "postgres":
		db, err = infrastructure.NewDatabaseClients(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db.Pool); err != nil {
				db.Close()
				return nil, fmt.Errorf("migrate schema: %w", err)
			}
		}
		stores = postgres.New(db.Pool)
		pinger = db.Pool
	default:
		stores = memory.New()
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		MailPoolSize:    cfg.Worker.MailPoolSize,
	})
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	var mailer notification.Mailer = notification.NoopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = notification.NewSMTPMailer(cfg.SMTP)
	}

	recorder := audit.NewRecorder(stores.Audit())
	server := handlers.NewServer(handlers.ServerDeps{
		Users:            stores.Users(),
		Pets:             stores.Pets(),
		PasswordRequests: stores.PasswordRequests(),

		JWTCfg: middleware.JWTConfig{
			SigningKey: []byte(cfg.Security.JWTSecret),
			Issuer:     "securevet",
			ExpiresIn:  cfg.Security.JWTExpiry,
		},
		BcryptCost: cfg.Security.BcryptCost,

		Recorder:  recorder,
		TwoFactor: service.NewTwoFactor(cfg.Security.TOTPIssuer),
		ApptRead:  service.NewAppointments(stores.Appointments(), stores.Pets(), stores.Users()),
		Records:   service.NewRecords(stores.Records(), stores.Pets(), keyring),

		RequestUC:  usecase.NewRequestAppointmentUseCase(stores.Appointments(), stores.Pets()),
		ClaimUC:    usecase.NewClaimAppointmentUseCase(stores.Appointments(), recorder),
		CompleteUC: usecase.NewCompleteAppointmentUseCase(stores.Appointments(), keyring, recorder),
		BookUC:     usecase.NewBookForClientUseCase(stores.Appointments(), stores.Pets(), stores.Users(), recorder),

		Mail: notification.NewDispatcher(mailer, pools),
	})

	return &Application{
		Config: cfg,
		Router: newRouter(cfg, server, pinger),
		DB:     db,
		Pools:  pools,
	}, nil
}
