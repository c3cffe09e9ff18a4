package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/srgjo27/feria_ticket/internal/adapter/broker"
	"github.com/srgjo27/feria_ticket/internal/adapter/cache"
	"github.com/srgjo27/feria_ticket/internal/adapter/handler"
	"github.com/srgjo27/feria_ticket/internal/adapter/notify"
	"github.com/srgjo27/feria_ticket/internal/adapter/render"
	"github.com/srgjo27/feria_ticket/internal/adapter/repository/memory"
	"github.com/srgjo27/feria_ticket/internal/adapter/repository/postgres"
	"github.com/srgjo27/feria_ticket/internal/core/integrity"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
	"github.com/srgjo27/feria_ticket/internal/core/services"
	"github.com/srgjo27/feria_ticket/internal/platform/config"
	"github.com/srgjo27/feria_ticket/internal/platform/database"
	"github.com/srgjo27/feria_ticket/internal/platform/logger"
	"github.com/srgjo27/feria_ticket/internal/platform/telemetry"
)

var version = "dev"

type stores struct {
	events          ports.EventRepository
	categories      ports.CategoryRepository
	tickets         ports.CredentialRepository
	accreditations  ports.CredentialRepository
	badgeCategories ports.AccreditationCategoryRepository
	admins          ports.AdminRepository
	paymentMethods  ports.PaymentMethodRepository
	tableCategories ports.TableCategoryRepository
	siteConfig      ports.SiteConfigRepository
}

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	addr := pflag.String("addr", "", "listen address, overrides HTTP_ADDR")
	store := pflag.String("store", "", "record store (postgres|memory), overrides STORE")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err == nil {
		if *addr != "" {
			cfg.HTTPAddr = *addr
		}
		if *store != "" {
			cfg.Store = *store
		}
		err = cfg.Validate()
	}
	if err != nil {
		logger.New("feria-ticket", "info").WithError(err).Fatal("invalid configuration")
	}

	log := logger.New("feria-ticket", cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg config.Config, log *logrus.Entry) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := telemetry.Init(cfg.SentryDSN, cfg.Env, version, log); err != nil {
		log.WithError(err).Warn("sentry disabled")
	}
	defer telemetry.Flush()

	st, closeStore, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var seatCache ports.SeatCache
	if addr := cfg.RedisAddr(); addr != "" {
		client, err := database.NewRedisClient(ctx, addr, log)
		if err != nil {
			return err
		}
		defer client.Close()
		seatCache = cache.NewSeatCache(client, cfg.SeatCacheTTL)
	} else {
		log.Info("REDIS_HOST not set, seat maps are not cached")
	}

	var notifier ports.Notifier = notify.NewLogNotifier(log.WithField("component", "mail"))
	if cfg.MailerSendAPIKey != "" {
		notifier = notify.NewMailerSend(cfg.MailerSendAPIKey, cfg.MailFromEmail, cfg.MailFromName, log.WithField("component", "mail"))
	}

	var publisher ports.EventPublisher = broker.NewLogPublisher(log.WithField("component", "broker"))
	if cfg.AMQPURL != "" {
		p, err := broker.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log.WithField("component", "broker"))
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	issuer, err := newIssuer(cfg, log)
	if err != nil {
		return err
	}
	renderer := render.NewRenderer()

	catalog := services.NewCatalogService(st.events, st.categories, seatCache, log.WithField("component", "catalog"))
	seats := services.NewSeatService(st.events, st.tickets, seatCache, log.WithField("component", "seats"))
	// purchases and walk-ins number tickets from the same store
	eventLocks := services.NewEventLocks()
	purchases := services.NewPurchaseService(st.events, st.tickets, st.paymentMethods, issuer, seatCache, renderer, notifier, publisher, eventLocks, log.WithField("component", "purchases"))
	validator := services.NewValidationService(st.tickets, st.accreditations, issuer, publisher, log.WithField("component", "validation"))
	walkins := services.NewWalkInService(st.events, st.tickets, issuer, renderer, seatCache, eventLocks, log.WithField("component", "walkin"))
	accreditations := services.NewAccreditationService(st.events, st.accreditations, st.badgeCategories, issuer, renderer, log.WithField("component", "accreditations"))
	stats := services.NewStatsService(st.events, st.tickets, st.accreditations, log.WithField("component", "stats"))
	auth := services.NewAuthService(st.admins, cfg.JWTSecret, cfg.JWTTTL, log.WithField("component", "auth"))
	settings := services.NewSettingsService(st.siteConfig, st.paymentMethods, st.tableCategories, log.WithField("component", "settings"))

	if cfg.AdminPassword != "" {
		if err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
	} else {
		log.Warn("ADMIN_PASSWORD not set, no bootstrap admin created")
	}

	go stats.RunOccupancyRefresh(ctx, cfg.OccupancyRefresh)

	router := handler.NewRouter(handler.Handlers{
		Events:         handler.NewEventHandler(catalog, seats, log),
		Purchases:      handler.NewPurchaseHandler(purchases, log),
		Validation:     handler.NewValidationHandler(validator, log),
		WalkIns:        handler.NewWalkInHandler(walkins, log),
		Accreditations: handler.NewAccreditationHandler(accreditations, log),
		Stats:          handler.NewStatsHandler(stats, log),
		Auth:           handler.NewAuthHandler(auth, log),
		Settings:       handler.NewSettingsHandler(settings, log),
	}, auth, log.WithField("component", "http"))

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "store": cfg.Store}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server exiting")
	return nil
}

func openStores(ctx context.Context, cfg config.Config, log *logrus.Entry) (stores, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return stores{
			events:          memory.NewEventStore(),
			categories:      memory.NewCategoryStore(),
			tickets:         memory.NewCredentialStore(),
			accreditations:  memory.NewCredentialStore(),
			badgeCategories: memory.NewAccreditationCategoryStore(),
			admins:          memory.NewAdminStore(),
			paymentMethods:  memory.NewPaymentMethodStore(),
			tableCategories: memory.NewTableCategoryStore(),
			siteConfig:      memory.NewSiteConfigStore(),
		}, func() {}, nil
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	}, log)
	if err != nil {
		return stores{}, nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return stores{}, nil, err
	}
	return postgresStores(db), func() { db.Close() }, nil
}

func postgresStores(db *sql.DB) stores {
	return stores{
		events:          postgres.NewEventRepository(db),
		categories:      postgres.NewCategoryRepository(db),
		tickets:         postgres.NewCredentialRepository(db, postgres.TicketsTable),
		accreditations:  postgres.NewCredentialRepository(db, postgres.AccreditationsTable),
		badgeCategories: postgres.NewAccreditationCategoryRepository(db),
		admins:          postgres.NewAdminRepository(db),
		paymentMethods:  postgres.NewPaymentMethodRepository(db),
		tableCategories: postgres.NewTableCategoryRepository(db),
		siteConfig:      postgres.NewSiteConfigRepository(db),
	}
}

func newIssuer(cfg config.Config, log *logrus.Entry) (*integrity.Issuer, error) {
	cipher, err := integrity.NewCipher(cfg.QRCipher, []byte(cfg.QREncryptionKey))
	if err != nil {
		return nil, err
	}

	var signer *integrity.Signer
	if cfg.QRSigningKey != "" {
		signer, err = integrity.NewSigner([]byte(cfg.QRSigningKey))
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("QR_SIGNING_KEY not set, walk-in tickets are issued unsigned")
	}
	return integrity.NewIssuer(cipher, signer, integrity.NewCodeGenerator(), render.NewQRCode(0)), nil
}
