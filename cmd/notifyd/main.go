package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/dispatch"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/ingest"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/message"
	"github.com/dmitrymomot/notifykit/pkg/preference"
	"github.com/dmitrymomot/notifykit/pkg/provider"
	"github.com/dmitrymomot/notifykit/pkg/redis"
	"github.com/dmitrymomot/notifykit/pkg/template"
	"github.com/dmitrymomot/notifykit/pkg/wshub"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`

	HTTP     httpserver.Config
	Redis    redis.Config
	Postmark provider.PostmarkConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "notifyd"))
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	store := redis.NewStore(redisClient)

	templates, err := template.NewStore(template.NewRedisStorage(store), template.WithLogger(log))
	if err != nil {
		return err
	}
	gate, err := preference.NewGate(preference.NewRedisBlacklist(store), preference.WithLogger(log))
	if err != nil {
		return err
	}

	registry := provider.NewRegistry(provider.WithLogger(log))
	if err := registerSenders(cfg, log, registry); err != nil {
		return err
	}

	manager, err := message.NewManager(message.NewRedisStorage(store), templates, gate, message.WithLogger(log))
	if err != nil {
		return err
	}
	router, err := dispatch.NewRouter(manager, registry, dispatch.WithRouterLogger(log))
	if err != nil {
		return err
	}
	retries, err := dispatch.NewRetryScheduler(manager, router, dispatch.WithRetryLogger(log))
	if err != nil {
		return err
	}
	defer retries.Stop()
	sends := dispatch.NewScheduler()
	defer sends.Stop()
	manager.SetDispatcher(router)
	manager.SetRetryCanceller(retries)
	manager.SetSendScheduler(sends)

	hub := wshub.NewHub(wshub.WithLogger(log))
	go hub.Run(ctx)
	defer hub.Close()

	ingestor, err := ingest.NewIngestor(manager, ingest.WithLogger(log))
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, redis.Healthcheck(redisClient)))
	r.Mount("/", ingest.Router(ingest.RouterOptions{
		Ingestor:  ingestor,
		WSHandler: wshub.Handler(hub, wshub.WithHandlerLogger(log)),
	}))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// registerSenders wires one sender per channel: Postmark for email when
// configured, logging dev senders otherwise so the service stays usable in
// local environments without provider credentials.
func registerSenders(cfg appConfig, log *slog.Logger, registry *provider.Registry) error {
	email := provider.Provider{
		ID:      "postmark",
		Name:    "Postmark",
		Channel: notifykit.ChannelEmail,
		Active:  true,
		Primary: true,
		Health:  provider.HealthHealthy,
	}
	var emailSender provider.Sender
	if cfg.Postmark.ServerToken != "" {
		s, err := provider.NewPostmarkSender(cfg.Postmark)
		if err != nil {
			return err
		}
		emailSender = s
	} else {
		email.ID, email.Name = "dev-email", "Dev Email"
		emailSender = provider.NewDevSender(log, string(notifykit.ChannelEmail))
	}
	if err := registry.Register(email, emailSender); err != nil {
		return err
	}

	for _, ch := range []notifykit.Channel{notifykit.ChannelSMS, notifykit.ChannelPush} {
		p := provider.Provider{
			ID:      "dev-" + string(ch),
			Name:    "Dev " + string(ch),
			Channel: ch,
			Active:  true,
			Primary: true,
			Health:  provider.HealthHealthy,
		}
		if err := registry.Register(p, provider.NewDevSender(log, string(ch))); err != nil {
			return err
		}
	}
	return nil
}
