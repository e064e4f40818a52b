package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/gate"
	"github.com/noah-isme/uniportal/internal/i18n"
	"github.com/noah-isme/uniportal/internal/repository"
	"github.com/noah-isme/uniportal/internal/service"
	"github.com/noah-isme/uniportal/internal/session"
	"github.com/noah-isme/uniportal/pkg/apiclient"
	"github.com/noah-isme/uniportal/pkg/cache"
	"github.com/noah-isme/uniportal/pkg/config"
	"github.com/noah-isme/uniportal/pkg/database"
	"github.com/noah-isme/uniportal/pkg/logger"
	"github.com/noah-isme/uniportal/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = i18n.WithLocale(ctx, cfg.Locale)

	cli, closeFn, err := newCommandLine(ctx, cfg, logr, os.Stdout)
	if err != nil {
		logr.Fatal("failed to start", zap.Error(err))
	}
	defer closeFn()

	if err := cli.run(ctx, os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		logr.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

// newCommandLine wires the session store, transport and services from cfg.
// The returned func releases the session backend.
func newCommandLine(ctx context.Context, cfg *config.Config, logr *zap.Logger, out io.Writer) (*commandLine, func(), error) {
	backend, closeFn, err := openSessionStorage(ctx, cfg, logr)
	if err != nil {
		return nil, nil, err
	}

	store := session.New(backend, session.Options{
		Key:       cfg.Session.Key,
		LoginPath: cfg.Gate.LoginPath,
		Navigator: session.NavigatorFunc(func(ctx context.Context, path string) error {
			_, err := fmt.Fprintf(out, "-> %s\n", path)
			return err
		}),
		Logger: logr,
	})
	if err := store.Load(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}

	metrics := service.NewMetricsService()
	token := store.AccessToken()
	if token == "" {
		token = cfg.API.AccessToken
	}
	client, err := apiclient.New(apiclient.Options{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		AccessToken: token,
		PublicPaths: cfg.API.PublicPaths,
		ReissuePath: cfg.API.ReissuePath,
		UserAgent:   cfg.API.UserAgent,
		Logger:      logr,
		Observer:    metrics,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	client.OnAuthExpired(store.ExpireHook())
	client.OnTokenRefresh(func(token string) {
		if err := store.SetAccessToken(context.Background(), token); err != nil {
			logr.Warn("failed to persist reissued token", zap.Error(err))
		}
	})

	tr, err := i18n.New(cfg.Locale)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	exportDir, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	validate := validator.New()
	schedules := service.NewScheduleService(client, validate, logr)
	applications := service.NewApplicationService(client, validate, logr)

	rules := gate.DefaultRules()
	rules.LandingPath = cfg.Gate.LandingPath
	rules.LoginPath = cfg.Gate.LoginPath

	cli := &commandLine{
		out:          out,
		store:        store,
		gate:         gate.New(rules, store, metrics, logr),
		auth:         service.NewAuthService(client, client, store, validate, logr),
		resolver:     service.NewScheduleResolver(client, metrics, logr),
		schedules:    schedules,
		applications: applications,
		approvals:    service.NewApprovalService(client, validate, logr),
		semesters:    service.NewSemesterService(client),
		enrollment:   service.NewEnrollmentService(client, logr),
		catalog:      service.NewCourseService(client),
		notices:      service.NewNoticeService(client, validate, logr),
		grades:       service.NewGradeService(client),
		departments:  service.NewDeptService(client, validate, logr),
		members:      service.NewMemberService(client, validate, logr),
		exports:      service.NewExportService(schedules, applications, exportDir, tr, service.ExportConfig{}, logr, nil, nil),
		tr:           tr,
		logger:       logr,
	}

	release := func() {
		if cfg.API.EnableMetrics {
			logr.Info("client metrics", zap.Any("metrics", metrics.Snapshot()))
		}
		closeFn()
	}
	return cli, release, nil
}

func openSessionStorage(ctx context.Context, cfg *config.Config, logr *zap.Logger) (session.Storage, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		backend := repository.NewRedisSessionStorage(client, "portal:", 0, logr)
		return backend, func() { _ = backend.Close() }, nil
	case config.SessionBackendSQL:
		db, err := database.Open(ctx, cfg.SQL)
		if err != nil {
			return nil, nil, err
		}
		backend := repository.NewSQLSessionStorage(db)
		if err := backend.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return backend, func() { _ = db.Close() }, nil
	case config.SessionBackendFile, "":
		backend, err := repository.NewFileSessionStorage(cfg.Session.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
