package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"healthops-dashboard/internal/clients"
	"healthops-dashboard/internal/config"
	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/events"
	"healthops-dashboard/internal/logger"
	"healthops-dashboard/internal/repository"
	"healthops-dashboard/internal/repository/firestoredb"
	"healthops-dashboard/internal/scheduler"
	"healthops-dashboard/internal/service"
	"healthops-dashboard/internal/transport/auth"
	"healthops-dashboard/internal/transport/rest"
	"healthops-dashboard/internal/transport/websocket"
	"healthops-dashboard/pkg/database/postgres"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// stores is the persistence backend selected by STORE_DRIVER.
type stores struct {
	entries   service.EntryStore
	services  service.CatalogStore
	providers service.CatalogStore
	counters  service.CounterStore
	expenses  service.ExpenseStore
	invoices  service.InvoiceStore
	users     service.UserStore
	tokens    auth.TokenFinder

	app   *firebase.App
	close func()
}

// exportSink is where finished workbooks go and how old ones are cleaned up.
type exportSink interface {
	service.ExportSink
	scheduler.FileCleaner
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	cfg := config.Load()

	lg, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := mustInitStores(ctx, cfg, lg)
	defer st.close()

	clock := service.NewClock(cfg.Location)
	userSvc := service.NewUserService(st.users, clock)

	if len(os.Args) > 1 {
		if err := runCommand(ctx, cfg, st, userSvc, os.Args[1], os.Args[2:]); err != nil {
			lg.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		}
		return
	}

	wsHub := websocket.NewHub(lg.Named("ws"))
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	var (
		statuses  service.StatusStore
		publisher events.Publisher = events.NewDirect(wsClient)
	)
	redisClient, err := clients.NewRedisClient(ctx, clients.RedisConfig{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		DialTimeout: time.Duration(cfg.Redis.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Redis.Timeout) * time.Second,
		Prefix:      cfg.Redis.Prefix,
	})
	if err != nil {
		lg.Warn("redis unavailable, export tracking disabled and entry events stay local", zap.Error(err))
	} else {
		defer func() { _ = redisClient.Close() }()
		statuses = redisClient
		bus := events.NewRedisBus(redisClient, cfg.Redis.EventsChannel, lg.Named("events"))
		go bus.Relay(ctx, wsClient)
		publisher = bus
	}

	sink, localFiles := mustInitExportSink(ctx, cfg, lg)

	dashboardSvc := service.NewDashboardService(st.entries, st.services, clock, lg.Named("dashboard"))
	entrySvc := service.NewEntryService(st.entries, st.services, st.counters, publisher, clock, lg.Named("entries"))
	referenceSvc := service.NewReferenceService(st.services, st.providers)
	expenseSvc := service.NewExpenseService(st.expenses, st.counters, clock, lg.Named("expenses"))
	invoiceSvc := service.NewInvoiceService(st.invoices, st.counters, clock)
	exportSvc := service.NewExportService(statuses, clock)
	reportExportSvc := service.NewReportExportService(dashboardSvc, expenseSvc, statuses, sink, wsClient, clock, lg.Named("export"))

	verifiers, err := buildVerifiers(ctx, cfg, st, lg)
	if err != nil {
		lg.Fatal("auth init error", zap.Error(err))
	}

	handler := rest.NewHandler(rest.Services{
		Dashboard:  dashboardSvc,
		Entries:    entrySvc,
		Reference:  referenceSvc,
		Expenses:   expenseSvc,
		Invoices:   invoiceSvc,
		Users:      userSvc,
		Exports:    reportExportSvc,
		ExportList: exportSvc,
		WebSocket:  wsHub,
	}, lg.Named("http"))
	router := handler.InitRouterWithAuth(auth.Middleware(lg.Named("auth"), verifiers...))

	// create a public root router and mount the api underneath so /files stays public
	root := chi.NewRouter()
	if localFiles != nil {
		root.Get(cfg.Export.FilesPublicPrefix+"/{file}", serveExportFile(localFiles))
	}
	root.Mount("/", router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cron, err := scheduler.New(scheduler.Config{Schedule: cfg.Export.CleanupSchedule, MaxAge: cfg.Export.MaxAge}, sink, exportSvc, lg.Named("scheduler"))
	if err != nil {
		lg.Fatal("scheduler init error", zap.Error(err))
	}
	cron.Start()

	// Run HTTP server in goroutine so we can listen for shutdown signals
	srvErr := make(chan error, 1)
	go func() {
		lg.Info("HTTP server listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver), zap.String("auth", cfg.AuthMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			lg.Error("HTTP server error", zap.Error(err))
		}
	case sig := <-stop:
		lg.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error("HTTP server shutdown error", zap.Error(err))
		}
		cron.Stop(shutdownCtx)
	}

	// stop background services (websocket hub, event relay)
	cancel()
	lg.Info("shutdown complete")
}

func mustInitStores(ctx context.Context, cfg config.AppConfig, lg *zap.Logger) stores {
	switch cfg.StoreDriver {
	case "firestore":
		app, err := firestoredb.NewApp(ctx, firestoredb.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
		})
		if err != nil {
			lg.Fatal("firebase init error", zap.Error(err))
		}
		client, err := firestoredb.NewClient(ctx, app)
		if err != nil {
			lg.Fatal("firestore init error", zap.Error(err))
		}
		return firestoreStores(app, client)

	case "postgres":
		db, err := postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			Username:        cfg.Postgres.User,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			Password:        cfg.Postgres.Password,
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		})
		if err != nil {
			lg.Fatal("postgres init error", zap.Error(err))
		}
		return postgresStores(db, lg)

	default:
		lg.Fatal("unknown STORE_DRIVER", zap.String("driver", cfg.StoreDriver))
		return stores{}
	}
}

func postgresStores(db *sql.DB, lg *zap.Logger) stores {
	return stores{
		entries:   repository.NewEntryRepository(db),
		services:  repository.NewServiceRepository(db),
		providers: repository.NewProviderRepository(db),
		counters:  repository.NewCounterRepository(db),
		expenses:  repository.NewExpenseRepository(db),
		invoices:  repository.NewInvoiceRepository(db),
		users:     repository.NewUserRepository(db),
		tokens:    repository.NewPersonalAccessTokenRepository(db),
		close: func() {
			if err := postgres.Close(db); err != nil {
				lg.Error("postgres close", zap.Error(err))
			}
		},
	}
}

func firestoreStores(app *firebase.App, client *firestore.Client) stores {
	return stores{
		entries:   firestoredb.NewEntryStore(client),
		services:  firestoredb.NewServiceStore(client),
		providers: firestoredb.NewProviderStore(client),
		counters:  firestoredb.NewCounterStore(client),
		expenses:  firestoredb.NewExpenseStore(client),
		invoices:  firestoredb.NewInvoiceStore(client),
		users:     firestoredb.NewUserStore(client),
		app:       app,
		close:     func() { _ = client.Close() },
	}
}

// mustInitExportSink returns the configured sink, plus the local storage when files are served
// by this process.
func mustInitExportSink(ctx context.Context, cfg config.AppConfig, lg *zap.Logger) (exportSink, *clients.StorageClient) {
	if cfg.Export.Storage == "s3" {
		s3, err := clients.NewS3Client(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			URLTTL:          cfg.Export.MaxAge,
		})
		if err != nil {
			lg.Fatal("s3 init error", zap.Error(err))
		}
		return s3, nil
	}

	local, err := clients.NewLocalStorage(cfg.Export.Dir, cfg.Export.FilesPublicPrefix, cfg.Export.ExternalURL)
	if err != nil {
		lg.Fatal("storage init error", zap.Error(err))
	}
	return local, local
}

func buildVerifiers(ctx context.Context, cfg config.AppConfig, st stores, lg *zap.Logger) ([]auth.Verifier, error) {
	var verifiers []auth.Verifier

	switch cfg.AuthMode {
	case "firebase":
		app := st.app
		if app == nil {
			var err error
			app, err = firestoredb.NewApp(ctx, firestoredb.Config{
				ProjectID:       cfg.Firebase.ProjectID,
				CredentialsFile: cfg.Firebase.CredentialsFile,
			})
			if err != nil {
				return nil, err
			}
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase auth client: %w", err)
		}
		verifiers = append(verifiers, auth.NewFirebaseVerifier(client, st.users))
	case "jwt":
		if cfg.JWT.Secret == "" {
			return nil, errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
		verifiers = append(verifiers, auth.NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, st.users))
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}

	if st.tokens != nil {
		verifiers = append(verifiers, auth.NewPersonalTokenVerifier(st.tokens, st.users, lg.Named("pat")))
	}
	return verifiers, nil
}

func runCommand(ctx context.Context, cfg config.AppConfig, st stores, users *service.UserService, name string, args []string) error {
	switch name {
	case "issue-token":
		return issueToken(ctx, cfg, st, args)
	case "add-user":
		return addUser(ctx, users, args)
	default:
		return fmt.Errorf("unknown command %q (want issue-token or add-user)", name)
	}
}

// issueToken prints a signed JWT for an existing user: issue-token -uid <uid>.
func issueToken(ctx context.Context, cfg config.AppConfig, st stores, args []string) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	uid := fs.String("uid", "", "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *uid == "" {
		return errors.New("-uid is required")
	}
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	u, err := st.users.Get(ctx, *uid)
	if err != nil {
		return fmt.Errorf("load user %q: %w", *uid, err)
	}
	if !u.Active {
		return fmt.Errorf("user %q is not active", *uid)
	}
	if !u.Role.IsValid() {
		u.Role = domain.RoleNavigator
	}

	token, exp, err := auth.NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, nil).IssueToken(u.Actor())
	if err != nil {
		return err
	}
	fmt.Printf("%s\nexpires %s\n", token, exp.Format(time.RFC3339))
	return nil
}

// addUser creates or updates a profile: add-user -uid <uid> -email <email> [-name <name>] [-role admin|navigator] [-inactive].
func addUser(ctx context.Context, users *service.UserService, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ContinueOnError)
	uid := fs.String("uid", "", "user id")
	email := fs.String("email", "", "email address")
	name := fs.String("name", "", "display name")
	role := fs.String("role", string(domain.RoleNavigator), "admin or navigator")
	inactive := fs.Bool("inactive", false, "create the profile disabled")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := users.Save(ctx, domain.User{
		UID:    *uid,
		Email:  *email,
		Name:   *name,
		Role:   domain.Role(*role),
		Active: !*inactive,
	})
	if err != nil {
		return err
	}
	fmt.Printf("saved %s (%s, active=%t)\n", u.UID, u.Role, u.Active)
	return nil
}

// serveExportFile serves a locally stored export under its original name.
func serveExportFile(storage *clients.StorageClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := filepath.Base(chi.URLParam(r, "file"))
		path := filepath.Join(storage.BaseDir, file)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clients.OriginalName(file)))
		http.ServeFile(w, r, path)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
