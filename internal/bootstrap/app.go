package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"

	"github.com/Sulaiman-F/wthqh-backend/internal/audit"
	"github.com/Sulaiman-F/wthqh-backend/internal/documents"
	"github.com/Sulaiman-F/wthqh-backend/internal/folders"
	"github.com/Sulaiman-F/wthqh-backend/internal/search"
	"github.com/Sulaiman-F/wthqh-backend/internal/services/health"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/config"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/middleware"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob"
	localstore "github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob/local"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob/pgchunk"
	s3store "github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/blob/s3"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/db"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
	"github.com/Sulaiman-F/wthqh-backend/internal/shares"
	"github.com/Sulaiman-F/wthqh-backend/internal/users"
	"github.com/Sulaiman-F/wthqh-backend/internal/versions"
)

// App holds the wired dependencies of the API process.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Blobs   blob.Store
	Issuer  *auth.Issuer
	Sweeper *shares.Sweeper

	Users     *users.Service
	Folders   *folders.Service
	Documents *documents.Service
	Shares    *shares.Service
	Search    *search.Service
	Audit     *audit.Service
}

type repos struct {
	users     users.Repo
	folders   folders.Repo
	versions  versions.Repo
	documents documents.Repo
	shares    shares.Repo
	audit     audit.Repo
}

// Build connects storage, wires services and handlers, and registers routes.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller-supplied context for startup I/O.
func BuildContext(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Production:    cfg.IsProduction(),
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildBlobStore(ctx, cfg, sqlDB)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("blob store: %w", err)
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Blobs:  store,
		Issuer: issuer,
	}
	r := buildRepos(sqlDB)

	app.Audit = audit.NewService(r.audit)
	ledger := versions.NewLedger(r.versions)
	app.Folders = folders.NewService(r.folders, r.documents, app.Audit)
	app.Documents = documents.NewService(r.documents, ledger, store, app.Folders, app.Audit)
	app.Shares = shares.NewService(r.shares, app.Documents, app.Audit)
	app.Search = search.NewService(app.Documents, store, ledger)
	app.Users = users.NewService(r.users, issuer)
	app.Users.AllowAdminSignup = cfg.AllowAdminSignup
	app.Sweeper = shares.NewSweeper(r.shares, cfg.ShareSweepEvery)

	healthSvc := health.NewService(nil)
	if sqlDB != nil {
		healthSvc = health.NewService(sqlDB)
	}

	docHandler := documents.NewHandler(app.Documents)
	if cfg.MaxUploadBytes > 0 {
		docHandler.MaxUploadBytes = cfg.MaxUploadBytes
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Verifier:        issuer,
		Limiter:         middleware.NewRateLimiter(nil),
		Health:          healthSvc,
		UserHandler:     users.NewHandler(app.Users),
		FolderHandler:   folders.NewHandler(app.Folders),
		DocumentHandler: docHandler,
		ShareHandler:    shares.NewHandler(app.Shares, cfg.PublicBaseURL),
		SearchHandler:   search.NewHandler(app.Search),
		AuditHandler:    audit.NewHandler(app.Audit),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":       cfg.Env,
		"blobStore": cfg.BlobStoreType,
		"database":  sqlDB != nil,
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	var result *multierror.Error
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close database: %w", err))
		}
	}
	return result.ErrorOrNil()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB   *sql.DB
		err     error
		closeDB func() error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
		closeDB = db.CloseSingleton
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		closeDB = func() error { return sqlDB.Close() }
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		var errs *multierror.Error
		errs = multierror.Append(errs, fmt.Errorf("run migrations: %w", err))
		if cerr := closeDB(); cerr != nil {
			errs = multierror.Append(errs, cerr)
		}
		return nil, errs.ErrorOrNil()
	}
	return sqlDB, nil
}

func buildBlobStore(ctx context.Context, cfg config.Config, sqlDB *sql.DB) (blob.Store, error) {
	switch cfg.BlobStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("BLOB_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "postgres":
		if sqlDB == nil {
			return nil, fmt.Errorf("BLOB_STORE=postgres requires DATABASE_URL")
		}
		return pgchunk.New(sqlDB), nil
	default:
		return localstore.New(cfg.LocalStoreDir)
	}
}

func buildRepos(sqlDB *sql.DB) repos {
	if sqlDB != nil {
		return repos{
			users:     &users.PGRepo{DB: sqlDB},
			folders:   &folders.PGRepo{DB: sqlDB},
			versions:  &versions.PGRepo{DB: sqlDB},
			documents: &documents.PGRepo{DB: sqlDB},
			shares:    &shares.PGRepo{DB: sqlDB},
			audit:     &audit.PGRepo{DB: sqlDB},
		}
	}
	vr := versions.NewMemoryRepo()
	return repos{
		users:     users.NewMemoryRepo(),
		folders:   folders.NewMemoryRepo(),
		versions:  vr,
		documents: documents.NewMemoryRepo(vr),
		shares:    shares.NewMemoryRepo(),
		audit:     audit.NewMemoryRepo(),
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
