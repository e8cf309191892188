package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"archive-backend/internal/archival"
	"archive-backend/internal/auth"
	"archive-backend/internal/documents"
	"archive-backend/internal/entities"
	"archive-backend/internal/files"
	"archive-backend/internal/llm"
	"archive-backend/internal/llm/gemini"
	"archive-backend/internal/llm/openai"
	"archive-backend/internal/services/health"
	"archive-backend/internal/shared/cache"
	"archive-backend/internal/shared/config"
	"archive-backend/internal/shared/server"
	"archive-backend/internal/shared/storage/db"
	"archive-backend/internal/shared/storage/object"
	localstore "archive-backend/internal/shared/storage/object/local"
	s3store "archive-backend/internal/shared/storage/object/s3"
	"archive-backend/internal/users"
)

// App holds the wired application graph.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store

	UsersRepo     users.Repo
	DocumentsRepo documents.Repo
	EntitiesRepo  entities.Repo

	AuthService      *auth.Service
	DocumentsService *documents.Service
	EntitiesService  *entities.Service
	Pipeline         *archival.Service
}

// Build prepares dependencies and the router. In dev, a missing or
// unreachable database falls back to in-memory repositories so the API
// still serves.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var (
		userRepo   users.Repo
		docRepo    documents.Repo
		entityRepo entities.Repo
	)
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		docRepo = documents.NewPGRepo(sqlDB)
		entityRepo = &entities.PGRepo{DB: sqlDB}
	} else {
		entityMem := entities.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo(entityMem)
		entityRepo = entityMem
	}

	authSvc := auth.NewService(userRepo)
	docSvc := documents.NewService(docRepo, cache.NewTTL(nil))
	entitySvc := entities.NewService(entityRepo)
	pipeline := archival.NewService(store, llmClient, docSvc)

	if sqlDB == nil && isDevLike(cfg.Env) {
		seedAdmin(ctx, cfg, userRepo)
	}

	var googleAuth *auth.GoogleService
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		googleAuth = auth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			authSvc,
		)
	}

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		Store:            store,
		UsersRepo:        userRepo,
		DocumentsRepo:    docRepo,
		EntitiesRepo:     entityRepo,
		AuthService:      authSvc,
		DocumentsService: docSvc,
		EntitiesService:  entitySvc,
		Pipeline:         pipeline,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:     cfg,
		Auth:       auth.NewHandler(authSvc),
		GoogleAuth: googleAuth,
		Documents:  documents.NewHandler(docSvc),
		Pipeline:   archival.NewHandler(pipeline),
		Entities:   entities.NewHandler(entitySvc),
		Files:      files.NewHandler(store),
		Health:     health.NewService(sqlDB, store),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

var newAnalyzer = buildLLM

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: OPENAI_API_KEY empty; analysis disabled")
				return llm.PlaceholderClient{}, nil
			}
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: GEMINI_API_KEY empty; analysis disabled")
				return llm.PlaceholderClient{}, nil
			}
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

// seedAdmin creates the dev admin account so a fresh in-memory instance is
// usable without a registration round trip.
func seedAdmin(ctx context.Context, cfg config.Config, repo users.Repo) {
	email := cfg.AdminEmail
	password := cfg.AdminPassword
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bootstrap: seed admin hash failed: %v", err)
		return
	}
	err = repo.Create(ctx, users.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Archive Admin",
		Role:         users.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		log.Printf("bootstrap: seed admin failed: %v", err)
		return
	}
	log.Printf("bootstrap: seeded dev admin %s", email)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
