package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/lempar/academia/internal/app/controllers"
	appMigrations "github.com/lempar/academia/internal/app/migrations"
	appRepos "github.com/lempar/academia/internal/app/repositories"
	appRoutes "github.com/lempar/academia/internal/app/routes"
	appServices "github.com/lempar/academia/internal/app/services"
	"github.com/lempar/academia/internal/app/views"
	"github.com/lempar/academia/internal/config"
	"github.com/lempar/academia/internal/db"
	appMiddleware "github.com/lempar/academia/internal/middleware"
	"github.com/lempar/academia/internal/pkg/filestorage"
	"github.com/lempar/academia/internal/pkg/logger"
	"github.com/lempar/academia/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	StudentService    appServices.StudentService
	AccountService    appServices.AccountService
	AuthService       *appServices.AuthService
	HomeController    *appControllers.HomeController
	AuthController    *appControllers.AuthController
	StudentController *appControllers.StudentController
	AccountController *appControllers.AccountController
	APIController     *appControllers.APIController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Repos             *appRepos.Repositories
	Logger            zerolog.Logger
	FileStorage       filestorage.PictureStore
}

// Stores are the persistence seams the services are built on
type Stores struct {
	Students appServices.StudentStore
	Accounts appServices.AccountStore
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "academia",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Str("mode", cfg.Server.Mode).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default admin.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.Migrate(ctx, appMigrations.Files()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	accounts := appRepos.NewAccountRepository(database.Pool)
	if _, err := seed.CreateDefaultData(ctx, accounts, cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services and controllers on
// top of the database.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	repos := appRepos.NewRepositories(database.Pool)

	pictures, err := filestorage.NewLocalStorage(cfg.Uploads.Folder, filestorage.Options{
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
		MaxDimension:      cfg.Uploads.MaxDimension,
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps := BuildWithStores(Stores{
		Students: repos.StudentRepository,
		Accounts: repos.AccountRepository,
	}, pictures, database, lgr)
	deps.Repos = repos
	return deps, nil
}

// BuildWithStores wires services and controllers over the given stores
func BuildWithStores(stores Stores, pictures filestorage.PictureStore, pinger appControllers.Pinger, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, FileStorage: pictures}

	deps.StudentService = appServices.NewStudentService(stores.Students, pictures)
	deps.AccountService = appServices.NewAccountService(stores.Accounts)
	deps.AuthService = appServices.NewAuthService(stores.Accounts, stores.Students, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AccountService)

	deps.HomeController = appControllers.NewHomeController(pinger, lgr)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, lgr)
	deps.AccountController = appControllers.NewAccountController(deps.AccountService, lgr)
	deps.APIController = appControllers.NewAPIController(deps.StudentService, lgr)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	switch cfg.Server.Mode {
	case config.ModeProduction:
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	case config.ModeTest:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	templates, err := views.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Uploads.MaxContentLength
	router.SetHTMLTemplate(templates)
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(),
		appMiddleware.BodyLimit(cfg.Uploads.MaxContentLength),
		appMiddleware.Sessions(cfg, appMiddleware.NewSessionStore(cfg)),
		deps.AuthMiddleware.LoadSession(),
	)

	appRoutes.SetupRouter(router,
		deps.HomeController,
		deps.AuthController,
		deps.StudentController,
		deps.AccountController,
		deps.APIController,
		deps.AuthMiddleware,
		cfg.Uploads.Folder,
	)

	return router, nil
}
