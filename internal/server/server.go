package server

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	mwecho "github.com/labstack/echo/v4/middleware"
	mwsvc "winsbygroup.com/keyserver/internal/middleware"

	"winsbygroup.com/keyserver/internal/backup"
	"winsbygroup.com/keyserver/internal/config"
	"winsbygroup.com/keyserver/internal/demodata"
	"winsbygroup.com/keyserver/internal/keygen"
	"winsbygroup.com/keyserver/internal/license"
	"winsbygroup.com/keyserver/internal/lifecycle"
	"winsbygroup.com/keyserver/internal/session"
	"winsbygroup.com/keyserver/internal/sqlite"

	adminhttp "winsbygroup.com/keyserver/internal/http/admin"
	clienthttp "winsbygroup.com/keyserver/internal/http/client"
)

type Server struct {
	Echo *echo.Echo
	HTTP *http.Server
	DB   *sqlx.DB
}

func Build(cfg *config.Config) (*Server, error) {
	//
	// Validate required settings
	//
	if cfg.AdminSecret == "" {
		return nil, errors.New("ADMIN_SECRET environment variable is required")
	}

	//
	// Database
	//
	isNewDB := false
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		isNewDB = true
		log.Printf("Creating database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	} else {
		log.Printf("Opening database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	}
	db, err := sqlx.Connect("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// WAL mode is only required once after creating the database, but
	// doesn't hurt to set it each time
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, err
	}

	// Foreign key support is required each time the database is open and
	// is required by the program for cascade deletes
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		return nil, err
	}

	// Verify foreign keys are supported and enabled
	var fkEnabled int
	if err := db.QueryRow(`PRAGMA foreign_keys;`).Scan(&fkEnabled); err != nil {
		return nil, errors.New("SQLite foreign key support check failed: " + err.Error())
	}
	if fkEnabled != 1 {
		return nil, errors.New("SQLite foreign keys not supported (requires SQLite 3.6.19+ compiled without SQLITE_OMIT_FOREIGN_KEY)")
	}

	if err := sqlite.RunMigrations(db.DB); err != nil {
		return nil, err
	}

	// Load demo data if requested and database is new
	if cfg.DemoMode && isNewDB {
		if err := demodata.Load(db.DB); err != nil {
			return nil, errors.New("failed to load demo data: " + err.Error())
		}
		log.Print("Demo data loaded")
	}

	//
	// Domain services
	//
	licenseSvc := license.NewService(db)
	sessionSvc := session.NewService(db)

	lifecycleSvc := lifecycle.NewService(
		db,
		cfg.AdminSecret,
		keygen.New(cfg.KeyPrefix),
		licenseSvc,
		sessionSvc,
	)

	backupSvc := backup.NewService(db, cfg.DBPath)

	//
	// Handlers
	//
	clientHandler := clienthttp.NewHandler(lifecycleSvc)
	adminHandler := adminhttp.NewHandler(lifecycleSvc, backupSvc)

	//
	// Echo
	//
	e := echo.New()
	e.HideBanner = true

	// Health endpoints
	e.GET("/livez", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/readyz", func(c echo.Context) error {
		if err := db.Ping(); err != nil {
			return c.String(http.StatusServiceUnavailable, "DB not ready")
		}
		return c.String(http.StatusOK, "Ready")
	})

	// Middleware
	e.Use(mwecho.Logger())
	e.Use(mwecho.Recover())

	// Client API
	clientGroup := e.Group("/api/v1")
	clienthttp.RegisterRoutes(clientGroup, clientHandler)

	// Admin API
	adminGroup := e.Group("/api/admin")
	adminGroup.Use(mwsvc.AdminSecretAuth(cfg.AdminSecret))
	adminhttp.RegisterRoutes(adminGroup, adminHandler)

	//
	// HTTP server
	//
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		Echo: e,
		HTTP: srv,
		DB:   db,
	}, nil
}
