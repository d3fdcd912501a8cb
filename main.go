// Command movielab runs the movie catalog and favourites API.
//
// It loads configuration, opens the database pool, wires services and
// handlers onto a chi router and serves HTTP until SIGINT or SIGTERM, then
// shuts down gracefully. The migrate command applies or rolls back the
// embedded schema migrations without starting the server.
//
// @title Movielab API
// @version 1.0
// @description Movie catalog with comments and per-user, per-year favourites lists.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/user/movielab-go/config"
	"github.com/user/movielab-go/db"
	_ "github.com/user/movielab-go/docs" // registers the Swagger spec
	"github.com/user/movielab-go/logging"
)

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to load .env file")
	}

	if err := newApp().Run(os.Args); err != nil {
		logging.Fatal().Err(err).Msg("movielab exited with error")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "movielab",
		Usage: "movie catalog and favourites API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: func(c *cli.Context) error {
							cfg, err := loadConfig(c)
							if err != nil {
								return err
							}
							return db.RunMigrations(cfg.Database.URL())
						},
					},
					{
						Name:  "down",
						Usage: "roll back the most recent migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
						},
						Action: func(c *cli.Context) error {
							cfg, err := loadConfig(c)
							if err != nil {
								return err
							}
							return db.RollbackMigrations(cfg.Database.URL(), c.Int("steps"))
						},
					},
				},
			},
		},
	}
}

// loadConfig reads configuration and initializes logging from it.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newRouter(cfg, newServices(pool, cfg)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logging.Info().Msg("Server stopped gracefully")
	return nil
}
