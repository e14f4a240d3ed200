package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "microblog/docs"
	"microblog/internal/cache"
	"microblog/internal/handlers"
	"microblog/internal/logger"
	"microblog/internal/pubsub"
	"microblog/internal/repository"
	sqlitedb "microblog/internal/repository/db"
	"microblog/internal/server"
	"microblog/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// load config.yml first so the logger can pick up its level
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log_level"))

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	tokens := service.NewTokenManager(viper.GetString("jwt.secret"), viper.GetDuration("jwt.ttl"))
	hub := pubsub.NewHub()
	services := service.NewService(repos, tokens, hub)
	apiHandler := handlers.NewHandler(services, repos.Users, openCache(log), hub, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return sqlitedb.InitDB(dbPath)
}

// openCache builds the redis response cache, or nil when no address is
// configured. A nil cache behaves as a permanent miss.
func openCache(log *logger.Logger) *cache.Client {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		log.Infow("redis.addr not set in config; response cache disabled")
		return nil
	}
	return cache.New(addr, viper.GetString("redis.password"), viper.GetInt("redis.db"))
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
