package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diabetes/internal/configuration"
	"diabetes/internal/logging"
	"diabetes/internal/metrics"
	"diabetes/internal/model"
	"diabetes/internal/score"
	"diabetes/internal/score/rule"
	"diabetes/internal/server"

	"github.com/joho/godotenv"
)

// loadPredictor returns the model server client when one is configured,
// otherwise the model artifact checked against the scaler width.
func loadPredictor(config configuration.ModelConfig) (score.Predictor, *model.Scaler, error) {
	if config.URL != "" {
		scaler, err := model.LoadScaler(config.Scaler)
		if err != nil {
			return nil, nil, err
		}
		return model.NewRemotePredictor(config.URL, config.Timeout), scaler, nil
	}

	network, scaler, err := model.Load(config.Path, config.Scaler)
	if err != nil {
		return nil, nil, err
	}
	return network, scaler, nil
}

// run loads the scaler, the model and the message rules once, then serves
// until the context is cancelled. Errors before serving starts are returned.
func run(ctx context.Context, config *configuration.AppConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	predictor, scaler, err := loadPredictor(config.Model)
	if err != nil {
		return fmt.Errorf("unable to load model: %w", err)
	}

	messages, err := rule.LoadFromFile(config.Messages.Rules, rule.NewProbabilityEnv)
	if err != nil {
		return fmt.Errorf("unable to load message rules: %w", err)
	}

	scorer := score.NewRiskScorer(scaler, predictor, messages)
	router := server.NewApiV1Router(scorer, metrics.New(), config.Server.RequestTimeout)
	srv := server.NewServer(
		config.Server.Address(),
		router,
		config.Server.ReadTimeout,
		config.Server.WriteTimeout,
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()
	slog.Info("Server listening "+config.Server.Address(),
		"model", config.Model.Path,
		"scaler", config.Model.Scaler,
		"model_url", config.Model.URL,
	)
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown", "error", err)
	}
	slog.Info("Server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	default:
		return nil
	}
}

// Any failure during configuration, loading or serving terminates the process with code 1.
func main() {
	configPath := flag.String("config", "", "optional configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Unable to load .env", "error", err)
		os.Exit(1)
	}

	config, err := configuration.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(config.Logger, os.Stdout)

	appCtx, appCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(appCtx, config)
	appCancel()
	if err != nil {
		slog.Error("Service failed", "error", err)
	}
	if closeErr := logger.Close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "unable to close log file:", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
