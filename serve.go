package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/WWJD/controllers"
	"github.com/WWJD/initializers"
	"github.com/WWJD/middlewares"
	"github.com/WWJD/services"
)

const (
	guidanceMaxTokens = 1024
	shutdownTimeout   = 15 * time.Second
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		return err
	}
	gin.SetMode(cfg.GinMode)

	shutdownTracing, err := initializers.InitTracing(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		return err
	}

	openAI, err := services.NewOpenAIClient(services.OpenAIConfig{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		Model:           cfg.OpenAIModel,
		ModerationModel: cfg.OpenAIModerationModel,
		MaxTokens:       guidanceMaxTokens,
		MaxRetries:      cfg.OpenAIMaxRetries,
		Timeout:         cfg.RequestTimeout,
	}, log)
	if err != nil {
		return err
	}

	var generator services.GuidanceGenerator = openAI
	if cfg.GeneratorProvider == "gemini" {
		generator, err = services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error("Failed to create Gemini client", "error", err)
			return err
		}
	}

	gate, err := services.NewModerationGate(openAI, cfg.ModerationFailOpen, log)
	if err != nil {
		return err
	}
	matcher := services.NewDuplicateMatcher(a.store, services.MatchConfig{
		MinKeywords:   cfg.MatchMinKeywords,
		MinMatches:    cfg.MatchMinMatches,
		MinPercentage: cfg.MatchMinPercentage,
	})

	push := services.NewPushNotificationService(ctx, cfg.PushEnabled, cfg.FirebaseAccountPath, log)
	email := services.NewEmailService(cfg.ResendAPIKey, cfg.ResendFromEmail, cfg.SiteURL, log)
	notifier := services.NewNotificationTriggerService(a.store, push, email, cfg.SiteURL, log)

	submissions := services.NewSubmissionService(services.SubmissionDeps{
		Moderator:  gate,
		Matcher:    matcher,
		Generator:  generator,
		Situations: a.store,
		Notifier:   notifier,
		Timeout:    cfg.RequestTimeout,
		Log:        log,
	})

	limiter, rdb, err := buildLimiter(ctx, cfg)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	ctl := controllers.New(controllers.Deps{
		Store:       a.store,
		Submissions: submissions,
		Moderator:   gate,
		Verifier:    services.NewGoogleTokenVerifier(cfg.ClientID),
		Notifier:    notifier,
		Secret:      cfg.Secret,
		Log:         log,
	})
	router := controllers.SetupRouter(ctl, controllers.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
		Tracing:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr, "generator", cfg.GeneratorProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown incomplete", "error", err)
	}
	notifier.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("Tracer shutdown failed", "error", err)
	}
	return nil
}

// buildLimiter shares rate limits through Redis when REDIS_URL is set and
// keeps them in memory otherwise.
func buildLimiter(ctx context.Context, cfg initializers.Config) (middlewares.Limiter, *goredis.Client, error) {
	if cfg.RedisURL == "" {
		return middlewares.NewMemoryLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst), nil, nil
	}

	rdb, err := initializers.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	window := time.Duration(float64(cfg.RateLimitBurst) / cfg.RateLimitRPS * float64(time.Second))
	return middlewares.NewRedisLimiter(rdb, "wwjd:ratelimit", cfg.RateLimitBurst, window), rdb, nil
}
