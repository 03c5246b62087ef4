package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/application/usecase"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/port"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/infrastructure/catalog"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/infrastructure/config"
	grpcpresentation "github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/presentation/grpc"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/presentation/rest"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/auth"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/observability"
	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/pkg/tlsutil"
)

const serviceName = "checkout-decision"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	logger.Info("starting checkout-decision",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: service.EngineVersion,
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       true,
	}, logger)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	// Initialize metrics.
	metrics, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		return
	}

	// Load weight configuration and the card catalog. Both fall back to the
	// embedded defaults, so startup never fails on a bad file.
	weights := config.NewWeightsLoader(cfg.ConfigDir, logger, metrics).LoadAll()
	cards := catalog.Load(cfg.CardCatalogPath, logger)
	logger.Info("configuration loaded",
		"approval_version", weights.Approval.Version,
		"merchant_penalties_version", weights.MerchantPenalties.Version,
		"catalog_version", cards.Version(),
	)

	// Wire domain services and use cases.
	pipeline := usecase.NewPipeline(weights.Approval, weights.Preferences, weights.MerchantPenalties, logger)
	clock := port.ClockFunc(time.Now)

	decideUC := usecase.NewDecideTransaction(pipeline, metrics, clock)
	rankUC := usecase.NewRankCards(pipeline, cards, metrics, clock)
	approvalUC := usecase.NewEstimateApproval(pipeline, cards, metrics, clock)
	recommendUC := usecase.NewRecommend(pipeline, cards, metrics, clock)

	// Optional API client authentication and gRPC TLS.
	grpcOpts := grpcpresentation.ServerOptions{Reflection: cfg.GRPCReflection}
	var apiMiddleware []func(http.Handler) http.Handler
	verifier, err := newVerifier(cfg)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		logger.Info("API client authentication disabled")
	case err != nil:
		logger.Error("failed to configure authentication", "error", err)
		return
	default:
		grpcOpts.Interceptors = append(grpcOpts.Interceptors,
			auth.UnaryServerInterceptor(verifier, auth.ScopeCheckout, "/grpc.health.v1.Health/", "/grpc.reflection."))
		apiMiddleware = append(apiMiddleware, auth.HTTPMiddleware(verifier, auth.ScopeCheckout))
		logger.Info("API client authentication enabled", "issuer", cfg.AuthJWTIssuer)
	}

	if cfg.TLSEnabled() {
		creds, err := tlsutil.ServerCredentials(cfg.GRPCTLSCertFile, cfg.GRPCTLSKeyFile)
		if err != nil {
			logger.Error("failed to load TLS credentials", "error", err)
			return
		}
		grpcOpts.Credentials = creds
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewCheckoutHandler(decideUC, rankUC, approvalUC, recommendUC, logger)
	grpcServer := grpcpresentation.NewServer(grpcHandler, cfg.GRPCAddress(), logger, grpcOpts)

	// HTTP server (health, metrics, JSON API).
	health := rest.NewHealthHandler(serviceName, map[string]rest.ReadinessCheck{
		"card_catalog": func(ctx context.Context) error {
			list, err := cards.List(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return errors.New("catalog is empty")
			}
			return nil
		},
	}, logger)
	restHandler := rest.NewCheckoutHandler(decideUC, rankUC, approvalUC, recommendUC, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      rest.NewRouter(health, restHandler, metricsHandler, logger, apiMiddleware...),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("checkout-decision started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down checkout-decision")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("checkout-decision stopped")
}

// newVerifier builds the token verifier from config. It returns
// auth.ErrNotConfigured when no key is set.
func newVerifier(cfg *config.Config) (*auth.Verifier, error) {
	vc := auth.VerifierConfig{Secret: cfg.AuthJWTSecret, Issuer: cfg.AuthJWTIssuer}
	if cfg.AuthJWTPublicKeyFile != "" {
		pem, err := auth.LoadKeyFromFile(cfg.AuthJWTPublicKeyFile)
		if err != nil {
			return nil, err
		}
		vc.PublicKeyPEM = pem
	}
	return auth.NewVerifier(vc)
}
