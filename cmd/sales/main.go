package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appsales "github.com/erp/invoicing/internal/application/sales"
	"github.com/erp/invoicing/internal/infrastructure/billingclient"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/erp/invoicing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(config.ServiceSales)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, otelCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log, err := logger.New(logCfg, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(telemetry.TracerName)
	invoiceMetrics, err := telemetry.NewInvoiceMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register invoice metrics", zap.Error(err))
	}

	log.Info("Starting sales service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	client, err := billingclient.New(cfg.Gateway.BillingBaseURL, billingclient.WithTimeout(cfg.Gateway.Timeout))
	if err != nil {
		log.Fatal("Failed to create billing client", zap.Error(err))
	}
	log.Info("Billing client configured",
		zap.String("base_url", cfg.Gateway.BillingBaseURL),
		zap.Duration("timeout", cfg.Gateway.Timeout),
	)

	gateway := appsales.NewGateway(client, appsales.WithGatewayMetrics(invoiceMetrics))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewSalesRouter(gateway, router.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		Logger:      log,
		Meter:       meter,
		HTTP:        cfg.HTTP,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Log provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
