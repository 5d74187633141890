package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/storage"
	"go.uber.org/zap"
)

func main() {
	var (
		outPath  string
		company  string
		title    string
		upload   bool
		logLevel string
	)

	flag.StringVar(&outPath, "out", "", "Output path (default: billing.asset.path)")
	flag.StringVar(&company, "company", "Contoso Invoicing", "Company name printed on the placeholder")
	flag.StringVar(&title, "title", "Invoice", "Document title")
	flag.BoolVar(&upload, "upload", false, "Also upload the PDF to the configured S3 bucket")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load(config.ServiceBilling)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if outPath == "" {
		outPath = cfg.Billing.Asset.Path
	}

	var buf bytes.Buffer
	if err := storage.RenderPlaceholderInvoicePDF(&buf, storage.PlaceholderInvoice{
		CompanyName: company,
		Title:       title,
		GeneratedAt: time.Now().UTC(),
	}); err != nil {
		log.Fatal("Failed to render placeholder PDF", zap.Error(err))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatal("Failed to create output directory", zap.Error(err))
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		log.Fatal("Failed to write PDF", zap.Error(err))
	}
	log.Info("Placeholder invoice PDF written",
		zap.String("path", outPath),
		zap.Int("size", buf.Len()),
	)

	if !upload {
		return
	}
	if cfg.Billing.Asset.Source != config.AssetSourceS3 {
		log.Fatal("Upload requires billing.asset.source = s3", zap.String("source", cfg.Billing.Asset.Source))
	}

	src, err := storage.NewS3AssetSource(&cfg.Billing.Asset, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create S3 asset source", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := src.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare bucket", zap.Error(err))
	}
	if err := src.Upload(ctx, buf.Bytes()); err != nil {
		log.Fatal("Failed to upload PDF", zap.Error(err))
	}
}
