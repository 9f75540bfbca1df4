package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/company-brain/backend/internal/analysis"
	"github.com/company-brain/backend/internal/api"
	"github.com/company-brain/backend/internal/config"
	"github.com/company-brain/backend/internal/llm"
	"github.com/company-brain/backend/internal/logger"
	"github.com/company-brain/backend/internal/ocr"
	"github.com/company-brain/backend/internal/storage"
	"github.com/company-brain/backend/internal/tabular"
	"github.com/company-brain/backend/internal/web"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFlag := flag.String("config", "", "path to config.yaml (default: next to the executable)")
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		exePath, err := os.Executable()
		if err != nil {
			fmt.Printf("Failed to get executable path: %v\n", err)
			os.Exit(1)
		}
		configPath = filepath.Join(filepath.Dir(exePath), "config.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()
	log := logger.NewZapAdapter(zl)

	if err := run(cfg, configPath, log); err != nil {
		log.WithError(err).Error("server stopped", nil)
		zl.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, configPath string, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	creds, err := config.LoadCredentials(cfg.Secrets)
	if err != nil {
		return err
	}
	if missing := creds.Missing(); len(missing) > 0 {
		log.Warn("credentials missing, affected analyses will report this", map[string]interface{}{
			"missing": missing,
		})
	}

	httpClient := &http.Client{Timeout: cfg.ServiceTimeout()}

	extractor := newExtractor(cfg, creds, httpClient, log)
	client, closeClient := newLanguageModel(ctx, cfg, creds, httpClient, log)
	defer closeClient()

	store, err := storage.NewLocalStore(cfg.GetTempDir())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	reader, err := tabular.NewReader(cfg.Processing.PreviewRows, 0)
	if err != nil {
		return err
	}
	defer reader.Close()

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	api.SetupMiddleware(e, api.MiddlewareConfig{
		BodyLimit:        cfg.Server.BodyLimit,
		RequestLogging:   cfg.Server.EnableRequestLogging,
		Compression:      cfg.Server.EnableCompression,
		ShowErrorDetails: cfg.Log.Level == "debug",
	}, log)

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Documents:    analysis.NewDocumentFlow(store, extractor, client, cfg.LLM.DocumentTemperature, log),
		Spreadsheets: analysis.NewSpreadsheetFlow(store, reader, client, log),
		Services: map[string]bool{
			ocr.ServiceName: extractor != nil,
			llm.ServiceName: client != nil,
		},
		Version: Version,
		Log:     log,
	}))

	if err := web.RegisterStaticRoutes(e); err != nil {
		return fmt.Errorf("failed to register static routes: %w", err)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(cfg, configPath, extractor != nil, client != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newExtractor returns nil when the configured provider cannot be built.
func newExtractor(cfg *config.AppConfig, creds *config.Credentials, httpClient *http.Client, log logger.Logger) ocr.Extractor {
	switch cfg.OCR.Provider {
	case "tesseract":
		ex, err := ocr.NewTesseractExtractor(cfg.OCR.Languages)
		if err != nil {
			log.WithError(err).Warn("tesseract unavailable", nil)
			return nil
		}
		return ex
	default:
		if !creds.DocumentAnalysisReady() {
			return nil
		}
		ex, err := ocr.NewAzureExtractor(ocr.AzureConfig{
			Endpoint:     creds.FormEndpoint,
			Key:          creds.FormKey,
			ModelID:      cfg.OCR.ModelID,
			APIVersion:   cfg.OCR.APIVersion,
			PollInterval: cfg.PollInterval(),
			HTTPClient:   httpClient,
		})
		if err != nil {
			log.WithError(err).Warn("document analysis client unavailable", nil)
			return nil
		}
		return ex
	}
}

// newLanguageModel returns a nil client when the configured provider cannot
// be built. The returned func releases provider resources.
func newLanguageModel(ctx context.Context, cfg *config.AppConfig, creds *config.Credentials, httpClient *http.Client, log logger.Logger) (llm.Client, func()) {
	noop := func() {}

	switch cfg.LLM.Provider {
	case "vertex":
		vc, err := llm.NewVertexClient(ctx, cfg.LLM.VertexProject, cfg.LLM.VertexRegion, cfg.LLM.VertexModel)
		if err != nil {
			log.WithError(err).Warn("vertex client unavailable", nil)
			return nil, noop
		}
		return vc, func() {
			if err := vc.Close(); err != nil {
				log.WithError(err).Warn("closing vertex client", nil)
			}
		}
	default:
		if !creds.LanguageModelReady() {
			return nil, noop
		}
		ac, err := llm.NewAzureClient(llm.AzureConfig{
			APIKey:     creds.OpenAIKey,
			Endpoint:   creds.OpenAIEndpoint,
			APIVersion: creds.OpenAIVersion,
			Deployment: creds.DeploymentName,
			HTTPClient: httpClient,
		})
		if err != nil {
			log.WithError(err).Warn("language model client unavailable", nil)
			return nil, noop
		}
		return ac, noop
	}
}

func printBanner(cfg *config.AppConfig, configPath string, ocrReady, llmReady bool) {
	status := func(ready bool) string {
		if ready {
			return "configured"
		}
		return "NOT configured"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Company Brain Decision Analysis                 ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Temp Dir:  %-46s║\n", cfg.GetTempDir())
	fmt.Printf("║  OCR:       %-46s║\n", cfg.OCR.Provider+" ("+status(ocrReady)+")")
	fmt.Printf("║  LLM:       %-46s║\n", cfg.LLM.Provider+" ("+status(llmReady)+")")
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
}
