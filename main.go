package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"memestudio/core"
	"memestudio/core/validation"
	"memestudio/gateway"
	"memestudio/loader"
	"memestudio/logging"
	"memestudio/metrics"
	"memestudio/render"
	"memestudio/session"
	"memestudio/shutdown"
	"memestudio/webui"
	"memestudio/webui/auth"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// taskHistoryCapacity is how many recent task records the metrics store keeps
// for the live task feed.
const taskHistoryCapacity = 100

// cleanupInterval drives the background sweeps for expired studio sessions,
// auth sessions, and stale rate limit entries.
const cleanupInterval = time.Minute

func main() {
	// Windows service management commands (install, start, status, ...)
	if HandleServiceCommand(os.Args) {
		return
	}

	// When launched by the Windows service manager, hand control to the
	// service lifecycle instead of the interactive path.
	if asService, err := RunAsService(); err != nil {
		fmt.Fprintf(os.Stderr, "service error: %v\n", err)
		os.Exit(core.ExitCodeError)
	} else if asService {
		return
	}

	os.Exit(run())
}

// run is the interactive entry point. It returns an exit code instead of
// calling os.Exit so deferred cleanup (logger sync) still executes.
func run() int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("No .env file found, using process environment\n")
	}

	isDevelopment := core.ParseBoolEnv("DEV_MODE", false)

	logger, err := logging.NewLogger(isDevelopment, core.GetEnvOrDefault("LOG_FILE", "memestudio.log"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	logger.Info("Starting meme studio",
		zap.String("version", core.GetVersion()),
		zap.String("commit", core.GetGitCommit()),
		zap.Bool("dev_mode", isDevelopment),
	)

	if code := runStartupValidation(logger); code != core.ExitCodeSuccess {
		return code
	}

	// Safe to load after validation passes
	cfg, err := core.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("listen", cfg.ListenAddr()),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("ai_timeout", cfg.AITimeout),
		zap.Int("viewport_max", cfg.ViewportMax),
		zap.Int64("max_upload_bytes", cfg.MaxUploadBytes),
		zap.Bool("auth_enabled", cfg.HasAuth()),
		zap.Bool("allow_self_signed_certs", cfg.AllowSelfSignedCerts),
	)

	mgr := shutdown.NewManager(logger.Zap(), shutdown.WithTimeout(30*time.Second))
	mgr.Start()

	if err := runStudio(mgr.Context(), mgr, cfg, logger); err != nil {
		logger.Error("Studio server failed", zap.Error(err))
		mgr.Shutdown()
		return core.ExitCodeError
	}

	if err := mgr.Shutdown(); err != nil {
		logger.Error("Graceful shutdown completed with errors", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Goodbye!")
	return core.ExitCodeSuccess
}

// runStudio assembles the full server stack and serves until ctx is cancelled
// or the HTTP server fails. Shutdown hooks are registered on the manager; the
// caller drives the final Shutdown call. The interactive path passes the
// manager's own signal-driven context; the Windows service path passes the
// service lifecycle context.
func runStudio(ctx context.Context, mgr *shutdown.Manager, cfg *core.Config, logger *logging.Logger) error {
	catalog, err := loader.LoadCatalog(cfg.TemplatesFile)
	if err != nil {
		return fmt.Errorf("loading template catalog: %w", err)
	}
	logger.Info("Template catalog loaded", zap.Int("templates", catalog.Len()))

	renderer, err := render.NewRenderer(cfg.ViewportMax)
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	provider, err := gateway.NewProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing AI provider: %w", err)
	}
	logger.Info("AI provider ready", zap.String("provider", provider.Name()))

	imageLoader := loader.NewLoader(cfg.MaxUploadBytes, core.GetDefaultHTTPClient(cfg), catalog)

	sessions := session.NewStore(cfg.SessionTTL, imageLoader, renderer, provider, logger)
	sessions.StartCleanupTicker(ctx, cleanupInterval)

	collector := metrics.NewMetricsStore(metrics.StoreConfig{
		TaskHistoryCapacity: taskHistoryCapacity,
		Version:             core.GetVersion(),
		Provider:            provider.Name(),
	}, time.Now())

	apiConfig := webui.DefaultStudioAPIConfig()
	apiConfig.VersionInfo = webui.VersionInfo{
		Version:   core.GetVersion(),
		BuildTime: core.GetBuildTime(),
		GitCommit: core.GetGitCommit(),
	}

	studioAPI := webui.NewStudioAPI(sessions, catalog, collector, apiConfig, logger.Zap())

	var authProvider webui.AuthProvider
	if cfg.HasAuth() {
		middleware, err := auth.NewAuthMiddleware(cfg.StudioPassword, logger.Zap())
		if err != nil {
			return fmt.Errorf("initializing auth middleware: %w", err)
		}
		middleware.SessionStore().StartCleanupTicker(ctx, cleanupInterval)
		middleware.RateLimiter().StartCleanupTicker(ctx, cleanupInterval)
		authProvider = middleware
		logger.Info("Password gate enabled")
	} else {
		logger.Info("No STUDIO_PASSWORD set, studio is open")
	}

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port

	server, err := webui.NewServer(serverConfig, studioAPI, authProvider, logger.Zap())
	if err != nil {
		return fmt.Errorf("initializing web server: %w", err)
	}

	// Fan task lifecycle events out to both the metrics collector and the
	// websocket feed so the studio page updates live.
	sessions.SetObserver(newTaskFanout(metrics.NewTaskTracker(collector), server.GetBroadcaster()))

	mgr.Register("http_server", 10, func(shutdownCtx context.Context) error {
		return server.Shutdown(shutdownCtx)
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	logger.Info("Meme studio listening",
		zap.String("addr", server.Addr()),
		zap.Bool("auth", server.HasAuth()),
	)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

// runStartupValidation runs the configuration validation suite before any
// heavy initialization.
//
// Returns the appropriate exit code:
//   - ExitCodeSuccess (0) if all validations pass
//   - ExitCodeError (1) if any validation fails
func runStartupValidation(logger *logging.Logger) int {
	suite := validation.NewValidationSuite().WithShowProgress(true)
	result := suite.Validate()

	if !result.Success {
		logger.Error("Configuration validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration),
		)

		// Log individual failures for debugging
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}

		return core.ExitCodeError
	}

	logger.Info("Configuration validation passed",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Duration("duration", result.Duration),
	)
	return core.ExitCodeSuccess
}

// taskFeed receives task updates for the live websocket feed.
type taskFeed interface {
	BroadcastTaskUpdate(data webui.TaskUpdateData)
}

// taskFanout forwards task lifecycle events to the metrics tracker and the
// websocket broadcaster. Registered as the session store's observer.
//
// The task ID is minted once at TaskStarted and reused at TaskFinished so
// feed consumers can pair the processing event with its outcome. The session
// controller guarantees at most one in-flight operation per kind per session,
// so keying by session+kind never collides.
type taskFanout struct {
	tracker *metrics.TaskTracker
	feed    taskFeed

	mu  sync.Mutex
	ids map[string]string
}

func newTaskFanout(tracker *metrics.TaskTracker, feed taskFeed) *taskFanout {
	return &taskFanout{
		tracker: tracker,
		feed:    feed,
		ids:     make(map[string]string),
	}
}

func fanoutKey(sessionID string, kind session.OpKind) string {
	return sessionID + "/" + string(kind)
}

func (f *taskFanout) TaskStarted(sessionID string, kind session.OpKind) {
	f.tracker.TaskStarted(sessionID, kind)

	taskID := uuid.NewString()
	f.mu.Lock()
	f.ids[fanoutKey(sessionID, kind)] = taskID
	f.mu.Unlock()

	f.feed.BroadcastTaskUpdate(webui.TaskUpdateData{
		TaskID:    taskID,
		TaskType:  string(kind),
		SessionID: sessionID,
		Status:    "processing",
	})
}

func (f *taskFanout) TaskFinished(sessionID string, kind session.OpKind, taskErr error) {
	f.tracker.TaskFinished(sessionID, kind, taskErr)

	key := fanoutKey(sessionID, kind)
	f.mu.Lock()
	taskID, ok := f.ids[key]
	delete(f.ids, key)
	f.mu.Unlock()
	if !ok {
		taskID = uuid.NewString()
	}

	update := webui.TaskUpdateData{
		TaskID:    taskID,
		TaskType:  string(kind),
		SessionID: sessionID,
		Status:    "success",
	}
	if taskErr != nil {
		update.Status = "error"
		update.Error = taskErr.Error()
	}
	f.feed.BroadcastTaskUpdate(update)
}
