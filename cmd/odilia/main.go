// Command odilia is the Odilia screen-reader core: it mirrors the
// remote AT-SPI2 accessibility tree into a local cache, turns the
// resulting event stream (plus user intents relayed from
// odilia-keyboard over a unix-domain socket) into a deterministic
// command queue, and dispatches those commands to speech, focus and
// cache-mutation handlers (spec.md §1–§6).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odilia-app/odilia-core/internal/atspi"
	"github.com/odilia-app/odilia-core/internal/breadcrumbs"
	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/command"
	"github.com/odilia-app/odilia-core/internal/config"
	"github.com/odilia-app/odilia-core/internal/devtools"
	"github.com/odilia-app/odilia-core/internal/event"
	"github.com/odilia-app/odilia-core/internal/extract"
	"github.com/odilia-app/odilia-core/internal/handlers"
	"github.com/odilia-app/odilia-core/internal/ipc"
	"github.com/odilia-app/odilia-core/internal/logging"
	"github.com/odilia-app/odilia-core/internal/metrics"
	"github.com/odilia-app/odilia-core/internal/speech"
)

const usage = `odilia - the Odilia screen reader core

USAGE:
    odilia [OPTIONS]

OPTIONS:
    -metrics-addr string
        Address to serve Prometheus metrics on, e.g. :9090 (default: disabled)

    -mcp
        Run a Model Context Protocol introspection server over stdio
        alongside the core (for devtools, not for end users)

    -sentry-dsn string
        Sentry DSN for handler-failure reporting (default: $ODILIA_SENTRY_DSN,
        falling back to console reporting when unset)

    -trace
        Enable trace-level logging

    -h, -help
        Show this help message and exit
`

// focusHistoryCapacity and eventHistoryCapacity are spec.md §3's two
// bounded ring buffers, both sized 16.
const (
	focusHistoryCapacity = 16
	eventHistoryCapacity = 16
)

func main() {
	os.Exit(run())
}

func run() int {
	settings := config.Load()

	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus metrics on")
	mcpFlag := flag.Bool("mcp", false, "run an MCP introspection server over stdio")
	sentryDSN := flag.String("sentry-dsn", os.Getenv("ODILIA_SENTRY_DSN"), "Sentry DSN for error reporting")
	traceFlag := flag.Bool("trace", settings.TraceLogging, "enable trace logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	logging.EnableTrace(*traceFlag)
	log := logging.For("odilia")

	setUpReporting(*sentryDSN, *traceFlag)

	if err := ipc.AcquirePIDFile(settings.PIDFilePath); err != nil {
		logging.Error(log, "failed to acquire pid file", "path", settings.PIDFilePath, "error", err)
		return 1
	}
	defer ipc.ReleasePIDFile(settings.PIDFilePath)

	addr, err := a11yBusAddress()
	if err != nil {
		logging.Error(log, "failed to discover accessibility bus address", "error", err)
		return 1
	}
	provider, err := atspi.NewGodbusProvider(addr)
	if err != nil {
		logging.Error(log, "failed to connect to accessibility bus", "error", err)
		return 1
	}
	defer provider.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cache.New()
	hydrator := event.NewHydrator(c, provider)
	eventHistory := event.NewHistory(eventHistoryCapacity)
	focusHistory := extract.NewFocusHistory(focusHistoryCapacity)
	caretState := command.NewCaretState()
	modeState := command.NewModeState(command.ModeFocus)
	tracker := extract.NewFocusTracker()

	var speechOn atomic.Bool
	speechOn.Store(true)
	sink := speech.NewSink(speech.DialDispatcher)
	defer sink.Quit()

	eventRegistry := handlers.NewEventRegistry()
	registerEventHandlers(eventRegistry, c, focusHistory, caretState)

	commandRegistry := handlers.NewCommandRegistry(c)
	registerCommandHandlers(commandRegistry, sink, &speechOn, tracker, focusHistory, caretState, modeState)

	queue := command.NewQueue(128)
	go commandRegistry.Run(ctx, queue)

	if *metricsAddr != "" {
		startMetricsServer(ctx, *metricsAddr)
	}
	go reportCacheMetrics(ctx, c)

	if err := runEventPump(ctx, provider, hydrator, eventHistory, eventRegistry, queue); err != nil {
		logging.Error(log, "failed to subscribe to accessibility bus events", "error", err)
		return 1
	}

	ln, err := ipc.Listen(settings.SocketPath)
	if err != nil {
		logging.Error(log, "failed to listen on ipc socket", "path", settings.SocketPath, "error", err)
		return 1
	}
	defer ln.Close()

	router := &userEventRouter{
		queue:        queue,
		cache:        c,
		provider:     provider,
		focusHistory: focusHistory,
		speechOn:     &speechOn,
		cancel:       cancel,
	}
	server := ipc.NewServer(ln, router.handle)
	go func() {
		if err := server.Serve(); err != nil {
			logging.Error(log, "ipc server exited with error", "error", err)
		}
	}()

	if *mcpFlag {
		go runMCPServer(ctx, c)
	}

	logging.Trace(log, "odilia core started", "socket", settings.SocketPath)
	<-ctx.Done()
	logging.Trace(log, "odilia core shutting down")
	queue.Close()
	return 0
}

// setUpReporting installs the breadcrumbs.Reporter handler failures are
// sent to: Sentry when a DSN is configured, otherwise a console
// reporter so failures are never silently dropped outside of tests.
func setUpReporting(dsn string, verbose bool) {
	log := logging.For("odilia")
	if dsn != "" {
		reporter, err := breadcrumbs.NewSentry(dsn, breadcrumbs.WithEnvironment("production"))
		if err != nil {
			logging.Error(log, "failed to initialize sentry reporter, falling back to console", "error", err)
			breadcrumbs.SetReporter(breadcrumbs.NewConsole(verbose))
			return
		}
		breadcrumbs.SetReporter(reporter)
		return
	}
	breadcrumbs.SetReporter(breadcrumbs.NewConsole(verbose))
}

// runEventPump subscribes to the accessibility bus and starts the
// goroutine that hydrates every raw event, records it for devtools
// introspection, dispatches it to the event handler table, and enqueues
// the resulting commands (spec.md §4.2, §4.3).
func runEventPump(ctx context.Context, provider atspi.Provider, hydrator *event.Hydrator, history *event.History, registry *handlers.EventRegistry, queue *command.Queue) error {
	events, err := provider.Events(ctx)
	if err != nil {
		return err
	}
	log := logging.For("odilia")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-events:
				if !ok {
					return
				}
				hydrated, ok := hydrator.Hydrate(ctx, raw)
				if !ok {
					continue
				}
				history.Record(hydrated)
				cmds := registry.Dispatch(ctx, hydrated)
				if len(cmds) == 0 {
					continue
				}
				if err := queue.EnqueueAll(ctx, cmds); err != nil {
					logging.Error(log, "failed to enqueue commands", "error", err)
				}
			}
		}
	}()
	return nil
}

// startMetricsServer registers a Prometheus collector as the global
// metrics.Collector and serves it over HTTP on addr until ctx is
// canceled.
func startMetricsServer(ctx context.Context, addr string) {
	log := logging.For("odilia")
	reg := prometheus.NewRegistry()
	metrics.SetGlobal(metrics.NewPrometheus(reg))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logging.Trace(log, "metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error(log, "metrics server failed", "error", err)
		}
	}()
}

// reportCacheMetrics periodically reports the cache size to the
// installed metrics.Collector (a NoOp unless startMetricsServer
// installed a Prometheus one). Queue depth is already reported inline
// by command.Queue itself on every Enqueue/Dequeue.
func reportCacheMetrics(ctx context.Context, c *cache.Cache) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.Global().RecordCacheSize(c.Len())
		}
	}
}

// runMCPServer exposes the running cache over the Model Context
// Protocol on stdio (devtools.NewMCPServer), blocking until the client
// disconnects or ctx is canceled.
func runMCPServer(ctx context.Context, c *cache.Cache) {
	log := logging.For("odilia")
	server := devtools.NewMCPServer(c)
	session, err := server.Connect(ctx, &mcp.StdioTransport{}, nil)
	if err != nil {
		logging.Error(log, "failed to start mcp server", "error", err)
		return
	}
	if err := session.Wait(); err != nil {
		logging.Trace(log, "mcp session ended", "error", err)
	}
}
