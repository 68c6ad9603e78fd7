package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/pegkit/internal/observability"
	"github.com/Sumatoshi-tech/pegkit/pkg/config"
	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
)

const (
	// shutdownTimeout bounds the drain of in-flight requests.
	shutdownTimeout = 10 * time.Second

	// requestOverhead is allowed on top of the input limit for the JSON
	// envelope and the grammar.
	requestOverhead = 1 << 20

	// readyGrammar is compiled by the readiness probe.
	readyGrammar = "Start:\n  !.\n"
)

// CompileRequest is the body of POST /api/compile.
type CompileRequest struct {
	Grammar string `json:"grammar"`
	Start   string `json:"start,omitempty"`
}

// ParseRequest is the body of POST /api/parse.
type ParseRequest struct {
	Grammar string `json:"grammar"`
	Input   string `json:"input"`
	Start   string `json:"start,omitempty"`
	Actions string `json:"actions,omitempty"`
}

// ParseResponse is the success body of POST /api/parse.
type ParseResponse struct {
	Value any `json:"value"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type serveFlags struct {
	host string
	port int
}

func newServeCommand(a *app) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve grammar checking and parsing over HTTP.

Endpoints:
  POST /api/compile  {grammar, start?}                   rules and diagnostics
  POST /api/parse    {grammar, input, start?, actions?}  {value} or a failure
  GET  /healthz      liveness
  GET  /readyz       readiness
  GET  /metrics      Prometheus metrics

Compiled grammars are cached. SIGINT or SIGTERM drains in-flight requests
before exit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "listen host (default: server.host)")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "listen port (default: server.port)")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, flags serveFlags) error {
	obs, err := a.observabilityConfig(observability.ModeServe)
	if err != nil {
		return err
	}

	obs.Prometheus = true

	providers, err := initProviders(obs)
	if err != nil {
		return err
	}
	defer providers.close()

	handler, err := a.newAPIHandler(providers.Providers)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              a.listenAddr(flags),
		Handler:           handler,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveUntilDone(ctx, server, providers.Logger)
}

func (a *app) listenAddr(flags serveFlags) string {
	host := a.cfg.Server.Host
	if flags.host != "" {
		host = flags.host
	}

	port := a.cfg.Server.Port
	if flags.port != 0 {
		port = flags.port
	}

	return net.JoinHostPort(host, strconv.Itoa(port))
}

// serveUntilDone runs server until ctx is canceled, then shuts it down
// gracefully.
func serveUntilDone(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.InfoContext(ctx, "server listening", "addr", "http://"+server.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// api serves the /api endpoints.
type api struct {
	loader   *pegkit.Loader
	logger   *slog.Logger
	actions  string
	start    string
	maxInput int64
}

// newAPIHandler builds the routed handler wrapped in tracing and RED
// metrics. /metrics is served when providers carry a Prometheus handler.
func (a *app) newAPIHandler(providers observability.Providers) (http.Handler, error) {
	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	parseMetrics, err := observability.NewParseMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	maxInput, err := a.cfg.Parse.MaxInputBytes()
	if err != nil {
		return nil, fmt.Errorf("parse.max_input_size: %w", err)
	}

	loader, err := a.newLoader(
		pegkit.WithLogger(providers.Logger),
		pegkit.WithTracer(providers.Tracer),
		pegkit.WithMetrics(parseMetrics),
		pegkit.WithMaxInputSize(maxInput),
		pegkit.WithExcerptWidth(a.cfg.Parse.ExcerptWidth),
	)
	if err != nil {
		return nil, err
	}

	srv := &api{
		loader:   loader,
		logger:   providers.Logger,
		actions:  a.cfg.Actions.Mode,
		start:    a.cfg.Parse.Start,
		maxInput: maxInput,
	}

	if maxInput > 0 {
		providers.Logger.Debug("input limit", "max", humanize.IBytes(uint64(maxInput)))
	}

	return apiRoutes(srv, providers.Tracer, red, providers.MetricsHandler), nil
}

func apiRoutes(srv *api, tracer trace.Tracer, red *observability.REDMetrics, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/compile", srv.handleCompile)
	mux.HandleFunc("POST /api/parse", srv.handleParse)
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(observability.ReadyCheck{
		Name:  "compiler",
		Check: srv.ready,
	}))

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return observability.HTTPMiddleware(tracer, red, mux)
}

func (srv *api) ready(ctx context.Context) error {
	_, err := srv.loader.Compile(ctx, "readyz", readyGrammar)

	return err
}

func (srv *api) handleCompile(rw http.ResponseWriter, hr *http.Request) {
	var req CompileRequest
	if !srv.decode(rw, hr, &req) {
		return
	}

	eval, err := config.Evaluator(srv.actions)
	if err != nil {
		writeJSON(rw, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})

		return
	}

	res := pegkit.Check(req.Grammar,
		pegkit.WithStart(srv.startOr(req.Start)),
		pegkit.WithEvaluator(eval),
		pegkit.WithLogger(srv.logger),
	)

	status := http.StatusOK
	if res.HasErrors() {
		status = http.StatusUnprocessableEntity
	}

	writeJSON(rw, status, res)
}

func (srv *api) handleParse(rw http.ResponseWriter, hr *http.Request) {
	var req ParseRequest
	if !srv.decode(rw, hr, &req) {
		return
	}

	actions := req.Actions
	if actions == "" {
		actions = srv.actions
	}

	eval, err := config.Evaluator(actions)
	if err != nil {
		writeJSON(rw, http.StatusBadRequest, ErrorResponse{Error: err.Error()})

		return
	}

	parser, err := srv.loader.Compile(hr.Context(), "request", req.Grammar,
		pegkit.WithStart(srv.startOr(req.Start)),
		pegkit.WithEvaluator(eval),
	)
	if err != nil {
		writeJSON(rw, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})

		return
	}

	value, err := parser.Parse(hr.Context(), req.Input)

	switch {
	case errors.Is(err, pegkit.ErrInputTooLarge):
		writeJSON(rw, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
	case err != nil:
		writeJSON(rw, http.StatusUnprocessableEntity, pegkit.Describe(err))
	default:
		writeJSON(rw, http.StatusOK, ParseResponse{Value: value})
	}
}

func (srv *api) startOr(start string) string {
	if start != "" {
		return start
	}

	return srv.start
}

// decode reads a JSON body with a grammar. It writes the error response and
// returns false when the body is unusable.
func (srv *api) decode(rw http.ResponseWriter, hr *http.Request, dst interface{ grammarText() string }) bool {
	body := hr.Body
	if srv.maxInput > 0 {
		body = http.MaxBytesReader(rw, hr.Body, 2*srv.maxInput+requestOverhead)
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		status := http.StatusBadRequest

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}

		writeJSON(rw, status, ErrorResponse{Error: "invalid request body: " + err.Error()})

		return false
	}

	if dst.grammarText() == "" {
		writeJSON(rw, http.StatusBadRequest, ErrorResponse{Error: "grammar is required"})

		return false
	}

	return true
}

func (r *CompileRequest) grammarText() string { return r.Grammar }
func (r *ParseRequest) grammarText() string   { return r.Grammar }

// writeJSON encodes value as the response body with the given status.
func writeJSON(rw http.ResponseWriter, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	// The status line is already sent; an encoding failure cannot be reported.
	_ = json.NewEncoder(rw).Encode(value)
}
