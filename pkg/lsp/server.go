// Package lsp provides a Language Server Protocol (LSP) server for PEG
// grammar files.
package lsp

import (
	"fmt"
	"log/slog"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/Sumatoshi-tech/pegkit/internal/observability"
	"github.com/Sumatoshi-tech/pegkit/pkg/action"
	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/version"
)

const (
	serverName               = "pegkit"
	methodPublishDiagnostics = "textDocument/publishDiagnostics"
)

// Option configures a Server.
type Option func(*Server)

// WithEvaluator sets the evaluator used to check action code.
func WithEvaluator(e action.Evaluator) Option {
	return func(srv *Server) {
		srv.eval = e
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(srv *Server) {
		srv.logger = logger
	}
}

// Server implements the PEG grammar LSP server.
type Server struct {
	store   *DocumentStore
	handler protocol.Handler
	eval    action.Evaluator
	logger  *slog.Logger
}

// NewServer creates a new LSP server with default handlers.
func NewServer(opts ...Option) *Server {
	srv := &Server{
		store:  NewDocumentStore(),
		eval:   action.Chain(action.Builtins(), action.NewExpr()),
		logger: observability.DiscardLogger(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.handler = protocol.Handler{
		Initialize:             srv.initialize,
		Initialized:            srv.initialized,
		Shutdown:               srv.shutdown,
		SetTrace:               srv.setTrace,
		TextDocumentDidOpen:    srv.didOpen,
		TextDocumentDidChange:  srv.didChange,
		TextDocumentDidSave:    srv.didSave,
		TextDocumentDidClose:   srv.didClose,
		TextDocumentCompletion: srv.completion,
		TextDocumentHover:      srv.hover,
		TextDocumentDefinition: srv.definition,
	}

	return srv
}

// Run serves LSP on stdio until the client disconnects.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	if params.ClientInfo != nil {
		srv.logger.Info("lsp client connected", "client", params.ClientInfo.Name)
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version.Version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv.update(ctx, params.TextDocument.URI, params.TextDocument.Text)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	doc, ok := srv.store.Get(uri)
	if !ok {
		return nil
	}

	text := doc.Text

	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, c)
		case map[string]any:
			if t, textOK := c["text"].(string); textOK {
				text = t
			}
		}
	}

	srv.update(ctx, uri, text)

	return nil
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if params.Text != nil {
		srv.update(ctx, uri, *params.Text)

		return nil
	}

	if doc, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri, doc.Diagnostics)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)
	srv.publishDiagnostics(ctx, uri, []protocol.Diagnostic{})

	return nil
}

func (srv *Server) update(ctx *glsp.Context, uri, text string) {
	doc := srv.store.Update(uri, text, func(text string) (*grammar.Grammar, []protocol.Diagnostic) {
		return Diagnose(text, srv.eval)
	})

	srv.logger.Debug("document analyzed", "uri", uri, "diagnostics", len(doc.Diagnostics))
	srv.publishDiagnostics(ctx, uri, doc.Diagnostics)
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string, diags []protocol.Diagnostic) {
	ctx.Notify(methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// applyChange applies an incremental edit. A change without a range
// replaces the whole text.
func applyChange(text string, c protocol.TextDocumentContentChangeEvent) string {
	if c.Range == nil {
		return c.Text
	}

	start := toOffset(text, c.Range.Start)
	end := max(toOffset(text, c.Range.End), start)

	return text[:start] + c.Text + text[end:]
}
