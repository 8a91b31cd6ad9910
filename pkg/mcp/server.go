package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/tagrss/pkg/classifier"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/log"
	"github.com/macropower/tagrss/pkg/store"
	"github.com/macropower/tagrss/pkg/version"
)

// ItemLister lists stored items. It is satisfied by [*store.Store].
type ItemLister interface {
	ListItems(ctx context.Context, q store.ItemQuery) ([]*item.Item, error)
}

// Server implements the MCP server for tagrss.
type Server struct {
	classifier *classifier.Classifier
	items      ItemLister
	recorder   *log.Recorder
	server     *mcp.Server
	tracer     trace.Tracer
	address    string
}

// ServerOpt configures a [Server].
type ServerOpt func(*Server)

// WithItems enables the folder_items tool, backed by items.
func WithItems(items ItemLister) ServerOpt {
	return func(s *Server) {
		s.items = items
	}
}

// WithRecorder enables the recent_logs tool, backed by r.
func WithRecorder(r *log.Recorder) ServerOpt {
	return func(s *Server) {
		s.recorder = r
	}
}

// NewServer creates a new MCP server instance. An empty address serves
// over stdio; otherwise streamable HTTP is served on address.
func NewServer(address string, c *classifier.Classifier, opts ...ServerOpt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.Get().Version,
	}

	s := &Server{
		address:    address,
		classifier: c,
		server:     mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		tracer:     otel.Tracer("mcp-server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s
}

// registerTools registers all available tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_item",
		Description: "Apply the tag rules to an ad-hoc item and list the folders it would belong to. Nothing is stored.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"title":     newStringSchema("The item title."),
				"content":   newStringSchema("The item body, if any."),
				"url":       newStringSchema("The item link, if any."),
				"sourceID":  newIntegerSchema("The ID of the feed source the item came from, if any."),
				"published": newStringSchema("The RFC 3339 publication time, if any."),
				"tags": {
					Type:        "array",
					Description: "Tags the item already carries.",
					Items:       newStringSchema("A tag name."),
				},
			},
			Required: []string{"title"},
		},
	}, WithTracing(s.tracer, s.handleClassifyItem))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_folders",
		Description: "List the configured folders with their expressions, plus any folder definitions that were skipped.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, WithTracing(s.tracer, s.handleListFolders))

	if s.items != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "folder_items",
			Description: "List stored items belonging to a folder, newest first. You MUST use a folder name from list_folders EXACTLY.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"folder": newStringSchema("The folder name."),
					"limit":  newIntegerSchema("The maximum number of items to return. Defaults to 50."),
				},
				Required: []string{"folder"},
			},
		}, WithTracing(s.tracer, s.handleFolderItems))
	}

	if s.recorder != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "recent_logs",
			Description: "Show the most recent log records of this server, oldest first.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"limit": newIntegerSchema("The maximum number of records to return. Defaults to all."),
				},
			},
		}, WithTracing(s.tracer, s.handleRecentLogs))
	}
}

func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve starts the MCP server and blocks until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.ErrorContext(ctx, "shutdown MCP server", slog.Any("err", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)

	err := s.server.Run(ctx, t)
	if err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
