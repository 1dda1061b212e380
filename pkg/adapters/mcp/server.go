package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/sentinel"
	"github.com/aretw0/sentinel/internal/logging"
	"github.com/aretw0/sentinel/pkg/console"
	"github.com/aretw0/sentinel/pkg/config"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ProfileURI is the resource exposing the active tables.
const ProfileURI = "sentinel://profile"

// AskArgs are the arguments of the ask_sentinel tool.
type AskArgs struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// CommandArgs are the arguments of the run_command tool.
type CommandArgs struct {
	SessionID string `json:"session_id"`
	Input     string `json:"input"`
}

// TranscriptArgs are the arguments of the get_transcript tool.
type TranscriptArgs struct {
	SessionID string `json:"session_id"`
	Channel   string `json:"channel"`
}

// AskResponse is the structured result of ask_sentinel.
type AskResponse struct {
	Reply  string          `json:"reply" jsonschema_description:"The chat reply"`
	Source sentinel.Source `json:"source" jsonschema_description:"Where the reply came from: rule, fallback, generator or unavailable"`
}

// CommandResponse is the structured result of run_command.
type CommandResponse struct {
	Kind  domain.ResultKind `json:"kind" jsonschema_description:"appended or cleared"`
	Lines []string          `json:"lines" jsonschema_description:"Lines appended to the terminal, prompt line first"`
}

// Server exposes a Console as an MCP server.
type Server struct {
	console   *console.Console
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(cons *console.Console, opts ...Option) *Server {
	s := &Server{
		console:   cons,
		mcpServer: server.NewMCPServer("sentinel-mcp", strings.TrimSpace(sentinel.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: ask_sentinel
	askTool := mcp.NewTool("ask_sentinel",
		mcp.WithDescription("Send a chat message to Sentinel and get its reply. The exchange is kept in the session's chat transcript."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session that owns the transcript")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The chat message")),
		mcp.WithOutputSchema[AskResponse](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	// TOOL: run_command
	commandTool := mcp.NewTool("run_command",
		mcp.WithDescription("Run one line in the simulated terminal (try 'help')."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session that owns the transcript")),
		mcp.WithString("input", mcp.Required(), mcp.Description("The command line")),
		mcp.WithOutputSchema[CommandResponse](),
	)
	s.mcpServer.AddTool(commandTool, mcp.NewStructuredToolHandler(s.handleCommand))

	// TOOL: get_transcript
	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the chat or terminal transcript of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("channel", mcp.Required(), mcp.Enum(string(domain.ChannelChat), string(domain.ChannelTerminal))),
	), mcp.NewTypedToolHandler(s.handleTranscript))
}

func (s *Server) handleAsk(ctx context.Context, _ mcp.CallToolRequest, args AskArgs) (AskResponse, error) {
	turn, err := s.console.Chat(ctx, args.SessionID, args.Message)
	if err != nil {
		s.logger.Warn("MCP ask failed", "session_id", args.SessionID, "error", err)
		return AskResponse{}, fmt.Errorf("ask failed: %w", err)
	}
	return AskResponse{Reply: turn.Reply.Text, Source: turn.Reply.Source}, nil
}

func (s *Server) handleCommand(ctx context.Context, _ mcp.CallToolRequest, args CommandArgs) (CommandResponse, error) {
	turn, err := s.console.Terminal(ctx, args.SessionID, args.Input)
	if err != nil {
		s.logger.Warn("MCP command failed", "session_id", args.SessionID, "error", err)
		return CommandResponse{}, fmt.Errorf("command failed: %w", err)
	}
	return CommandResponse{Kind: turn.Result.Kind, Lines: turn.Result.Texts()}, nil
}

func (s *Server) handleTranscript(ctx context.Context, _ mcp.CallToolRequest, args TranscriptArgs) (*mcp.CallToolResult, error) {
	t, err := s.console.Transcript(ctx, args.SessionID, domain.Channel(args.Channel))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("transcript unavailable: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: sentinel://profile
	s.mcpServer.AddResource(mcp.NewResource(ProfileURI, "Active Sentinel profile",
		mcp.WithResourceDescription("Prompt, fallback, boot lines, chat rules and terminal commands"),
		mcp.WithMIMEType("application/x-yaml"),
	), s.readProfile)
}

func (s *Server) readProfile(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := config.Dump(s.console.Engine().Profile())
	if err != nil {
		return nil, fmt.Errorf("failed to dump profile: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ProfileURI,
			MIMEType: "application/x-yaml",
			Text:     string(data),
		},
	}, nil
}
