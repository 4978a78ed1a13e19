package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/baserah/baserah/internal/agent"
	"github.com/baserah/baserah/internal/fluency"
	"github.com/baserah/baserah/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Tool names
const (
	ToolRespond        = "respond"
	ToolAnalyze        = "analyze"
	ToolQueryKnowledge = "query_knowledge"
	ToolHistory        = "history"
	ToolStats          = "stats"
	ToolSettings       = "settings"
)

// Tools lists every registered tool
var Tools = []string{ToolRespond, ToolAnalyze, ToolQueryKnowledge, ToolHistory, ToolStats, ToolSettings}

// Config holds server settings
type Config struct {
	Name      string
	Version   string
	RateLimit float64 // Calls per second per tool, zero disables limiting
	Burst     int
}

// Server exposes an engine as MCP tools
type Server struct {
	engine  *agent.Engine
	limiter *RateLimiter
	mcp     *mcp.Server
	logger  *zap.Logger
}

// --- Input types ---

type TextInput struct {
	Text string `json:"text" jsonschema:"Arabic utterance"`
}

type QueryKnowledgeInput struct {
	Subject string `json:"subject" jsonschema:"Subject to look up, e.g. بصيرة"`
}

type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of recent turns, 0 for all"`
}

type SettingsInput struct {
	WritingStyle string `json:"writing_style,omitempty" jsonschema:"FRIENDLY, FORMAL or INFORMAL"`
	DetailLevel  string `json:"detail_level,omitempty" jsonschema:"BRIEF, MEDIUM, DETAILED or COMPREHENSIVE"`
	Knowledge    *bool  `json:"knowledge,omitempty" jsonschema:"Answer questions from the knowledge base"`
	Fluency      *bool  `json:"fluency,omitempty" jsonschema:"Polish responses"`
}

type EmptyInput struct{}

// New creates a server with every tool registered
func New(engine *agent.Engine, config Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Name == "" {
		config.Name = "baserah"
	}
	if config.Version == "" {
		config.Version = "0.1.0"
	}

	s := &Server{
		engine:  engine,
		limiter: NewRateLimiter(config.RateLimit, config.Burst),
		logger:  logger,
	}
	for _, tool := range Tools {
		s.limiter.Register(tool)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    config.Name,
		Version: config.Version,
	}, nil)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolRespond,
		Description: "Classify an Arabic message and return the assistant's reply",
	}, limited(s, ToolRespond, s.respond))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolAnalyze,
		Description: "Return intent scores, keywords, entities and word analysis without replying",
	}, limited(s, ToolAnalyze, s.analyze))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolQueryKnowledge,
		Description: "List direct and inferred facts about a subject",
	}, limited(s, ToolQueryKnowledge, s.queryKnowledge))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolHistory,
		Description: "Return recent conversation turns, oldest first",
	}, limited(s, ToolHistory, s.history))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolStats,
		Description: "Report lexicon, knowledge, history and rate limit statistics",
	}, limited(s, ToolStats, s.stats))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolSettings,
		Description: "Read or update writing style, detail level and components",
	}, limited(s, ToolSettings, s.settings))

	return s
}

// MCP returns the underlying MCP server
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Limiter returns the per-tool rate limiter
func (s *Server) Limiter() *RateLimiter {
	return s.limiter
}

// RunStdio serves over stdin and stdout until ctx is done
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("mcp server starting", zap.String("transport", "stdio"))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// ListenAndServe serves HTTP on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening", zap.String("transport", "http"), zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	}
}

func limited[In any](
	s *Server,
	tool string,
	next func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error),
) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		if !s.limiter.Allow(tool) {
			s.logger.Warn("tool call rate limited", zap.String("tool", tool))
			return toolError("Rate limit exceeded for %s, retry shortly", tool), nil, nil
		}
		return next(ctx, req, in)
	}
}

// --- Handlers ---

func (s *Server) respond(ctx context.Context, _ *mcp.CallToolRequest, in TextInput) (*mcp.CallToolResult, any, error) {
	resp, err := s.engine.Respond(ctx, in.Text)
	if err != nil {
		return toolError("Failed to respond: %v", err), nil, nil
	}
	return toolJSON(resp)
}

func (s *Server) analyze(_ context.Context, _ *mcp.CallToolRequest, in TextInput) (*mcp.CallToolResult, any, error) {
	return toolJSON(s.engine.Analyze(in.Text))
}

func (s *Server) queryKnowledge(_ context.Context, _ *mcp.CallToolRequest, in QueryKnowledgeInput) (*mcp.CallToolResult, any, error) {
	if in.Subject == "" {
		return toolError("subject is required"), nil, nil
	}
	facts := s.engine.Knowledge().Query(in.Subject)
	if facts == nil {
		facts = []models.ScoredFact{}
	}
	return toolJSON(facts)
}

func (s *Server) history(_ context.Context, _ *mcp.CallToolRequest, in HistoryInput) (*mcp.CallToolResult, any, error) {
	if in.Limit < 0 {
		return toolError("limit must not be negative"), nil, nil
	}
	turns := s.engine.History(in.Limit)
	if turns == nil {
		turns = []models.ConversationTurn{}
	}
	return toolJSON(turns)
}

type statsResult struct {
	*agent.Stats
	RateLimits []*RateLimitStatus `json:"rate_limits"`
}

func (s *Server) stats(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, any, error) {
	res := statsResult{Stats: s.engine.Stats(ctx)}
	for _, tool := range Tools {
		res.RateLimits = append(res.RateLimits, s.limiter.Status(tool))
	}
	return toolJSON(res)
}

func (s *Server) settings(_ context.Context, _ *mcp.CallToolRequest, in SettingsInput) (*mcp.CallToolResult, any, error) {
	settings := s.engine.Settings()

	if in.WritingStyle != "" {
		style, err := fluency.ParseStyle(in.WritingStyle)
		if err != nil {
			return toolError("%v", err), nil, nil
		}
		settings.WritingStyle = style
	}
	if in.DetailLevel != "" {
		level, err := fluency.ParseDetailLevel(in.DetailLevel)
		if err != nil {
			return toolError("%v", err), nil, nil
		}
		settings.DetailLevel = level
	}
	if in.Knowledge != nil {
		settings.Components.Knowledge = *in.Knowledge
	}
	if in.Fluency != nil {
		settings.Components.Fluency = *in.Fluency
	}

	if err := s.engine.UpdateSettings(settings); err != nil {
		return toolError("Failed to update settings: %v", err), nil, nil
	}
	return toolJSON(settings)
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
