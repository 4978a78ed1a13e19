package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/baserah/baserah/internal/agent"
	"github.com/baserah/baserah/internal/app"
	"github.com/baserah/baserah/internal/config"
	"github.com/baserah/baserah/internal/fluency"
	"github.com/baserah/baserah/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *agent.Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Generator.Seed = 42

	a, err := app.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a.Engine
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := s.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
		ss.Wait()
	})
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, name)
	require.NotEmpty(t, result.Content, name)

	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text, result.IsError
}

func TestListTools(t *testing.T) {
	session := connect(t, New(newEngine(t), Config{}, nil))

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, Tools, names)
}

func TestRespondTool(t *testing.T) {
	session := connect(t, New(newEngine(t), Config{}, nil))

	text, isErr := callTool(t, session, ToolRespond, map[string]any{"text": "من صنعك؟"})
	require.False(t, isErr, text)

	var resp models.Response
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, models.IntentQuestionCreator, resp.Intent)
	assert.Equal(t, models.MethodKnowledge, resp.Method)
	assert.Contains(t, resp.Text, "باسل")

	text, isErr = callTool(t, session, ToolHistory, map[string]any{"limit": 5})
	require.False(t, isErr, text)

	var turns []models.ConversationTurn
	require.NoError(t, json.Unmarshal([]byte(text), &turns))
	require.Len(t, turns, 1)
	assert.Equal(t, "من صنعك؟", turns[0].Input)
}

func TestAnalyzeTool(t *testing.T) {
	session := connect(t, New(newEngine(t), Config{}, nil))

	text, isErr := callTool(t, session, ToolAnalyze, map[string]any{"text": "مرحباً"})
	require.False(t, isErr, text)

	var inf models.IntentInference
	require.NoError(t, json.Unmarshal([]byte(text), &inf))
	assert.Equal(t, models.IntentGreeting, inf.Intent)
	assert.NotEmpty(t, inf.Scores)
}

func TestQueryKnowledgeTool(t *testing.T) {
	session := connect(t, New(newEngine(t), Config{}, nil))

	text, isErr := callTool(t, session, ToolQueryKnowledge, map[string]any{"subject": "بصيرة"})
	require.False(t, isErr, text)

	var facts []models.ScoredFact
	require.NoError(t, json.Unmarshal([]byte(text), &facts))
	require.GreaterOrEqual(t, len(facts), 4)
	assert.Equal(t, "بصيرة", facts[0].Subject)

	text, isErr = callTool(t, session, ToolQueryKnowledge, map[string]any{"subject": ""})
	assert.True(t, isErr)
	assert.Contains(t, text, "subject is required")
}

func TestSettingsTool(t *testing.T) {
	engine := newEngine(t)
	session := connect(t, New(engine, Config{}, nil))

	text, isErr := callTool(t, session, ToolSettings, map[string]any{"writing_style": "formal", "detail_level": "brief", "fluency": false})
	require.False(t, isErr, text)

	settings := engine.Settings()
	assert.Equal(t, fluency.StyleFormal, settings.WritingStyle)
	assert.Equal(t, fluency.DetailBrief, settings.DetailLevel)
	assert.False(t, settings.Components.Fluency)
	assert.True(t, settings.Components.Knowledge)

	text, isErr = callTool(t, session, ToolSettings, map[string]any{"writing_style": "poetic"})
	assert.True(t, isErr)
	assert.Contains(t, text, "poetic")
}

func TestStatsTool(t *testing.T) {
	session := connect(t, New(newEngine(t), Config{RateLimit: 100, Burst: 10}, nil))

	callTool(t, session, ToolRespond, map[string]any{"text": "مرحباً"})
	text, isErr := callTool(t, session, ToolStats, nil)
	require.False(t, isErr, text)

	var stats struct {
		Turns      int64              `json:"turns"`
		Facts      int                `json:"facts"`
		RateLimits []*RateLimitStatus `json:"rate_limits"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &stats))
	assert.EqualValues(t, 1, stats.Turns)
	assert.Equal(t, 9, stats.Facts)
	require.Len(t, stats.RateLimits, len(Tools))
	assert.EqualValues(t, 1, stats.RateLimits[0].Allowed)
}

func TestRespondToolIsRateLimited(t *testing.T) {
	s := New(newEngine(t), Config{RateLimit: 0.001, Burst: 1}, nil)
	session := connect(t, s)

	_, isErr := callTool(t, session, ToolRespond, map[string]any{"text": "مرحباً"})
	assert.False(t, isErr)

	text, isErr := callTool(t, session, ToolRespond, map[string]any{"text": "مرحباً"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Rate limit exceeded")

	status := s.Limiter().Status(ToolRespond)
	assert.EqualValues(t, 1, status.Allowed)
	assert.EqualValues(t, 1, status.Rejected)
}

func TestHTTPHandler(t *testing.T) {
	s := New(newEngine(t), Config{}, nil)
	httpServer := httptest.NewServer(s.Handler())

	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: httpServer.URL}, nil)
	require.NoError(t, err)

	text, isErr := callTool(t, session, ToolRespond, map[string]any{"text": "شكراً"})
	assert.False(t, isErr, text)
	assert.Contains(t, text, `"intent": "gratitude"`)

	require.NoError(t, session.Close())
	httpServer.CloseClientConnections()
	httpServer.Close()
}
