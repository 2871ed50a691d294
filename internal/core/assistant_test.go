package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/almanac/internal/core/merge"
	"github.com/agenthands/almanac/internal/core/model"
	"github.com/agenthands/almanac/internal/store"
)

func newAssistant(t *testing.T, oracle *MockOracle) (*Assistant, *store.Memory) {
	t.Helper()
	s := store.NewMemory()
	merger := merge.NewCoordinator(s, &MockGeocoder{
		Coords:  model.Coordinates{Longitude: 116.4, Latitude: 39.9},
		Address: "北京市",
	})
	counter := 0
	merger.NewID = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}

	a := NewAssistant(oracle, s, merger)
	a.Location = time.UTC
	a.Now = func() time.Time {
		return time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC)
	}
	return a, s
}

func TestAnalyze_CreateFlow(t *testing.T) {
	oracle := &MockOracle{Response: `{
		"success": true,
		"message": "已添加日程",
		"type": "create",
		"events": [{
			"title": "团队午餐",
			"start": "2024-01-20T12:00:00",
			"end": "2024-01-20T13:00:00",
			"location": "望京"
		}]
	}`}
	a, s := newAssistant(t, oracle)

	result, err := a.Analyze(context.Background(), "中午12点和团队在望京吃饭")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "create", result.Type)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "id-1", result.Events[0].ID)
	require.NotNil(t, result.Events[0].Coordinates)

	stored, ok, _ := s.Get(context.Background(), "id-1")
	require.True(t, ok)
	assert.Equal(t, "团队午餐", stored.Title)
}

func TestAnalyze_CreateConflictSurfacesSuggestions(t *testing.T) {
	oracle := &MockOracle{Response: `{
		"success": true,
		"type": "create",
		"events": [{
			"title": "面试",
			"start": "2024-01-20T14:30:00",
			"end": "2024-01-20T15:30:00"
		}]
	}`}
	a, s := newAssistant(t, oracle)
	require.NoError(t, s.Put(context.Background(), model.Event{
		ID: "existing", Title: "周会",
		Start: time.Date(2024, 1, 20, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 20, 15, 0, 0, 0, time.UTC),
	}))

	result, err := a.Analyze(context.Background(), "下午两点半安排面试")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, `添加日程"面试"时发现时间冲突`)
	assert.Contains(t, result.Message, "周会")
	assert.Len(t, result.Suggestions, 3)
	assert.Empty(t, result.Events)
}

func TestAnalyze_QueryFlow(t *testing.T) {
	oracle := &MockOracle{Response: `{
		"success": true,
		"type": "query",
		"queryRange": {
			"start": "2024-01-20T00:00:00",
			"end": "2024-01-20T23:59:59"
		}
	}`}
	a, s := newAssistant(t, oracle)
	require.NoError(t, s.Put(context.Background(), model.Event{
		ID: "a", Title: "晨会",
		Start: time.Date(2024, 1, 20, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC),
	}))

	result, err := a.Analyze(context.Background(), "今天有什么安排")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "query", result.Type)
	assert.Equal(t, "09:30-10:00 晨会", result.Message)
}

func TestAnalyze_QueryEmptyWindowReturnsSentinel(t *testing.T) {
	oracle := &MockOracle{Response: `{
		"success": true,
		"type": "query",
		"queryRange": {
			"start": "2024-01-21T00:00:00",
			"end": "2024-01-21T23:59:59"
		}
	}`}
	a, _ := newAssistant(t, oracle)

	result, err := a.Analyze(context.Background(), "明天有什么安排")
	require.NoError(t, err)
	assert.Equal(t, "暂无日程安排", result.Message)
	assert.NotEmpty(t, result.Message)
}

func TestAnalyze_MalformedOracleOutput(t *testing.T) {
	oracle := &MockOracle{Response: "我不知道该怎么回答。"}
	a, s := newAssistant(t, oracle)

	result, err := a.Analyze(context.Background(), "随便说点什么")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "抱歉，我无法理解您的请求。请尝试更清晰地描述。", result.Message)

	events, _ := s.List(context.Background())
	assert.Empty(t, events)
}

func TestAnalyze_OracleUnavailable(t *testing.T) {
	oracle := &MockOracle{Err: errors.New("connection refused")}
	a, _ := newAssistant(t, oracle)

	result, err := a.Analyze(context.Background(), "今天有什么安排")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "抱歉，服务暂时不可用。请稍后再试。", result.Message)
}

func TestAnalyze_SystemPromptCarriesDateAndSchedule(t *testing.T) {
	oracle := &MockOracle{Response: `{"success": true, "type": "query", "queryRange": {"start": "2024-01-20T00:00:00", "end": "2024-01-20T23:59:59"}}`}
	a, s := newAssistant(t, oracle)
	require.NoError(t, s.Put(context.Background(), model.Event{
		ID: "a", Title: "晨会",
		Start: time.Date(2024, 1, 20, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC),
	}))

	_, err := a.Analyze(context.Background(), "今天有什么安排")
	require.NoError(t, err)
	assert.Contains(t, oracle.LastSystem, "2024-01-20")
	assert.Contains(t, oracle.LastSystem, "晨会")
	assert.Equal(t, "今天有什么安排", oracle.LastUser)
}

func TestAnalyze_UnknownTypeNotUnderstood(t *testing.T) {
	oracle := &MockOracle{Response: `{"success": true, "type": "delete"}`}
	a, _ := newAssistant(t, oracle)

	result, err := a.Analyze(context.Background(), "删除所有日程")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "抱歉，我无法理解您的请求。请尝试更清晰地描述。", result.Message)
}

func TestAnalyze_MarkdownFencedJSONAccepted(t *testing.T) {
	oracle := &MockOracle{Response: "```json\n{\"success\": true, \"type\": \"query\", \"queryRange\": {\"start\": \"2024-01-20T00:00:00\", \"end\": \"2024-01-20T23:59:59\"}}\n```"}
	a, _ := newAssistant(t, oracle)

	result, err := a.Analyze(context.Background(), "今天有什么安排")
	require.NoError(t, err)
	assert.True(t, result.Success)
}
