package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/agenthands/almanac/internal/core/common"
	"github.com/agenthands/almanac/internal/core/merge"
	"github.com/agenthands/almanac/internal/core/model"
	"github.com/agenthands/almanac/internal/core/query"
	"github.com/agenthands/almanac/internal/llm"
	"github.com/agenthands/almanac/internal/store"
)

// Fixed user-visible failure strings. Boundary failures degrade to these;
// they never propagate as errors out of Analyze.
const (
	msgNotUnderstood = "抱歉，我无法理解您的请求。请尝试更清晰地描述。"
	msgUnavailable   = "抱歉，服务暂时不可用。请稍后再试。"
)

// defaultSystemPrompt instructs the oracle to answer with the structured
// query/create JSON the assistant dispatches on. The two %s verbs are the
// current date and the serialized schedule.
const defaultSystemPrompt = `你是一个智能的日历助手，可以帮助用户安排和查询日程。当前日期是%s。

用户当前的日程安排：
%s

【重要提示】：
1. 你可以处理两种类型的请求：
   A. 日程查询：当用户询问某个时间段的安排时
   B. 日程创建：当用户要创建新的日程时

2. 对于日程查询：
   - 理解用户的时间范围（今天、明天、本周等）
   - 返回该时间范围内的所有日程安排

3. 对于日程创建：
   - 对于常见活动使用合理的默认持续时间
   - 提取并记录位置信息以便在地图上显示

4. 回复格式：
   A. 对于日程查询：
   {
     "success": true,
     "message": "为您找到以下安排：",
     "type": "query",
     "queryRange": {
       "start": "2024-01-20T00:00:00",
       "end": "2024-01-20T23:59:59"
     }
   }

   B. 对于日程创建：
   {
     "success": true,
     "message": "已添加日程",
     "type": "create",
     "events": [{
       "title": "事件标题",
       "start": "2024-01-20T14:00:00",
       "end": "2024-01-20T15:00:00",
       "location": "地点",
       "description": "描述"
     }]
   }

请分析用户输入，判断是查询还是创建请求，并按照相应格式返回响应。`

// ChatResult is one assistant turn's outcome for the presentation layer.
type ChatResult struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Type        string          `json:"type,omitempty"`
	Events      []model.Event   `json:"events,omitempty"` // applied events
	Outcomes    []merge.Outcome `json:"outcomes,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// Assistant wires the oracle, the merge coordinator, and the query
// resolver into one chat turn.
type Assistant struct {
	LLM    llm.Client
	Store  store.Store
	Merger *merge.Coordinator

	// SystemPrompt overrides defaultSystemPrompt when non-empty.
	SystemPrompt string
	// Location interprets zone-less oracle timestamps.
	Location *time.Location
	// Now is injectable for tests.
	Now func() time.Time
}

func NewAssistant(client llm.Client, s store.Store, merger *merge.Coordinator) *Assistant {
	return &Assistant{
		LLM:      client,
		Store:    s,
		Merger:   merger,
		Location: time.Local,
		Now:      time.Now,
	}
}

// Analyze runs one chat turn: ask the oracle to classify the message, then
// either resolve the query window against the schedule or merge the
// proposed events into it.
func (a *Assistant) Analyze(ctx context.Context, message string) (*ChatResult, error) {
	schedule, err := a.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	prompt := a.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	system := fmt.Sprintf(prompt, a.Now().In(a.Location).Format("2006-01-02"), query.FormatEvents(schedule))

	response, err := a.LLM.Chat(ctx, system, message)
	if err != nil {
		log.Printf("oracle request failed: %v", err)
		return &ChatResult{Success: false, Message: msgUnavailable}, nil
	}

	parsed, err := common.DecodeObject[model.OracleResponse](response)
	if err != nil {
		log.Printf("oracle response not parseable: %v", err)
		return &ChatResult{Success: false, Message: msgNotUnderstood}, nil
	}

	switch {
	case parsed.Type == "query" && parsed.QueryRange != nil:
		return a.resolveQuery(schedule, parsed)
	case parsed.Type == "create" && len(parsed.Events) > 0:
		return a.applyProposals(ctx, parsed)
	default:
		return &ChatResult{Success: false, Message: msgNotUnderstood}, nil
	}
}

func (a *Assistant) resolveQuery(schedule []model.Event, parsed model.OracleResponse) (*ChatResult, error) {
	start, err := model.ParseOracleTime(parsed.QueryRange.Start, a.Location)
	if err != nil {
		return &ChatResult{Success: false, Message: msgNotUnderstood}, nil
	}
	end, err := model.ParseOracleTime(parsed.QueryRange.End, a.Location)
	if err != nil {
		return &ChatResult{Success: false, Message: msgNotUnderstood}, nil
	}

	return &ChatResult{
		Success: true,
		Type:    "query",
		Message: query.Resolve(schedule, start, end),
	}, nil
}

func (a *Assistant) applyProposals(ctx context.Context, parsed model.OracleResponse) (*ChatResult, error) {
	proposals := make([]model.Event, 0, len(parsed.Events))
	for _, p := range parsed.Events {
		ev, err := p.ToEvent(a.Location)
		if err != nil {
			log.Printf("discarding proposal %q: %v", p.Title, err)
			continue
		}
		proposals = append(proposals, ev)
	}
	if len(proposals) == 0 {
		return &ChatResult{Success: false, Message: msgNotUnderstood}, nil
	}

	outcomes, err := a.Merger.Apply(ctx, proposals)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{
		Success:  true,
		Type:     "create",
		Message:  parsed.Message,
		Outcomes: outcomes,
	}
	if result.Message == "" {
		result.Message = "已添加日程"
	}

	for _, out := range outcomes {
		switch out.Status {
		case merge.StatusApplied:
			result.Events = append(result.Events, out.Event)
		case merge.StatusRejectedConflict:
			result.Success = false
			result.Message = fmt.Sprintf(`添加日程"%s"时发现时间冲突: %s。请考虑调整时间。`,
				out.Event.Title, strings.Join(out.Conflicts, ", "))
			result.Suggestions = out.Suggestions
		case merge.StatusRejectedInvalid:
			result.Success = false
			result.Message = fmt.Sprintf(`无法添加日程"%s"：%s`, out.Event.Title, out.Reason)
		}
	}
	return result, nil
}
