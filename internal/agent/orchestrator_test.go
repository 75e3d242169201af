package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/RedditLens/consts"
	"github.com/dyike/RedditLens/internal/filter"
	"github.com/dyike/RedditLens/internal/tools"
	"github.com/dyike/RedditLens/models"
)

type turnRecord struct {
	tools      []string
	messages   []*schema.Message
	streamed   bool
	toolChoice *schema.ToolChoice
}

type script struct {
	mu      sync.Mutex
	replies []*schema.Message
	turns   []turnRecord
}

// scriptedModel replays canned assistant replies, one per turn.
type scriptedModel struct {
	script *script
	bound  []string
}

func newScriptedModel(replies ...*schema.Message) *scriptedModel {
	return &scriptedModel{script: &script{replies: replies}}
}

func (m *scriptedModel) next(msgs []*schema.Message, streamed bool, opts []model.Option) (*schema.Message, error) {
	m.script.mu.Lock()
	defer m.script.mu.Unlock()

	m.script.turns = append(m.script.turns, turnRecord{
		tools:      m.bound,
		messages:   msgs,
		streamed:   streamed,
		toolChoice: model.GetCommonOptions(nil, opts...).ToolChoice,
	})
	if len(m.script.replies) == 0 {
		return nil, errors.New("script exhausted")
	}
	reply := m.script.replies[0]
	m.script.replies = m.script.replies[1:]
	return reply, nil
}

func (m *scriptedModel) Generate(_ context.Context, msgs []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return m.next(msgs, false, opts)
}

func (m *scriptedModel) Stream(_ context.Context, msgs []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	reply, err := m.next(msgs, true, opts)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray(chunk(reply)), nil
}

func (m *scriptedModel) WithTools(infos []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return &scriptedModel{script: m.script, bound: names}, nil
}

func (m *scriptedModel) turns() []turnRecord {
	m.script.mu.Lock()
	defer m.script.mu.Unlock()
	return append([]turnRecord(nil), m.script.turns...)
}

// chunk splits a reply the way a provider stream would: text in small
// pieces, each tool call as a header fragment followed by argument pieces.
func chunk(msg *schema.Message) []*schema.Message {
	var out []*schema.Message
	for _, word := range strings.SplitAfter(msg.Content, " ") {
		if word != "" {
			out = append(out, &schema.Message{Role: schema.Assistant, Content: word})
		}
	}
	for i, call := range msg.ToolCalls {
		idx := i
		out = append(out, &schema.Message{Role: schema.Assistant, ToolCalls: []schema.ToolCall{{
			Index:    &idx,
			ID:       call.ID,
			Function: schema.FunctionCall{Name: call.Function.Name},
		}}})
		args := call.Function.Arguments
		half := len(args) / 2
		for _, part := range []string{args[:half], args[half:]} {
			out = append(out, &schema.Message{Role: schema.Assistant, ToolCalls: []schema.ToolCall{{
				Index:    &idx,
				Function: schema.FunctionCall{Arguments: part},
			}}})
		}
	}
	return out
}

func toolCall(id, name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}

type fakeSearcher struct {
	requests []models.SearchRequest
	posts    []models.Post
}

func (f *fakeSearcher) Search(_ context.Context, req models.SearchRequest) ([]models.Post, error) {
	f.requests = append(f.requests, req)
	if len(f.posts) > req.Limit {
		return f.posts[:req.Limit], nil
	}
	return f.posts, nil
}

type fakeClassifier struct {
	labels map[string]string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (string, error) {
	if label, ok := f.labels[text]; ok {
		return label, nil
	}
	return "neutral", nil
}

var catPosts = []models.Post{
	{Title: "Kitten found a sunbeam", URL: "https://www.reddit.com/r/cats/comments/1/", Score: 900, Subreddit: "cats", CreatedDate: "2024-05-01 10:00:00"},
	{Title: "Vet bill woes", URL: "https://www.reddit.com/r/cats/comments/2/", Score: 700, Subreddit: "cats", CreatedDate: "2024-05-01 09:00:00"},
	{Title: "Adopted a senior cat today", URL: "https://www.reddit.com/r/cats/comments/3/", Score: 500, Subreddit: "cats", CreatedDate: "2024-05-01 08:00:00"},
}

func catTools(searcher *fakeSearcher) []tool.InvokableTool {
	classifier := &fakeClassifier{labels: map[string]string{
		"Kitten found a sunbeam":     "happy",
		"Vet bill woes":              "sad",
		"Adopted a senior cat today": "happy",
	}}
	return []tool.InvokableTool{
		tools.NewRedditSearchTool(searcher),
		tools.NewPostFilterTool(filter.New(classifier)),
	}
}

func filterArgs(t *testing.T, posts []models.Post, sentiment string, maxPosts int) string {
	t.Helper()
	b, err := json.Marshal(models.FilterRequest{Posts: posts, Sentiment: sentiment, MaxPosts: maxPosts})
	require.NoError(t, err)
	return string(b)
}

func TestPlainTextReplySkipsTools(t *testing.T) {
	chat := newScriptedModel(schema.AssistantMessage("Hi! Ask me about Reddit.", nil))
	searcher := &fakeSearcher{}

	o, err := New(context.Background(), chat, catTools(searcher), WithSentimentFilter(true))
	require.NoError(t, err)

	answer, err := o.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi! Ask me about Reddit.", answer)
	assert.Empty(t, searcher.requests)

	turns := chat.turns()
	require.Len(t, turns, 1)
	assert.ElementsMatch(t, []string{consts.ToolSearchRedditPosts, consts.ToolFilterRedditPosts}, turns[0].tools)
	require.Len(t, turns[0].messages, 2)
	assert.Equal(t, schema.System, turns[0].messages[0].Role)
	assert.Equal(t, "hello", turns[0].messages[1].Content)
}

func TestSearchThenForcedFilter(t *testing.T) {
	searcher := &fakeSearcher{posts: catPosts}
	chat := newScriptedModel(
		toolCall("call_1", consts.ToolSearchRedditPosts, `{"query":"cats","limit":3,"time_filter":"day","sort":"top","subreddit":"cats"}`),
		toolCall("call_2", consts.ToolFilterRedditPosts, filterArgs(t, catPosts, "happy", 2)),
		schema.AssistantMessage("Two happy cat posts today.", nil),
	)

	o, err := New(context.Background(), chat, catTools(searcher), WithSentimentFilter(true))
	require.NoError(t, err)

	answer, err := o.Run(context.Background(), "Show me happy posts about cats from today")
	require.NoError(t, err)
	assert.Equal(t, "Two happy cat posts today.", answer)

	require.Len(t, searcher.requests, 1)
	assert.Equal(t, models.SearchRequest{Query: "cats", Limit: 3, TimeFilter: "day", Sort: "top", Subreddit: "cats"}, searcher.requests[0])

	turns := chat.turns()
	require.Len(t, turns, 3)
	assert.Equal(t, []string{consts.ToolFilterRedditPosts}, turns[1].tools)
	assert.Empty(t, turns[2].tools)

	require.NotNil(t, turns[0].toolChoice)
	assert.Equal(t, schema.ToolChoiceAllowed, *turns[0].toolChoice)
	require.NotNil(t, turns[1].toolChoice)
	assert.Equal(t, schema.ToolChoiceForced, *turns[1].toolChoice)
	assert.Nil(t, turns[2].toolChoice)

	final := turns[2].messages
	require.Len(t, final, 6)
	assert.Equal(t, schema.Assistant, final[2].Role)
	require.Len(t, final[2].ToolCalls, 1)
	assert.Equal(t, consts.ToolSearchRedditPosts, final[2].ToolCalls[0].Function.Name)
	assert.Equal(t, schema.Tool, final[3].Role)
	assert.Equal(t, "call_1", final[3].ToolCallID)
	assert.Equal(t, "call_2", final[5].ToolCallID)

	var kept []models.Post
	require.NoError(t, json.Unmarshal([]byte(final[5].Content), &kept))
	require.Len(t, kept, 2)
	for _, p := range kept {
		assert.Equal(t, "happy", p.Sentiment)
	}
	assert.Equal(t, "Kitten found a sunbeam", kept[0].Title)
	assert.Equal(t, "Adopted a senior cat today", kept[1].Title)
}

func TestSearchWithoutFilterTurn(t *testing.T) {
	searcher := &fakeSearcher{posts: catPosts}
	chat := newScriptedModel(
		toolCall("call_1", consts.ToolSearchRedditPosts, `{"query":"cats","limit":2,"time_filter":"week","sort":"hot"}`),
		schema.AssistantMessage("Here are two cat posts.", nil),
	)

	o, err := New(context.Background(), chat, []tool.InvokableTool{tools.NewRedditSearchTool(searcher)})
	require.NoError(t, err)

	answer, err := o.Run(context.Background(), "cats this week")
	require.NoError(t, err)
	assert.Equal(t, "Here are two cat posts.", answer)

	turns := chat.turns()
	require.Len(t, turns, 2)
	assert.Equal(t, []string{consts.ToolSearchRedditPosts}, turns[0].tools)
	assert.Len(t, turns[1].messages, 4)
}

func TestOnlyFirstToolCallIsServiced(t *testing.T) {
	searcher := &fakeSearcher{posts: catPosts}
	first := schema.AssistantMessage("", []schema.ToolCall{
		{ID: "a", Function: schema.FunctionCall{Name: consts.ToolSearchRedditPosts, Arguments: `{"query":"cats","limit":1,"time_filter":"all","sort":"new"}`}},
		{ID: "b", Function: schema.FunctionCall{Name: consts.ToolSearchRedditPosts, Arguments: `{"query":"dogs","limit":1,"time_filter":"all","sort":"new"}`}},
	})
	chat := newScriptedModel(first, schema.AssistantMessage("done", nil))

	o, err := New(context.Background(), chat, []tool.InvokableTool{tools.NewRedditSearchTool(searcher)})
	require.NoError(t, err)

	_, err = o.Run(context.Background(), "cats and dogs")
	require.NoError(t, err)
	require.Len(t, searcher.requests, 1)
	assert.Equal(t, "cats", searcher.requests[0].Query)

	final := chat.turns()[1].messages
	require.Len(t, final[2].ToolCalls, 1)
	assert.Equal(t, "a", final[2].ToolCalls[0].ID)
}

func TestUnknownTool(t *testing.T) {
	chat := newScriptedModel(toolCall("x", "get_weather", `{"city":"Paris"}`))
	o, err := New(context.Background(), chat, catTools(&fakeSearcher{}))
	require.NoError(t, err)

	_, err = o.Run(context.Background(), "weather?")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestMalformedArguments(t *testing.T) {
	for _, args := range []string{`{"query": "cats", `, `null`, `["cats"]`} {
		t.Run(args, func(t *testing.T) {
			searcher := &fakeSearcher{}
			chat := newScriptedModel(toolCall("x", consts.ToolSearchRedditPosts, args))
			o, err := New(context.Background(), chat, catTools(searcher))
			require.NoError(t, err)

			_, err = o.Run(context.Background(), "cats")
			assert.ErrorIs(t, err, ErrMalformedArguments)
			assert.Empty(t, searcher.requests)
		})
	}
}

func TestForcedFilterNotCalled(t *testing.T) {
	chat := newScriptedModel(
		toolCall("call_1", consts.ToolSearchRedditPosts, `{"query":"cats","limit":3,"time_filter":"day","sort":"top"}`),
		schema.AssistantMessage("I would rather not.", nil),
	)
	o, err := New(context.Background(), chat, catTools(&fakeSearcher{posts: catPosts}), WithSentimentFilter(true))
	require.NoError(t, err)

	_, err = o.Run(context.Background(), "cats")
	assert.ErrorIs(t, err, ErrToolNotCalled)
}

func TestForcedFilterWrongTool(t *testing.T) {
	chat := newScriptedModel(
		toolCall("call_1", consts.ToolSearchRedditPosts, `{"query":"cats","limit":3,"time_filter":"day","sort":"top"}`),
		toolCall("call_2", consts.ToolSearchRedditPosts, `{"query":"dogs","limit":3,"time_filter":"day","sort":"top"}`),
	)
	o, err := New(context.Background(), chat, catTools(&fakeSearcher{posts: catPosts}), WithSentimentFilter(true))
	require.NoError(t, err)

	_, err = o.Run(context.Background(), "cats")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestSentimentFilterRequiresFilterTool(t *testing.T) {
	_, err := New(context.Background(), newScriptedModel(),
		[]tool.InvokableTool{tools.NewRedditSearchTool(&fakeSearcher{})},
		WithSentimentFilter(true))
	require.Error(t, err)
}

func TestStreamForwardsFinalAnswer(t *testing.T) {
	searcher := &fakeSearcher{posts: catPosts}
	chat := newScriptedModel(
		toolCall("call_1", consts.ToolSearchRedditPosts, `{"query":"cats","limit":3,"time_filter":"day","sort":"top","subreddit":"cats"}`),
		toolCall("call_2", consts.ToolFilterRedditPosts, filterArgs(t, catPosts, "happy", 2)),
		schema.AssistantMessage("Two happy cat posts: a sunbeam and a senior adoption.", nil),
	)

	o, err := New(context.Background(), chat, catTools(searcher), WithSentimentFilter(true))
	require.NoError(t, err)

	var deltas []string
	answer, err := o.Stream(context.Background(), "happy cats today", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Two happy cat posts: a sunbeam and a senior adoption.", answer)
	assert.Greater(t, len(deltas), 1)
	assert.Equal(t, answer, strings.Join(deltas, ""))
	require.Len(t, searcher.requests, 1)

	turns := chat.turns()
	require.Len(t, turns, 3)
	for _, turn := range turns {
		assert.True(t, turn.streamed)
	}
	assert.Equal(t, "call_2", turns[2].messages[5].ToolCallID)
}

func TestStreamHoldsTextBeforeToolCall(t *testing.T) {
	searcher := &fakeSearcher{posts: catPosts}
	decision := toolCall("call_1", consts.ToolSearchRedditPosts, `{"query":"cats","limit":2,"time_filter":"day","sort":"top"}`)
	decision.Content = "Let me search Reddit for that. "
	chat := newScriptedModel(decision, schema.AssistantMessage("Cats are thriving today.", nil))

	o, err := New(context.Background(), chat, []tool.InvokableTool{tools.NewRedditSearchTool(searcher)})
	require.NoError(t, err)

	var deltas []string
	answer, err := o.Stream(context.Background(), "cats today", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Cats are thriving today.", answer)
	assert.Equal(t, answer, strings.Join(deltas, ""))

	turns := chat.turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "Let me search Reddit for that. ", turns[1].messages[2].Content)
}

func TestStreamDirectAnswer(t *testing.T) {
	chat := newScriptedModel(schema.AssistantMessage("Ask me about any subreddit.", nil))
	o, err := New(context.Background(), chat, catTools(&fakeSearcher{}))
	require.NoError(t, err)

	var deltas []string
	answer, err := o.Stream(context.Background(), "hi", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Ask me about any subreddit.", answer)
	assert.Equal(t, answer, strings.Join(deltas, ""))
}

func TestStreamDeltaErrorStops(t *testing.T) {
	chat := newScriptedModel(schema.AssistantMessage("one two three", nil))
	o, err := New(context.Background(), chat, catTools(&fakeSearcher{}))
	require.NoError(t, err)

	stop := errors.New("client gone")
	_, err = o.Stream(context.Background(), "hi", func(string) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestCustomSystemPrompt(t *testing.T) {
	chat := newScriptedModel(schema.AssistantMessage("ok", nil))
	o, err := New(context.Background(), chat, catTools(&fakeSearcher{}), WithSystemPrompt("be brief"))
	require.NoError(t, err)

	_, err = o.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "be brief", chat.turns()[0].messages[0].Content)
}

func TestDefaultSystemPrompt(t *testing.T) {
	plain, err := DefaultSystemPrompt(false)
	require.NoError(t, err)
	assert.Contains(t, plain, consts.ToolSearchRedditPosts)
	assert.NotContains(t, plain, consts.ToolFilterRedditPosts)

	withFilter, err := DefaultSystemPrompt(true)
	require.NoError(t, err)
	assert.Contains(t, withFilter, consts.ToolFilterRedditPosts)
	assert.NotContains(t, withFilter, "{{.")
}
