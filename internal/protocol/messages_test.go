package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePromptStyle(t *testing.T) {
	tests := []struct {
		name                          string
		formatting, length, technique string
		want                          PromptStyle
		wantErr                       bool
	}{
		{name: "defaults", want: DefaultPromptStyle()},
		{
			name:       "wire names",
			formatting: "Plain Text", length: "Comprehensive", technique: "Chain-of-Thought",
			want: PromptStyle{FormattingPlainText, LengthComprehensive, TechniqueChainOfThought},
		},
		{
			name:       "identifier names",
			formatting: "PlainText", length: "concise", technique: "ZeroShot",
			want: PromptStyle{FormattingPlainText, LengthConcise, TechniqueZeroShot},
		},
		{
			name:       "mixed case",
			formatting: "xml", length: "DETAILED", technique: "few-shot",
			want: PromptStyle{FormattingXML, LengthDetailed, TechniqueFewShot},
		},
		{name: "bad formatting", formatting: "html", wantErr: true},
		{name: "bad length", length: "huge", wantErr: true},
		{name: "bad technique", technique: "magic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePromptStyle(tt.formatting, tt.length, tt.technique)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnhanceMessage_Wire(t *testing.T) {
	msg := NewEnhanceMessage(SessionRequest{
		Task:                   "write a poem",
		LazyPrompt:             "poem about rain",
		UseWebSearch:           true,
		AdditionalContextQuery: "rain poetry",
		TargetModel:            "gpt-5.1",
		IsReasoningNative:      true,
		Style:                  PromptStyle{Formatting: FormattingMarkdown},
	})

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, "enhance", wire["type"])
	assert.Equal(t, "write a poem", wire["task"])
	assert.Equal(t, "poem about rain", wire["lazy_prompt"])
	assert.Equal(t, true, wire["use_web_search"])
	assert.Equal(t, "rain poetry", wire["additional_context_query"])
	assert.Equal(t, "gpt-5.1", wire["target_model"])
	assert.Equal(t, true, wire["is_reasoning_native"])
	assert.Equal(t, map[string]interface{}{
		"formatting": "Markdown",
		"length":     "Detailed",
		"technique":  "Any",
	}, wire["prompt_style"])
}

func TestEditMessage_Wire(t *testing.T) {
	msg := NewEditMessage(EditRequest{
		CurrentPrompt:     "prompt",
		EditInstructions:  "shorter",
		EnhancementTaskID: "abc",
	})
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, "edit_request", wire["type"])
	assert.Equal(t, "prompt", wire["current_prompt"])
	assert.Equal(t, "shorter", wire["edit_instructions"])
	assert.Equal(t, "abc", wire["enhancement_task_id"])
	assert.Contains(t, wire, "target_model")
	assert.Contains(t, wire, "is_reasoning_native")
	assert.Contains(t, wire, "prompt_style")
}

func TestAnswerMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  AnswerMessage
		want string
	}{
		{
			name: "submit",
			msg:  NewSubmitMessage([]string{"kids", ""}, false),
			want: `{"type":"user_answer","action":"submit","answers":["kids",""]}`,
		},
		{
			name: "cancel",
			msg:  NewCancelMessage(false),
			want: `{"type":"user_answer","action":"cancel"}`,
		},
		{
			name: "legacy submit",
			msg:  NewSubmitMessage([]string{"kids"}, true),
			want: `{"type":"user_answer","answers":["kids"]}`,
		},
		{
			name: "legacy cancel",
			msg:  NewCancelMessage(true),
			want: `{"type":"user_answer","answers":"CANCEL"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestEvent_QuestionList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "list", raw: `{"type":"user_question","questions":["a?","b?"]}`, want: []string{"a?", "b?"}},
		{name: "legacy single question", raw: `{"type":"user_question","question":"a?"}`, want: []string{"a?"}},
		{name: "empty list", raw: `{"type":"user_question","questions":[]}`, want: nil},
		{name: "blank question", raw: `{"type":"user_question","question":"  "}`, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev Event
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ev))
			assert.Equal(t, EventUserQuestion, ev.Type)
			assert.Equal(t, tt.want, ev.QuestionList())
		})
	}
}

func TestEvent_TaskComplete(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"type":"task_complete","result":"done","is_fallback":true}`), &ev))
	assert.Equal(t, EventTaskComplete, ev.Type)
	assert.Equal(t, "done", ev.Result)
	assert.True(t, ev.IsFallback)
}
