package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temporal-sa/interactive-research/research"
)

type fakeChat struct {
	reply  string
	err    error
	params openai.ChatCompletionNewParams
	calls  int
}

func (f *fakeChat) New(_ context.Context, params openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls++
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func TestTriageGraphRoutesToClarifyingAgent(t *testing.T) {
	t.Parallel()
	triage := NewTriageAgent()
	require.Len(t, triage.Handoffs, 2)
	assert.Equal(t, "Clarifying Questions Agent", triage.Handoffs[0].Name)
	assert.Equal(t, "Instruction Agent", triage.Handoffs[1].Name)

	target := EffectiveTarget(triage)
	require.NotNil(t, target)
	assert.Equal(t, "Clarifying Questions Agent", target.Name)
}

func TestEffectiveTarget(t *testing.T) {
	t.Parallel()
	assert.Nil(t, EffectiveTarget(nil))

	leaf := NewResearchAgent()
	assert.Same(t, leaf, EffectiveTarget(leaf))

	nested := &Agent{Name: "outer", Handoffs: []*Agent{{Name: "middle", Handoffs: []*Agent{leaf}}}}
	assert.Same(t, leaf, EffectiveTarget(nested))
}

func TestInvokerRun(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{reply: "hello"}
	inv := NewInvokerFromClient(chat)

	agent := NewClarifyingAgent()
	out, err := inv.Run(context.Background(), agent, "my query")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	require.Len(t, chat.params.Messages, 2)
	assert.Equal(t, openai.ChatModel(agent.Model), chat.params.Model)
	assert.Equal(t, openai.SystemMessage(agent.Instructions), chat.params.Messages[0])
	assert.Equal(t, openai.UserMessage("my query"), chat.params.Messages[1])
}

func TestInvokerRunErrors(t *testing.T) {
	t.Parallel()
	inv := NewInvokerFromClient(&fakeChat{err: errors.New("boom")})
	_, err := inv.Run(context.Background(), NewResearchAgent(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Research Agent")

	_, err = inv.Run(context.Background(), nil, "x")
	require.Error(t, err)
}

func TestGenerateQuestionsUsesClarifyingAgent(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{reply: "1. How much coffee?\n2) Herbal tea too?\n- Decaf?"}
	acts := NewActivities(NewInvokerFromClient(chat))

	out, err := acts.GenerateQuestions(context.Background(), &research.ClarifyInput{Query: "caffeine"})
	require.NoError(t, err)
	assert.Equal(t, []string{"How much coffee?", "Herbal tea too?", "Decaf?"}, out.Questions)

	// Routing resolved through the triage graph lands on the clarifying agent.
	assert.Equal(t, openai.SystemMessage(clarifyingPrompt), chat.params.Messages[0])
}

func TestGenerateQuestionsEmptyReply(t *testing.T) {
	t.Parallel()
	acts := NewActivities(NewInvokerFromClient(&fakeChat{reply: "\n\n"}))
	out, err := acts.GenerateQuestions(context.Background(), &research.ClarifyInput{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, out.Questions)
}

func TestRunResearchDecodesReport(t *testing.T) {
	t.Parallel()
	chat := &fakeChat{reply: `{"markdown_report":"# R","short_summary":"s","follow_up_questions":["next?"]}`}
	acts := NewActivities(NewInvokerFromClient(chat))

	out, err := acts.RunResearch(context.Background(), &research.ResearchInput{Instructions: "do it"})
	require.NoError(t, err)
	assert.Equal(t, "# R", out.MarkdownReport)
	assert.Equal(t, "s", out.ShortSummary)
	assert.Equal(t, []string{"next?"}, out.FollowUpQuestions)
	assert.Equal(t, openai.ChatModel(openai.ChatModelGPT4o), chat.params.Model)
}

func TestParseQuestions(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain lines", "a?\nb?", []string{"a?", "b?"}},
		{"numbered", "1. a?\n2. b?\n10. c?", []string{"a?", "b?", "c?"}},
		{"paren numbered", "1) a?\n2) b?", []string{"a?", "b?"}},
		{"bullets", "- a?\n* b?\n• c?", []string{"a?", "b?", "c?"}},
		{"blank lines dropped", "\na?\n\nb?\n", []string{"a?", "b?"}},
		{"empty", "", nil},
		{"whitespace only", "  \n\t\n", nil},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParseQuestions(tc.raw))
		})
	}
}

func TestParseReport(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
		want research.Result
	}{
		{
			name: "plain json",
			raw:  `{"markdown_report":"# R","short_summary":"s","follow_up_questions":["f"]}`,
			want: research.Result{MarkdownReport: "# R", ShortSummary: "s", FollowUpQuestions: []string{"f"}},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"markdown_report\":\"# R\",\"short_summary\":\"s\"}\n```",
			want: research.Result{MarkdownReport: "# R", ShortSummary: "s"},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"markdown_report\":\"# R\",\"short_summary\":\"s\"}\n```",
			want: research.Result{MarkdownReport: "# R", ShortSummary: "s"},
		},
		{
			name: "plain text fallback",
			raw:  "Caffeine delays sleep onset.\nMore detail follows.",
			want: research.Result{
				MarkdownReport: "Caffeine delays sleep onset.\nMore detail follows.",
				ShortSummary:   "Caffeine delays sleep onset.",
			},
		},
		{
			name: "json without report falls back",
			raw:  `{"short_summary":"s"}`,
			want: research.Result{
				MarkdownReport: `{"short_summary":"s"}`,
				ShortSummary:   `{"short_summary":"s"}`,
			},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParseReport(tc.raw))
		})
	}
}

func TestNewInvokerRequiresAPIKey(t *testing.T) {
	t.Parallel()
	_, err := NewInvoker("")
	require.Error(t, err)
}
