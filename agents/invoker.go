package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/temporal-sa/interactive-research/research"
)

// ChatClient captures the subset of the OpenAI client used by the invoker.
type ChatClient interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Invoker executes a single agent's model call. It performs no LLM-driven
// routing: handoff resolution happens statically via EffectiveTarget.
type Invoker struct {
	chat ChatClient
}

// NewInvoker builds an Invoker from an API key using the default OpenAI HTTP
// client.
func NewInvoker(apiKey string) (*Invoker, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return NewInvokerFromClient(&client.Chat.Completions), nil
}

// NewInvokerFromClient builds an Invoker from an existing chat completion
// service, letting tests substitute a fake.
func NewInvokerFromClient(chat ChatClient) *Invoker {
	return &Invoker{chat: chat}
}

// Run executes one chat completion for the agent with the given user input
// and returns the raw assistant text.
func (i *Invoker) Run(ctx context.Context, a *Agent, input string) (string, error) {
	if a == nil {
		return "", errors.New("agent is required")
	}
	resp, err := i.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(a.Instructions),
			openai.UserMessage(input),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: chat completion: %w", a.Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: chat completion returned no choices", a.Name)
	}
	return resp.Choices[0].Message.Content, nil
}

// Activities exposes the model-backed activity callables registered by the
// worker. They replace the implicit model activities the original deployment
// obtained from its agents plugin.
type Activities struct {
	invoker *Invoker
	triage  *Agent
	writer  *Agent
}

// NewActivities assembles the handoff graph and binds it to an invoker.
func NewActivities(invoker *Invoker) *Activities {
	return &Activities{
		invoker: invoker,
		triage:  NewTriageAgent(),
		writer:  NewResearchAgent(),
	}
}

// GenerateQuestions runs the clarifying agent (resolved through the triage
// graph) and parses its output into a question list. An empty list is a valid
// outcome: the workflow then skips the clarification phase.
func (a *Activities) GenerateQuestions(ctx context.Context, in *research.ClarifyInput) (*research.ClarifyOutput, error) {
	if in == nil {
		return nil, errors.New("generate questions: input is required")
	}
	target := EffectiveTarget(a.triage)
	raw, err := a.invoker.Run(ctx, target, in.Query)
	if err != nil {
		return nil, err
	}
	return &research.ClarifyOutput{Questions: ParseQuestions(raw)}, nil
}

// RunResearch runs the research agent over the enriched instructions and
// decodes its report payload.
func (a *Activities) RunResearch(ctx context.Context, in *research.ResearchInput) (*research.Result, error) {
	if in == nil {
		return nil, errors.New("run research: input is required")
	}
	raw, err := a.invoker.Run(ctx, a.writer, in.Instructions)
	if err != nil {
		return nil, err
	}
	result := ParseReport(raw)
	return &result, nil
}

// ParseQuestions extracts clarification questions from agent output, one per
// line, tolerating numbering and bullet prefixes.
func ParseQuestions(raw string) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 2 && isDigits(line[:i]) {
			line = strings.TrimSpace(line[i+1:])
		}
		if line == "" {
			continue
		}
		questions = append(questions, line)
	}
	return questions
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ParseReport decodes the research agent's JSON payload. Agents occasionally
// wrap JSON in markdown fences or reply with plain text; both degrade to a
// report built from the raw response rather than an error.
func ParseReport(raw string) research.Result {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var result research.Result
	if err := json.Unmarshal([]byte(trimmed), &result); err == nil && result.MarkdownReport != "" {
		return result
	}
	summary := trimmed
	if i := strings.IndexByte(summary, '\n'); i > 0 {
		summary = summary[:i]
	}
	return research.Result{
		MarkdownReport: trimmed,
		ShortSummary:   summary,
	}
}
