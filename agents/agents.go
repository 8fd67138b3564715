// Package agents assembles the static agent handoff graph consumed by the
// research workflow and provides the model-backed activities that execute
// individual agents through the OpenAI API.
//
// The graph is data, not control flow: triage always routes to the clarifying
// agent, and routing is resolved statically at assembly time rather than by a
// model call.
package agents

import "github.com/openai/openai-go"

// Agent is a declarative agent configuration: a name, the model it runs on,
// its fixed instructions and the sub-agents it may hand off to.
type Agent struct {
	Name         string
	Model        string
	Instructions string
	Handoffs     []*Agent
}

const triagePrompt = `You are a triage agent that determines if a research query needs clarifying questions to provide better results.

**Always route to CLARIFYING AGENT**

- Always call transfer_to_clarifying_questions_agent

Return exactly ONE function-call.`

const clarifyingPrompt = `You are a clarifying questions agent. Given a research query, ask up to three short clarifying questions that would improve the quality of the research.

Return one question per line with no numbering or commentary. Return nothing if the query needs no clarification.`

const instructionPrompt = `You are an instruction agent. Rewrite the research query into detailed research instructions covering scope, angle and desired depth.`

const researchPrompt = `You are a research agent. Using the provided research instructions, write a thorough markdown research report.

Respond with a JSON object containing exactly these keys:
  "markdown_report": the full report in markdown,
  "short_summary": a two sentence summary,
  "follow_up_questions": an array of suggested follow-up questions.`

// NewTriageAgent builds the routing agent. Its instructions always hand off
// to the clarifying agent. The instruction agent is wired as a second handoff
// target but is unreachable under the always-route rule; it is kept as
// assembled in the original system rather than removed.
func NewTriageAgent() *Agent {
	return &Agent{
		Name:         "Triage Agent",
		Model:        openai.ChatModelGPT4oMini,
		Instructions: triagePrompt,
		Handoffs: []*Agent{
			NewClarifyingAgent(),
			NewInstructionAgent(),
		},
	}
}

// NewClarifyingAgent builds the agent that produces clarification questions
// for a research query.
func NewClarifyingAgent() *Agent {
	return &Agent{
		Name:         "Clarifying Questions Agent",
		Model:        openai.ChatModelGPT4oMini,
		Instructions: clarifyingPrompt,
	}
}

// NewInstructionAgent builds the agent that expands a query into research
// instructions.
func NewInstructionAgent() *Agent {
	return &Agent{
		Name:         "Instruction Agent",
		Model:        openai.ChatModelGPT4oMini,
		Instructions: instructionPrompt,
	}
}

// NewResearchAgent builds the agent that writes the final report.
func NewResearchAgent() *Agent {
	return &Agent{
		Name:         "Research Agent",
		Model:        openai.ChatModelGPT4o,
		Instructions: researchPrompt,
	}
}

// EffectiveTarget resolves where the triage graph actually routes. The triage
// instructions mandate a single transfer to the clarifying agent, so the
// resolution is static: the first handoff target. Agents without handoffs
// execute themselves.
func EffectiveTarget(a *Agent) *Agent {
	if a == nil {
		return nil
	}
	if len(a.Handoffs) == 0 {
		return a
	}
	return EffectiveTarget(a.Handoffs[0])
}
