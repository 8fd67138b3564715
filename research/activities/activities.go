// Package activities implements the worker-registered activity callables that
// do not require a model: clarification merging and artifact generation.
package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.temporal.io/sdk/activity"

	"github.com/temporal-sa/interactive-research/research"
)

// Activities bundles the non-model activity implementations so the worker can
// register them as methods on a single receiver.
type Activities struct {
	// ArtifactsDir is where generated report artifacts are written. The
	// directory is served by the HTTP process under /temp_images.
	ArtifactsDir string
}

// ProcessClarification merges the original query with the collected
// clarification answers into the instruction block handed to the research
// agent. Unanswered questions are skipped. The merge is deterministic: answers
// are ordered by question index, not map order.
func (a *Activities) ProcessClarification(_ context.Context, in *research.ProcessClarificationInput) (*research.ProcessClarificationOutput, error) {
	if in == nil {
		return nil, fmt.Errorf("process clarification: input is required")
	}

	var b strings.Builder
	b.WriteString("Research query: ")
	b.WriteString(in.Query)
	b.WriteString("\n")

	indices := make([]int, 0, len(in.Responses))
	for key := range in.Responses {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("process clarification: bad response key %q: %w", key, err)
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	if len(indices) > 0 {
		b.WriteString("\nClarifications provided by the user:\n")
		for _, idx := range indices {
			question := ""
			if idx >= 0 && idx < len(in.Questions) {
				question = in.Questions[idx]
			}
			b.WriteString(fmt.Sprintf("- Q: %s\n  A: %s\n", question, in.Responses[research.ResponseKey(idx)]))
		}
	}

	return &research.ProcessClarificationOutput{Instructions: b.String()}, nil
}

// GeneratePDF persists the markdown report as a printable artifact. Rendering
// to real PDF is delegated to downstream tooling; this activity only writes
// the source document next to the other generated artifacts.
func (a *Activities) GeneratePDF(ctx context.Context, in *research.ArtifactInput) (*research.ArtifactOutput, error) {
	return a.writeArtifact(ctx, in, "report.md", in.MarkdownReport)
}

// GenerateImage writes the cover image placeholder for the report. Actual
// image synthesis is an external concern; the placeholder keeps the artifact
// directory layout stable for the frontend.
func (a *Activities) GenerateImage(ctx context.Context, in *research.ArtifactInput) (*research.ArtifactOutput, error) {
	return a.writeArtifact(ctx, in, "summary.txt", in.ShortSummary)
}

func (a *Activities) writeArtifact(ctx context.Context, in *research.ArtifactInput, name, content string) (*research.ArtifactOutput, error) {
	if in == nil || in.WorkflowID == "" {
		return nil, fmt.Errorf("write artifact: workflow id is required")
	}
	dir := filepath.Join(a.ArtifactsDir, in.WorkflowID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}
	activity.GetLogger(ctx).Info("artifact written", "path", path)
	return &research.ArtifactOutput{Path: path}, nil
}
