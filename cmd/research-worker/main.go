// Command research-worker registers the interactive research workflow and its
// activity callables with Temporal, then polls the task queue until the
// process is interrupted. It shares the connection configuration with the API
// process but has no direct call relationship with it: the two meet only
// through the task queue.
package main

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"goa.design/clue/log"

	"github.com/temporal-sa/interactive-research/agents"
	"github.com/temporal-sa/interactive-research/config"
	enginetemporal "github.com/temporal-sa/interactive-research/engine/temporal"
	"github.com/temporal-sa/interactive-research/research"
	"github.com/temporal-sa/interactive-research/research/activities"
)

func main() {
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(ctx, err, "invalid configuration")
	}
	log.Print(ctx,
		log.KV{K: "temporal", V: cfg.HostPort()},
		log.KV{K: "namespace", V: cfg.Namespace()},
		log.KV{K: "task-queue", V: cfg.TaskQueue},
	)

	tc, err := enginetemporal.Dial(ctx, enginetemporal.Options{Config: cfg})
	if err != nil {
		log.Fatalf(ctx, err, "connect to temporal at %s", cfg.HostPort())
	}
	defer tc.Close()

	invoker, err := agents.NewInvoker(cfg.OpenAIAPIKey)
	if err != nil {
		log.Fatalf(ctx, err, "create agent invoker")
	}
	modelActs := agents.NewActivities(invoker)
	workerActs := &activities.Activities{ArtifactsDir: cfg.ImagesDir}

	w := worker.New(tc, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflowWithOptions(research.InteractiveResearchWorkflow, workflow.RegisterOptions{
		Name: research.WorkflowName,
	})
	w.RegisterActivityWithOptions(workerActs.ProcessClarification, activity.RegisterOptions{
		Name: research.ActivityProcessClarification,
	})
	w.RegisterActivityWithOptions(workerActs.GeneratePDF, activity.RegisterOptions{
		Name: research.ActivityGeneratePDF,
	})
	w.RegisterActivityWithOptions(workerActs.GenerateImage, activity.RegisterOptions{
		Name: research.ActivityGenerateImage,
	})
	w.RegisterActivityWithOptions(modelActs.GenerateQuestions, activity.RegisterOptions{
		Name: research.ActivityGenerateQuestions,
	})
	w.RegisterActivityWithOptions(modelActs.RunResearch, activity.RegisterOptions{
		Name: research.ActivityRunResearch,
	})

	log.Printf(ctx, "starting worker on task queue %q", cfg.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf(ctx, err, "worker exited")
	}
	log.Printf(ctx, "worker stopped")
}
