package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/firebase/genkit/go/genkit"

	loom "github.com/threadworks/loom"
	"github.com/threadworks/loom/internal/adapters"
	"github.com/threadworks/loom/internal/cache"
	"github.com/threadworks/loom/internal/config"
	"github.com/threadworks/loom/internal/executor"
	"github.com/threadworks/loom/internal/policy"
	"github.com/threadworks/loom/internal/telemetry"
	"github.com/threadworks/loom/internal/tools"
)

func main() {
	configPath := flag.String("config", "agent.yaml", "path to the YAML configuration file")
	question := flag.String("q", "", "answer a single question and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	sink, closeSink := buildTelemetry(settings)
	defer closeSink()

	registry := loom.NewRegistry()
	if err := tools.SetupCapabilities(registry, settings.KBPath); err != nil {
		log.Fatalf("Capability setup failed: %v", err)
	}

	planner, err := buildPlanner(ctx, settings, registry)
	if err != nil {
		log.Fatalf("Planner setup failed: %v", err)
	}

	options := []loom.Option{
		loom.WithConfig(runtimeConfig(settings)),
		loom.WithPlanner(planner),
		loom.WithRegistry(registry),
		loom.WithExecutor(executor.New(registry, sink)),
		loom.WithTelemetry(sink),
	}
	if settings.EnablePlanCache {
		options = append(options, loom.WithCache(cache.NewPlanCache(settings.PlanCacheTTL)))
	}

	runtime, err := loom.New(options...)
	if err != nil {
		log.Fatalf("Runtime initialization failed: %v", err)
	}

	if *question != "" {
		fmt.Println(runtime.Answer(ctx, *question))
		return
	}

	repl(ctx, runtime)
}

// repl reads questions from stdin until EOF or interrupt.
func repl(ctx context.Context, runtime *loom.Runtime) {
	fmt.Println("Ask a question (Ctrl-D to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		fmt.Println(runtime.Answer(ctx, line))
	}
	if err := scanner.Err(); err != nil {
		log.Printf("stdin read failed: %v", err)
	}
}

// runtimeConfig maps file settings onto the runtime configuration.
func runtimeConfig(s config.Settings) loom.Config {
	return loom.Config{
		MaxInputLength: s.MaxInputLength,
		MaxIterations:  s.MaxIterations,
		ToolRetry: policy.RetryPolicy{
			MaxAttempts:     s.RetryMaxAttempts,
			BaseDelay:       s.RetryBaseDelay,
			ExponentialBase: 2.0,
			MaxDelay:        s.RetryMaxDelay,
		},
		Execution: policy.ExecutionPolicy{
			MaxSteps:         s.MaxSteps,
			MaxExecutionTime: s.MaxExecutionTime,
		},
		EnablePlanCache: s.EnablePlanCache,
	}
}

// buildTelemetry creates the configured telemetry sink and a console
// subscriber, returning the sink and its shutdown function.
func buildTelemetry(s config.Settings) (telemetry.Telemetry, func()) {
	if !s.EnableTelemetry {
		return telemetry.Noop{}, func() {}
	}

	queue := telemetry.NewQueue(
		telemetry.WithBufferSize(s.TelemetryBufferSize),
		telemetry.WithWorkerCount(s.TelemetryWorkerCount),
	)
	if _, err := queue.Subscribe(func(ev telemetry.Event) {
		log.Printf("TELEMETRY: %s %v", ev.Name, ev.Data)
	}); err != nil {
		log.Printf("Telemetry subscription failed: %v", err)
	}
	return queue, func() {
		if err := queue.Close(); err != nil {
			log.Printf("Telemetry shutdown failed: %v", err)
		}
	}
}

// buildPlanner selects the reasoning backend. The genkit backend wraps the
// keyword planner in a flow so plans show up in the genkit developer tooling;
// swap the flow body for a model call to plan with a real LLM.
func buildPlanner(ctx context.Context, s config.Settings, registry *loom.Registry) (loom.Planner, error) {
	switch s.Planner {
	case "fake":
		return adapters.NewFakePlanner(), nil
	case "genkit":
		g, err := genkit.Init(ctx)
		if err != nil {
			return nil, fmt.Errorf("genkit initialization failed: %w", err)
		}

		keyword := adapters.NewFakePlanner()
		flow := genkit.DefineFlow(g, "plannerFlow",
			func(ctx context.Context, input *adapters.PlannerInput) (string, error) {
				candidate, err := keyword.Plan(ctx, input.Question)
				if err != nil {
					return "", err
				}
				if text, ok := candidate.(string); ok {
					return text, nil
				}
				raw, err := json.Marshal(candidate)
				if err != nil {
					return "", fmt.Errorf("marshal plan: %w", err)
				}
				return string(raw), nil
			},
		)
		return adapters.NewGenkitPlannerAdapter(flow, registry.Schemas), nil
	default:
		return nil, fmt.Errorf("unknown planner %q", s.Planner)
	}
}
