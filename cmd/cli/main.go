package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"veritas/adapters/llm"
	"veritas/adapters/rng"
	"veritas/app"
	"veritas/domain/swarm"
	"veritas/internal/testkit"
	"veritas/ports"
	"veritas/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		bundleIdx  = flag.Int("bundle", 0, "index of the mock bundle to evaluate")
		seed       = flag.Int64("seed", 42, "run seed")
		iterations = flag.Int("iterations", 10, "max iterations")
		committee  = flag.Int("committee", 3, "committee size per iteration")
		live       = flag.Bool("live", false, "call the real LLM gateway instead of the scripted evaluator")
		jsonOut    = flag.Bool("json", false, "print the verdict as JSON instead of a report")
		mdOut      = flag.Bool("markdown", false, "print the full markdown audit report")
	)
	flag.Parse()

	kit := testkit.NewTestKit()
	bundles := kit.Bundles()
	if *bundleIdx < 0 || *bundleIdx >= len(bundles) {
		log.Fatalf("bundle index out of range: %d (have %d mock bundles)", *bundleIdx, len(bundles))
	}
	bundle := bundles[*bundleIdx]

	evaluator, err := buildEvaluator(*live, *seed)
	if err != nil {
		log.Fatalf("Failed to build evaluator: %v", err)
	}

	service := app.NewSwarmService(
		evaluator,
		rng.NewAdapter(),
		nil,
		testkit.DefaultArchetypes(),
		testkit.DefaultModels(),
	)

	cfg := swarm.DefaultRunConfig()
	cfg.Seed = *seed
	cfg.MaxIterations = *iterations
	cfg.CommitteeSize = *committee

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	verdict, runErr := service.Run(ctx, &bundle, cfg)
	if runErr != nil && verdict == nil {
		log.Fatalf("Run failed: %v", runErr)
	}
	if runErr != nil {
		log.Printf("Run aborted: %v (partial verdict follows)", runErr)
	}

	switch {
	case *jsonOut:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(verdict); err != nil {
			log.Fatalf("Failed to encode verdict: %v", err)
		}
	case *mdOut:
		fmt.Print(ui.RenderReportMarkdown(verdict))
	default:
		printSummary(verdict)
	}
}

// buildEvaluator returns either the scripted demo evaluator or the real
// gateway adapter, depending on -live
func buildEvaluator(live bool, seed int64) (ports.EvaluatorPort, error) {
	if !live {
		return testkit.NewScriptedEvaluator(seed, 0.65, 0.20).
			WithBias("contrarian_auditor", -0.25).
			WithBias("base_rate_skeptic", -0.10), nil
	}

	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required with -live")
	}
	client, err := llm.NewChatClient(llm.Config{
		APIKey:  apiKey,
		BaseURL: os.Getenv("LLM_BASE_URL"),
		Timeout: 60 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return llm.NewEvaluatorAdapter(client, llm.DefaultPrompts()), nil
}

func printSummary(v *swarm.VerdictDistribution) {
	fmt.Printf("Question:   %s\n", v.Question)
	fmt.Printf("Run:        %s\n", v.RunID)
	fmt.Printf("Outcome:    %s", v.Termination)
	if v.ConvergedAt != nil {
		fmt.Printf(" at iteration %d", *v.ConvergedAt)
	}
	fmt.Printf(" (%d iterations, %d ballots)\n\n", v.Iterations, len(v.Ballots))

	fmt.Println("Posterior:")
	for i, cat := range swarm.Categories {
		ci := v.CredibleIntervals[cat]
		fmt.Printf("  %-5s %.4f  [%.4f, %.4f]\n", cat, v.PosteriorMean[i], ci.Lower, ci.Upper)
	}
	fmt.Printf("\nEntropy:    %.3f bits\n", v.Entropy)
	if v.FleissKappa.Defined {
		fmt.Printf("Kappa:      %.4f\n", v.FleissKappa.Value)
	} else {
		fmt.Println("Kappa:      undefined")
	}
	fmt.Printf("ESS:        %.1f\n", v.EffectiveSampleSize)
}
