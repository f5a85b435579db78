package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"veritas/domain/core"
	"veritas/domain/swarm"
	"veritas/ports"
)

// TestKit provides demo fixtures: archetype pools, mock evidence bundles,
// and a scripted evaluator. Used by the CLI demo and the loop tests.
type TestKit struct{}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{}
}

// DefaultArchetypes returns the demo evaluator pool. The ids double as
// prompt keys for the LLM adapter; inside the engine they are opaque labels.
func DefaultArchetypes() []swarm.Archetype {
	return []swarm.Archetype{
		{ID: "source_quality_hawk", DisplayName: "Source Quality Hawk"},
		{ID: "base_rate_skeptic", DisplayName: "Base Rate Skeptic"},
		{ID: "narrative_synthesizer", DisplayName: "Narrative Synthesizer"},
		{ID: "contrarian_auditor", DisplayName: "Contrarian Auditor"},
		{ID: "calibrated_forecaster", DisplayName: "Calibrated Forecaster"},
	}
}

// DefaultModels returns the demo backing-model roster
func DefaultModels() []core.ModelID {
	return []core.ModelID{"gpt-4o-mini", "gemini-2.0-flash"}
}

// Bundles returns frozen mock evidence bundles with valid commitments
func (t *TestKit) Bundles() []swarm.EvidenceBundle {
	return []swarm.EvidenceBundle{
		t.bundle(
			"Did the protocol's total value locked exceed $1B before 2025-06-01?",
			[]string{"source_reliability", "recency", "directness"},
			[]swarm.EvidenceItem{
				{ID: 1, Source: "https://defillama.com/protocol/example", Snippet: "TVL chart shows $1.12B on 2025-05-14.", QualityScore: 0.9, Timestamp: ts("2025-05-14")},
				{ID: 2, Source: "https://x.com/anon_whale/status/99", Snippet: "heard TVL numbers are inflated by double counting", QualityScore: 0.2, Timestamp: ts("2025-05-20")},
				{ID: 3, Source: "https://blog.example.org/audit", Snippet: "Independent audit confirms on-chain deposits of $1.05B as of late May.", QualityScore: 0.8, Timestamp: ts("2025-05-28")},
			},
		),
		t.bundle(
			"Was the city's average PM2.5 level below the WHO guideline in 2024?",
			[]string{"source_reliability", "coverage", "methodology"},
			[]swarm.EvidenceItem{
				{ID: 1, Source: "https://agency.gov/air-quality/2024", Snippet: "Annual mean PM2.5 of 6.1 ug/m3, above the WHO guideline of 5.", QualityScore: 0.95, Timestamp: ts("2025-01-15")},
				{ID: 2, Source: "https://citizen-sensors.net", Snippet: "Community sensor network reports 4.7 ug/m3 average across 40 stations.", QualityScore: 0.5, Timestamp: ts("2025-01-03")},
				{ID: 3, Source: "https://news.example.com/smog", Snippet: "Several multi-day smog episodes recorded in November.", QualityScore: 0.6, Timestamp: ts("2024-11-30")},
				{ID: 4, Source: "https://who.int/guidelines", Snippet: "WHO 2021 guideline: annual mean PM2.5 should not exceed 5 ug/m3.", QualityScore: 1.0, Timestamp: ts("2021-09-22")},
			},
		),
	}
}

func (t *TestKit) bundle(question string, rubric []string, items []swarm.EvidenceItem) swarm.EvidenceBundle {
	leaves := make([]string, len(items))
	for i, item := range items {
		leaves[i] = item.Snippet
	}
	return swarm.EvidenceBundle{
		Question:   question,
		Rubric:     rubric,
		Evidence:   items,
		Commitment: core.ComputeCommitment(leaves),
	}
}

func ts(day string) core.Timestamp {
	t, _ := time.Parse("2006-01-02", day)
	return core.NewTimestamp(t)
}

// ScriptedEvaluator implements ports.EvaluatorPort without any network. Votes
// are drawn from a seeded stream around a base YES probability, optionally
// skewed per archetype to mimic persona spread; failures can be injected per
// iteration. Safe for concurrent use.
type ScriptedEvaluator struct {
	mu sync.Mutex

	rng      *rand.Rand
	baseYes  float64
	baseNo   float64
	bias     map[core.ArchetypeID]float64
	failAll  map[int]bool
	failOne  map[string]bool
	latency  time.Duration
	gateways int
}

// NewScriptedEvaluator creates a deterministic evaluator for demos and tests
func NewScriptedEvaluator(seed int64, pYes, pNo float64) *ScriptedEvaluator {
	return &ScriptedEvaluator{
		rng:     rand.New(rand.NewSource(seed)),
		baseYes: pYes,
		baseNo:  pNo,
		bias:    map[core.ArchetypeID]float64{},
		failAll: map[int]bool{},
		failOne: map[string]bool{},
	}
}

// WithBias skews one archetype's YES probability by delta. Demo-only: real
// evaluator behavior lives behind the gateway, not in the engine.
func (e *ScriptedEvaluator) WithBias(id core.ArchetypeID, delta float64) *ScriptedEvaluator {
	e.bias[id] = delta
	return e
}

// FailIteration makes every member call in the given iteration fail
func (e *ScriptedEvaluator) FailIteration(iteration int) *ScriptedEvaluator {
	e.failAll[iteration] = true
	return e
}

// FailMember makes one (iteration, archetype) call fail
func (e *ScriptedEvaluator) FailMember(iteration int, id core.ArchetypeID) *ScriptedEvaluator {
	e.failOne[fmt.Sprintf("%d/%s", iteration, id)] = true
	return e
}

// WithLatency adds a fixed delay per call, for timeout tests
func (e *ScriptedEvaluator) WithLatency(d time.Duration) *ScriptedEvaluator {
	e.latency = d
	return e
}

// Calls returns how many evaluations were attempted
func (e *ScriptedEvaluator) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gateways
}

// Evaluate produces a scripted ballot or an injected failure
func (e *ScriptedEvaluator) Evaluate(ctx context.Context, req ports.EvaluationRequest) (*swarm.Ballot, error) {
	if e.latency > 0 {
		select {
		case <-time.After(e.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.gateways++

	if e.failAll[req.Iteration] {
		return nil, fmt.Errorf("scripted failure at iteration %d", req.Iteration)
	}
	if e.failOne[fmt.Sprintf("%d/%s", req.Iteration, req.Archetype.ID)] {
		return nil, fmt.Errorf("scripted failure for %s at iteration %d", req.Archetype.ID, req.Iteration)
	}

	pYes := e.baseYes + e.bias[req.Archetype.ID]
	if pYes < 0 {
		pYes = 0
	}
	if pYes > 1 {
		pYes = 1
	}

	vote := swarm.VoteNull
	switch u := e.rng.Float64(); {
	case u < pYes:
		vote = swarm.VoteYes
	case u < pYes+e.baseNo:
		vote = swarm.VoteNo
	}

	return &swarm.Ballot{
		Iteration:  req.Iteration,
		Archetype:  req.Archetype.ID,
		Model:      req.Model,
		Vote:       vote,
		Supporting: []int{1},
		Reasoning:  fmt.Sprintf("scripted %s vote", vote),
	}, nil
}
