package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"veritas/domain/swarm"
	"veritas/internal/testkit"
	"veritas/ports"
)

// TestParseBallotPlainJSON tests the direct JSON case
func TestParseBallotPlainJSON(t *testing.T) {
	text := `{
		"vote": "YES",
		"supporting_evidence_ids": [1, 3],
		"refuting_evidence_ids": [2],
		"rubric_scores": {"source_reliability": 0.8, "recency": 0.6},
		"reasoning": "Two credible sources corroborate the claim."
	}`

	ballot, err := ParseBallot(text)
	if err != nil {
		t.Fatalf("ParseBallot failed: %v", err)
	}
	if ballot.Vote != swarm.VoteYes {
		t.Errorf("Expected YES vote, got %s", ballot.Vote)
	}
	if len(ballot.Supporting) != 2 || ballot.Supporting[0] != 1 || ballot.Supporting[1] != 3 {
		t.Errorf("Unexpected supporting ids: %v", ballot.Supporting)
	}
	if len(ballot.Refuting) != 1 || ballot.Refuting[0] != 2 {
		t.Errorf("Unexpected refuting ids: %v", ballot.Refuting)
	}
	if ballot.RubricScores["recency"] != 0.6 {
		t.Errorf("Unexpected rubric scores: %v", ballot.RubricScores)
	}
	if ballot.Reasoning == "" {
		t.Error("Expected reasoning to survive parsing")
	}
}

// TestParseBallotMarkdownFence tests fenced completions
func TestParseBallotMarkdownFence(t *testing.T) {
	text := "Here is my evaluation:\n```json\n" +
		`{"vote": "no", "supporting_evidence_ids": [], "refuting_evidence_ids": [1], "reasoning": "Refuted."}` +
		"\n```\nLet me know if you need more."

	ballot, err := ParseBallot(text)
	if err != nil {
		t.Fatalf("ParseBallot failed: %v", err)
	}
	if ballot.Vote != swarm.VoteNo {
		t.Errorf("Expected NO vote from lowercase input, got %s", ballot.Vote)
	}
}

// TestParseBallotSurroundingProse tests the first-brace-to-last-brace fallback
func TestParseBallotSurroundingProse(t *testing.T) {
	text := `After weighing everything I conclude: {"vote": "NULL", "reasoning": "Evidence conflicts."} — end of analysis.`

	ballot, err := ParseBallot(text)
	if err != nil {
		t.Fatalf("ParseBallot failed: %v", err)
	}
	if ballot.Vote != swarm.VoteNull {
		t.Errorf("Expected NULL vote, got %s", ballot.Vote)
	}
}

// TestParseBallotEvidenceRefRewrite tests the unquoted reference retry
func TestParseBallotEvidenceRefRewrite(t *testing.T) {
	text := `{"vote": "YES", "supporting_evidence_ids": [Evidence 1, Evidence 3], "refuting_evidence_ids": [], "reasoning": "ok"}`

	ballot, err := ParseBallot(text)
	if err != nil {
		t.Fatalf("ParseBallot failed: %v", err)
	}
	if len(ballot.Supporting) != 2 || ballot.Supporting[0] != 1 || ballot.Supporting[1] != 3 {
		t.Errorf("Expected rewritten ids [1 3], got %v", ballot.Supporting)
	}
}

// TestParseBallotRejectsGarbage tests failure modes
func TestParseBallotRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"no json here at all",
		`{"vote": "MAYBE", "reasoning": "unsure"}`,
		`{"vote": 42}`,
	}
	for _, text := range cases {
		if _, err := ParseBallot(text); err == nil {
			t.Errorf("Expected parse failure for %q", text)
		}
	}
}

// stubChatClient returns a canned completion
type stubChatClient struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
}

func (s *stubChatClient) ChatCompletion(ctx context.Context, model, system, user string, temperature float64) (string, error) {
	s.lastSystem = system
	s.lastUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// TestEvaluatorAdapterStampsIdentity tests that the adapter fills in the
// request's identity fields
func TestEvaluatorAdapterStampsIdentity(t *testing.T) {
	client := &stubChatClient{reply: `{"vote": "YES", "reasoning": "fine"}`}
	adapter := NewEvaluatorAdapter(client, DefaultPrompts())

	bundles := testkit.NewTestKit().Bundles()
	req := ports.EvaluationRequest{
		Iteration:   3,
		Archetype:   swarm.Archetype{ID: "base_rate_skeptic"},
		Model:       "gpt-4o-mini",
		Bundle:      &bundles[0],
		Temperature: 0.7,
	}

	ballot, err := adapter.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if ballot.Iteration != 3 || ballot.Archetype != "base_rate_skeptic" || ballot.Model != "gpt-4o-mini" {
		t.Errorf("Identity fields not stamped: %+v", ballot)
	}
	if client.lastSystem == neutralPersona {
		t.Error("Expected the archetype persona, got the neutral fallback")
	}
}

// TestEvaluatorAdapterNeutralFallback tests unknown archetypes
func TestEvaluatorAdapterNeutralFallback(t *testing.T) {
	client := &stubChatClient{reply: `{"vote": "NO", "reasoning": "fine"}`}
	adapter := NewEvaluatorAdapter(client, DefaultPrompts())

	bundles := testkit.NewTestKit().Bundles()
	req := ports.EvaluationRequest{
		Iteration: 1,
		Archetype: swarm.Archetype{ID: "unknown_archetype"},
		Model:     "gpt-4o-mini",
		Bundle:    &bundles[0],
	}

	if _, err := adapter.Evaluate(context.Background(), req); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if client.lastSystem != neutralPersona {
		t.Error("Expected the neutral persona for an unmapped archetype")
	}
}

// TestEvaluatorAdapterPromptContents tests that the user prompt carries the
// frozen bundle
func TestEvaluatorAdapterPromptContents(t *testing.T) {
	client := &stubChatClient{reply: `{"vote": "YES", "reasoning": "fine"}`}
	adapter := NewEvaluatorAdapter(client, DefaultPrompts())

	bundles := testkit.NewTestKit().Bundles()
	req := ports.EvaluationRequest{
		Iteration: 1,
		Archetype: swarm.Archetype{ID: "source_quality_hawk"},
		Model:     "gpt-4o-mini",
		Bundle:    &bundles[0],
	}
	if _, err := adapter.Evaluate(context.Background(), req); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	for _, want := range []string{bundles[0].Question, "[Evidence 1]", "EVALUATION RUBRIC"} {
		if !strings.Contains(client.lastUser, want) {
			t.Errorf("User prompt missing %q", want)
		}
	}
}

// TestEvaluatorAdapterPropagatesClientError tests gateway failure wrapping
func TestEvaluatorAdapterPropagatesClientError(t *testing.T) {
	client := &stubChatClient{err: fmt.Errorf("rate limited")}
	adapter := NewEvaluatorAdapter(client, DefaultPrompts())

	bundles := testkit.NewTestKit().Bundles()
	req := ports.EvaluationRequest{
		Iteration: 1,
		Archetype: swarm.Archetype{ID: "source_quality_hawk"},
		Model:     "gpt-4o-mini",
		Bundle:    &bundles[0],
	}
	if _, err := adapter.Evaluate(context.Background(), req); err == nil {
		t.Fatal("Expected gateway error to propagate")
	}
}
