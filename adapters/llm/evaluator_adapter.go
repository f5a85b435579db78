package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"veritas/domain/core"
	"veritas/domain/swarm"
	"veritas/ports"
)

// EvaluatorAdapter implements ports.EvaluatorPort over a chat client. One
// call renders the evidence bundle into a prompt, requests a completion
// under the archetype's system persona, and parses the reply into a Ballot.
type EvaluatorAdapter struct {
	client  ChatClient
	prompts map[core.ArchetypeID]string
}

// NewEvaluatorAdapter creates an evaluator over the given client and
// per-archetype system prompts. Archetypes without a prompt entry fall back
// to a neutral evaluator persona.
func NewEvaluatorAdapter(client ChatClient, prompts map[core.ArchetypeID]string) *EvaluatorAdapter {
	return &EvaluatorAdapter{client: client, prompts: prompts}
}

const neutralPersona = "You are a careful, impartial evaluator. Weigh every evidence item on its merits and respond with a single JSON object and nothing else."

// Evaluate runs one committee member and parses its ballot
func (a *EvaluatorAdapter) Evaluate(ctx context.Context, req ports.EvaluationRequest) (*swarm.Ballot, error) {
	system, ok := a.prompts[req.Archetype.ID]
	if !ok {
		system = neutralPersona
	}

	content, err := a.client.ChatCompletion(ctx, req.Model.String(), system, buildUserPrompt(req.Bundle), req.Temperature)
	if err != nil {
		return nil, fmt.Errorf("completion for archetype %s: %w", req.Archetype.ID, err)
	}

	ballot, err := ParseBallot(content)
	if err != nil {
		return nil, fmt.Errorf("parse ballot from archetype %s: %w", req.Archetype.ID, err)
	}
	ballot.Iteration = req.Iteration
	ballot.Archetype = req.Archetype.ID
	ballot.Model = req.Model
	return ballot, nil
}

// buildUserPrompt renders the frozen bundle for the evaluator. Evidence is
// referenced by numeric id so ballots stay independent of snippet text.
func buildUserPrompt(bundle *swarm.EvidenceBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TODAY'S DATE: %s\n\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&sb, "QUESTION: %s\n\n", bundle.Question)
	fmt.Fprintf(&sb, "EVALUATION RUBRIC: %s\n\n", strings.Join(bundle.Rubric, ", "))
	sb.WriteString("EVIDENCE BUNDLE:\n")
	for _, e := range bundle.Evidence {
		fmt.Fprintf(&sb, "[Evidence %d] %s — source: %s (%s)\n", e.ID, e.Snippet, e.Source, e.Timestamp)
	}
	sb.WriteString("\nEvaluate the question using ONLY the evidence above. ")
	sb.WriteString("Respond with a single JSON object and nothing else.")
	return sb.String()
}

var (
	fencedJSON   = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	evidenceRefs = regexp.MustCompile(`\bEvidence\s+(\d+)\b`)
)

// ballotPayload is the wire schema evaluators are asked to produce
type ballotPayload struct {
	Vote         string             `json:"vote"`
	Supporting   []int              `json:"supporting_evidence_ids"`
	Refuting     []int              `json:"refuting_evidence_ids"`
	RubricScores map[string]float64 `json:"rubric_scores"`
	Reasoning    string             `json:"reasoning"`
}

// ParseBallot extracts the first JSON object from evaluator output,
// tolerating markdown fences and unquoted "[Evidence N]" references, and
// maps it onto a Ballot. Identity fields (iteration, archetype, model) are
// left for the caller.
func ParseBallot(text string) (*swarm.Ballot, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var payload ballotPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		// Retry after rewriting evidence references like
		// [Evidence 2, Evidence 3] into plain ids.
		sanitized := evidenceRefs.ReplaceAllString(raw, "$1")
		if err2 := json.Unmarshal([]byte(sanitized), &payload); err2 != nil {
			return nil, fmt.Errorf("invalid ballot JSON: %w", err)
		}
	}

	vote := swarm.Vote(strings.ToUpper(strings.TrimSpace(payload.Vote)))
	if !vote.IsValid() {
		return nil, fmt.Errorf("unrecognized vote %q", payload.Vote)
	}

	return &swarm.Ballot{
		Vote:         vote,
		Supporting:   payload.Supporting,
		Refuting:     payload.Refuting,
		RubricScores: payload.RubricScores,
		Reasoning:    payload.Reasoning,
	}, nil
}

func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		return text, nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}

	// Last resort: first { to last }
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in evaluator output")
	}
	return text[start : end+1], nil
}
