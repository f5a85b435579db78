package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"veritas/domain/core"
	"veritas/domain/swarm"
	"veritas/internal"
	"veritas/internal/errors"
	"veritas/ports"
)

// RunState tracks the orchestration loop lifecycle
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateConverged RunState = "converged"
	StateExhausted RunState = "exhausted"
	StateFailed    RunState = "failed"
)

// SwarmService drives the Monte Carlo committee loop end to end. It owns all
// mutable run state; committee calls fan out to workers but their results
// join back here before any counter moves.
type SwarmService struct {
	evaluator ports.EvaluatorPort
	rng       ports.RNGPort
	ledger    ports.VerdictWriterPort // nil disables persistence
	pool      []swarm.Archetype
	models    []core.ModelID
	logger    *internal.Logger
}

// NewSwarmService creates a swarm service over a fixed archetype pool and
// backing-model roster
func NewSwarmService(evaluator ports.EvaluatorPort, rng ports.RNGPort, ledger ports.VerdictWriterPort, pool []swarm.Archetype, models []core.ModelID) *SwarmService {
	return &SwarmService{
		evaluator: evaluator,
		rng:       rng,
		ledger:    ledger,
		pool:      pool,
		models:    models,
		logger:    internal.NewDefaultLogger(),
	}
}

// Pool returns the archetype pool the service samples from
func (s *SwarmService) Pool() []swarm.Archetype {
	return s.pool
}

// Run executes one full run against a frozen evidence bundle and returns its
// VerdictDistribution. Configuration problems are rejected before the first
// iteration. A run that aborts (starvation or cancellation) still returns the
// partial verdict alongside the error.
func (s *SwarmService) Run(ctx context.Context, bundle *swarm.EvidenceBundle, cfg swarm.RunConfig, observers ...ports.RunObserver) (*swarm.VerdictDistribution, error) {
	if err := cfg.Validate(len(s.pool)); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	if len(s.models) == 0 {
		return nil, errors.ConfigInvalid("no backing models configured")
	}
	if !core.Hash(bundle.Commitment).IsEmpty() {
		leaves := make([]string, len(bundle.Evidence))
		for i, item := range bundle.Evidence {
			leaves[i] = item.Snippet
		}
		if computed := core.ComputeCommitment(leaves); computed != bundle.Commitment {
			return nil, errors.WithCode(errors.CodeInvalidInput, core.ErrEvidenceCommit)
		}
	}

	sampleRNG, err := s.rng.SeededStream(ctx, "committee", cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open committee sampling stream")
	}

	runID := core.RunID(core.NewID())
	store := swarm.NewBallotStore()
	estimator := swarm.NewPosteriorEstimator()
	detector := swarm.NewConvergenceDetector(cfg.ConvergenceEpsilon, cfg.ConvergencePatience)
	snapshots := make([]swarm.IterationSnapshot, 0, cfg.MaxIterations)

	state := StateRunning
	var convergedAt *int
	var abortErr error
	starved := 0
	iterations := 0
	ballotSeq := 0

	for i := 1; i <= cfg.MaxIterations; i++ {
		// Cancellation is checked between iterations and propagated to
		// in-flight member calls through the iteration context.
		if ctx.Err() != nil {
			state = StateFailed
			abortErr = errors.RunAborted("run cancelled", core.ErrRunCancelled)
			break
		}

		committee, err := swarm.SampleCommittee(sampleRNG, s.pool, cfg.CommitteeSize)
		if err != nil {
			// Validate already bounds M, so this is unreachable in practice
			state = StateFailed
			abortErr = errors.Wrap(err, "committee sampling failed")
			break
		}

		ballots := s.runIteration(ctx, i, committee, bundle, cfg, &ballotSeq)
		iterations = i

		for _, b := range ballots {
			store.Append(b)
			estimator.Update(b)
		}

		if len(ballots) == 0 {
			starved++
			s.logger.Warn("iteration %d/%d starved: no usable ballots (%d consecutive)", i, cfg.MaxIterations, starved)
		} else {
			starved = 0
		}

		snap := swarm.IterationSnapshot{
			Iteration:     i,
			Counts:        estimator.Counts(),
			PosteriorMean: estimator.Mean(),
			Entropy:       estimator.Entropy(),
			Timestamp:     core.Now(),
		}
		snapshots = append(snapshots, snap)
		for _, obs := range observers {
			obs.OnSnapshot(snap)
		}
		s.logger.Info("iteration %d/%d P(YES)=%.3f P(NO)=%.3f P(NULL)=%.3f (%d ballots, %d dropped)",
			i, cfg.MaxIterations, snap.PosteriorMean[0], snap.PosteriorMean[1], snap.PosteriorMean[2], store.Len(), estimator.Dropped())

		if starved > cfg.MaxStarvedIterations {
			state = StateFailed
			abortErr = errors.RunAborted("starvation threshold exceeded", core.ErrStarvedRun)
			break
		}

		if detector.Observe(snap.PosteriorMean) {
			at := i
			convergedAt = &at
			state = StateConverged
			s.logger.Info("converged at iteration %d", i)
			break
		}
	}

	if state == StateRunning {
		state = StateExhausted
	}

	verdict, err := s.assembleVerdict(runID, bundle, cfg, store, estimator, snapshots, state, convergedAt, iterations)
	if err != nil {
		return nil, err
	}

	for _, obs := range observers {
		obs.OnVerdict(verdict)
	}

	if s.ledger != nil {
		if err := s.ledger.StoreVerdict(ctx, verdict); err != nil {
			s.logger.Error("failed to persist verdict for run %s: %v", runID, err)
		}
	}

	return verdict, abortErr
}

// runIteration fans the committee out with bounded parallelism and joins all
// results before returning. Each member gets its own timeout; the iteration
// timeout bounds total wait and cancels stragglers. Results land in
// per-member slots, so the slice is ordered by committee position regardless
// of arrival order.
func (s *SwarmService) runIteration(ctx context.Context, iteration int, committee []swarm.Archetype, bundle *swarm.EvidenceBundle, cfg swarm.RunConfig, ballotSeq *int) []swarm.Ballot {
	iterCtx, cancel := context.WithTimeout(ctx, cfg.IterationTimeout)
	defer cancel()

	results := make([]*swarm.Ballot, len(committee))
	g, gctx := errgroup.WithContext(iterCtx)
	g.SetLimit(len(committee))

	for j, member := range committee {
		model := s.models[(*ballotSeq+j)%len(s.models)]
		req := ports.EvaluationRequest{
			Iteration:   iteration,
			Archetype:   member,
			Model:       model,
			Bundle:      bundle,
			Temperature: cfg.Temperature,
		}
		slot := j
		g.Go(func() error {
			memberCtx, memberCancel := context.WithTimeout(gctx, cfg.PerMemberTimeout)
			defer memberCancel()

			ballot, err := s.evaluator.Evaluate(memberCtx, req)
			if err != nil {
				// Single-member failures are absorbed; the committee
				// proceeds without this ballot.
				s.logger.Warn("evaluator failed for archetype %s (model %s) at iteration %d: %v",
					req.Archetype.ID, req.Model, iteration, err)
				return nil
			}
			results[slot] = ballot
			return nil
		})
	}
	_ = g.Wait()
	*ballotSeq += len(committee)

	ballots := make([]swarm.Ballot, 0, len(committee))
	for j, r := range results {
		if r == nil {
			continue
		}
		b := *r
		// Normalize identity fields so the store's invariants do not depend
		// on gateway behavior.
		b.ID = core.BallotID(core.NewID())
		b.Iteration = iteration
		b.Archetype = committee[j].ID
		ballots = append(ballots, b)
	}
	return ballots
}

func (s *SwarmService) assembleVerdict(runID core.RunID, bundle *swarm.EvidenceBundle, cfg swarm.RunConfig, store *swarm.BallotStore, estimator *swarm.PosteriorEstimator, snapshots []swarm.IterationSnapshot, state RunState, convergedAt *int, iterations int) (*swarm.VerdictDistribution, error) {
	intervals, err := estimator.CredibleIntervals(uint64(cfg.Seed)+1, cfg.CredibleConfidence, cfg.CredibleSamples)
	if err != nil {
		return nil, errors.Wrap(err, "credible interval simulation failed")
	}

	termination := swarm.TerminationExhausted
	switch state {
	case StateConverged:
		termination = swarm.TerminationConverged
	case StateFailed:
		termination = swarm.TerminationFailed
	}

	return &swarm.VerdictDistribution{
		RunID:               runID,
		Question:            bundle.Question,
		Commitment:          bundle.Commitment,
		PosteriorMean:       estimator.Mean(),
		CredibleIntervals:   intervals,
		Entropy:             estimator.Entropy(),
		FleissKappa:         swarm.FleissKappa(store.ByIteration()),
		EffectiveSampleSize: swarm.EffectiveSampleSize(store.ByModel()),
		Iterations:          iterations,
		CommitteeSize:       cfg.CommitteeSize,
		ConvergedAt:         convergedAt,
		Termination:         termination,
		Incomplete:          state == StateFailed,
		Ballots:             store.All(),
		Snapshots:           snapshots,
		CreatedAt:           core.Now(),
	}, nil
}
