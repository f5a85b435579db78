package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"veritas/domain/core"
	"veritas/domain/swarm"
	"veritas/ports"
)

// VerdictRepositoryImpl implements the verdict ledger for PostgreSQL
type VerdictRepositoryImpl struct {
	db *sqlx.DB
}

// NewVerdictRepository creates a new PostgreSQL verdict repository
func NewVerdictRepository(db *sqlx.DB) ports.VerdictLedgerPort {
	return &VerdictRepositoryImpl{db: db}
}

// EnsureSchema creates the ledger tables when missing
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verdicts (
			run_id                TEXT PRIMARY KEY,
			question              TEXT NOT NULL,
			commitment            TEXT NOT NULL,
			p_yes                 DOUBLE PRECISION NOT NULL,
			p_no                  DOUBLE PRECISION NOT NULL,
			p_null                DOUBLE PRECISION NOT NULL,
			credible_intervals    JSONB NOT NULL,
			entropy               DOUBLE PRECISION NOT NULL,
			fleiss_kappa          DOUBLE PRECISION,
			effective_sample_size DOUBLE PRECISION NOT NULL,
			iterations            INTEGER NOT NULL,
			committee_size        INTEGER NOT NULL,
			converged_at          INTEGER,
			termination           TEXT NOT NULL,
			incomplete            BOOLEAN NOT NULL,
			snapshots             JSONB NOT NULL,
			created_at            TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ballots (
			id            TEXT PRIMARY KEY,
			run_id        TEXT NOT NULL REFERENCES verdicts(run_id),
			iteration     INTEGER NOT NULL,
			arrival       INTEGER NOT NULL,
			archetype     TEXT NOT NULL,
			model         TEXT NOT NULL,
			vote          TEXT NOT NULL,
			supporting    JSONB NOT NULL,
			refuting      JSONB NOT NULL,
			rubric_scores JSONB NOT NULL,
			reasoning     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_ballots_run ON ballots(run_id, iteration, arrival);
	`)
	return err
}

type verdictRow struct {
	RunID               string          `db:"run_id"`
	Question            string          `db:"question"`
	Commitment          string          `db:"commitment"`
	PYes                float64         `db:"p_yes"`
	PNo                 float64         `db:"p_no"`
	PNull               float64         `db:"p_null"`
	CredibleIntervals   json.RawMessage `db:"credible_intervals"`
	Entropy             float64         `db:"entropy"`
	FleissKappa         sql.NullFloat64 `db:"fleiss_kappa"`
	EffectiveSampleSize float64         `db:"effective_sample_size"`
	Iterations          int             `db:"iterations"`
	CommitteeSize       int             `db:"committee_size"`
	ConvergedAt         sql.NullInt64   `db:"converged_at"`
	Termination         string          `db:"termination"`
	Incomplete          bool            `db:"incomplete"`
	Snapshots           json.RawMessage `db:"snapshots"`
	CreatedAt           sql.NullTime    `db:"created_at"`
}

// StoreVerdict persists a finished run and its ballot history. Append-only:
// one insert per run, no updates.
func (r *VerdictRepositoryImpl) StoreVerdict(ctx context.Context, v *swarm.VerdictDistribution) error {
	intervals, err := json.Marshal(v.CredibleIntervals)
	if err != nil {
		return err
	}
	snapshots, err := json.Marshal(v.Snapshots)
	if err != nil {
		return err
	}

	var kappa interface{}
	if v.FleissKappa.Defined {
		kappa = v.FleissKappa.Value
	}
	var convergedAt interface{}
	if v.ConvergedAt != nil {
		convergedAt = *v.ConvergedAt
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO verdicts (run_id, question, commitment, p_yes, p_no, p_null,
			credible_intervals, entropy, fleiss_kappa, effective_sample_size,
			iterations, committee_size, converged_at, termination, incomplete,
			snapshots, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, v.RunID.String(), v.Question, v.Commitment.String(), v.PYes(), v.PNo(), v.PNull(),
		intervals, v.Entropy, kappa, v.EffectiveSampleSize,
		v.Iterations, v.CommitteeSize, convergedAt, string(v.Termination), v.Incomplete,
		snapshots, v.CreatedAt.Time())
	if err != nil {
		return err
	}

	for arrival, b := range v.Ballots {
		supporting, _ := json.Marshal(b.Supporting)
		refuting, _ := json.Marshal(b.Refuting)
		scores, _ := json.Marshal(b.RubricScores)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ballots (id, run_id, iteration, arrival, archetype, model,
				vote, supporting, refuting, rubric_scores, reasoning)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, b.ID.String(), v.RunID.String(), b.Iteration, arrival, b.Archetype.String(),
			b.Model.String(), string(b.Vote), supporting, refuting, scores, b.Reasoning)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetVerdict loads one run by id, including its ballots
func (r *VerdictRepositoryImpl) GetVerdict(ctx context.Context, runID core.RunID) (*swarm.VerdictDistribution, error) {
	var row verdictRow
	err := r.db.GetContext(ctx, &row, `
		SELECT run_id, question, commitment, p_yes, p_no, p_null, credible_intervals,
			entropy, fleiss_kappa, effective_sample_size, iterations, committee_size,
			converged_at, termination, incomplete, snapshots, created_at
		FROM verdicts WHERE run_id = $1
	`, runID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrVerdictNotFound
	}
	if err != nil {
		return nil, err
	}

	verdict, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	ballots, err := r.GetBallots(ctx, runID)
	if err != nil {
		return nil, err
	}
	verdict.Ballots = ballots
	return verdict, nil
}

// ListVerdicts returns stored runs ordered newest first, without ballots
func (r *VerdictRepositoryImpl) ListVerdicts(ctx context.Context, limit, offset int) ([]swarm.VerdictDistribution, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []verdictRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT run_id, question, commitment, p_yes, p_no, p_null, credible_intervals,
			entropy, fleiss_kappa, effective_sample_size, iterations, committee_size,
			converged_at, termination, incomplete, snapshots, created_at
		FROM verdicts ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]swarm.VerdictDistribution, 0, len(rows))
	for _, row := range rows {
		v, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// GetBallots returns a run's ballot history in (iteration, arrival) order
func (r *VerdictRepositoryImpl) GetBallots(ctx context.Context, runID core.RunID) ([]swarm.Ballot, error) {
	type ballotRow struct {
		ID           string          `db:"id"`
		Iteration    int             `db:"iteration"`
		Archetype    string          `db:"archetype"`
		Model        string          `db:"model"`
		Vote         string          `db:"vote"`
		Supporting   json.RawMessage `db:"supporting"`
		Refuting     json.RawMessage `db:"refuting"`
		RubricScores json.RawMessage `db:"rubric_scores"`
		Reasoning    string          `db:"reasoning"`
	}
	var rows []ballotRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, iteration, archetype, model, vote, supporting, refuting, rubric_scores, reasoning
		FROM ballots WHERE run_id = $1 ORDER BY iteration, arrival
	`, runID.String())
	if err != nil {
		return nil, err
	}

	ballots := make([]swarm.Ballot, 0, len(rows))
	for _, row := range rows {
		b := swarm.Ballot{
			ID:        core.BallotID(row.ID),
			Iteration: row.Iteration,
			Archetype: core.ArchetypeID(row.Archetype),
			Model:     core.ModelID(row.Model),
			Vote:      swarm.Vote(row.Vote),
			Reasoning: row.Reasoning,
		}
		if err := json.Unmarshal(row.Supporting, &b.Supporting); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(row.Refuting, &b.Refuting); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(row.RubricScores, &b.RubricScores); err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	return ballots, nil
}

func (row *verdictRow) toDomain() (*swarm.VerdictDistribution, error) {
	v := &swarm.VerdictDistribution{
		RunID:               core.RunID(row.RunID),
		Question:            row.Question,
		Commitment:          core.CommitmentHash(row.Commitment),
		PosteriorMean:       [swarm.NumCategories]float64{row.PYes, row.PNo, row.PNull},
		Entropy:             row.Entropy,
		EffectiveSampleSize: row.EffectiveSampleSize,
		Iterations:          row.Iterations,
		CommitteeSize:       row.CommitteeSize,
		Termination:         swarm.TerminationReason(row.Termination),
		Incomplete:          row.Incomplete,
	}
	if row.FleissKappa.Valid {
		v.FleissKappa = swarm.Kappa{Value: row.FleissKappa.Float64, Defined: true}
	}
	if row.ConvergedAt.Valid {
		at := int(row.ConvergedAt.Int64)
		v.ConvergedAt = &at
	}
	if row.CreatedAt.Valid {
		v.CreatedAt = core.NewTimestamp(row.CreatedAt.Time)
	}
	if err := json.Unmarshal(row.CredibleIntervals, &v.CredibleIntervals); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(row.Snapshots, &v.Snapshots); err != nil {
		return nil, err
	}
	return v, nil
}
