package scorepgrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// PgScoreRepo reads the CMS mirror database. Official submissions and results
// on each task's active dataset are selected here; nothing above this layer
// filters them again.
type PgScoreRepo struct {
	pool *pgxpool.Pool
}

var _ scoresrvc.Repo = (*PgScoreRepo)(nil)

func NewPgScoreRepo(pool *pgxpool.Pool) *PgScoreRepo {
	return &PgScoreRepo{pool: pool}
}

func (r *PgScoreRepo) GetContestInput(ctx context.Context, contestID int64) (scoredomain.ContestInput, error) {
	var in scoredomain.ContestInput
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, score_precision, show_global_rank, show_points_to_next_rank
		 FROM contests WHERE id = $1`,
		contestID,
	).Scan(&in.Contest.ID, &in.Contest.Name, &in.Contest.ScorePrecision,
		&in.Contest.ShowGlobalRank, &in.Contest.ShowPointsToNextRank)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return scoredomain.ContestInput{}, scoresrvc.NewErrContestNotFound()
		}
		return scoredomain.ContestInput{}, fmt.Errorf("failed to get contest: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Tasks, err = r.listTasks(gctx, contestID)
		return err
	})
	g.Go(func() (err error) {
		in.Participations, err = r.listParticipations(gctx, contestID)
		return err
	})
	g.Go(func() (err error) {
		in.Rows, err = r.listResultRows(gctx, `p.contest_id = $1`, contestID)
		return err
	})
	g.Go(func() error {
		counts, err := r.countSubms(gctx, `p.contest_id = $1`, contestID)
		if err != nil {
			return err
		}
		in.Counts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return scoredomain.ContestInput{}, err
	}
	return in, nil
}

func (r *PgScoreRepo) GetParticipation(ctx context.Context, partID int64) (scoredomain.Participation, error) {
	var p scoredomain.Participation
	err := r.pool.QueryRow(ctx,
		`SELECT id, contest_id, hidden FROM participations WHERE id = $1`,
		partID,
	).Scan(&p.ID, &p.ContestID, &p.Hidden)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return scoredomain.Participation{}, scoresrvc.NewErrParticipationNotFound()
		}
		return scoredomain.Participation{}, fmt.Errorf("failed to get participation: %w", err)
	}
	return p, nil
}

func (r *PgScoreRepo) GetParticipationInput(ctx context.Context, partID int64) (scoredomain.ParticipationInput, error) {
	part, err := r.GetParticipation(ctx, partID)
	if err != nil {
		return scoredomain.ParticipationInput{}, err
	}

	rows, err := r.listResultRows(ctx, `s.participation_id = $1`, partID)
	if err != nil {
		return scoredomain.ParticipationInput{}, err
	}
	counts, err := r.countSubms(ctx, `s.participation_id = $1`, partID)
	if err != nil {
		return scoredomain.ParticipationInput{}, err
	}

	in := scoredomain.ParticipationInput{
		Participation: part,
		Rows:          rows,
		Counts:        make(map[int64]int, len(counts)),
	}
	for k, n := range counts {
		in.Counts[k.TaskID] = n
	}
	return in, nil
}

func (r *PgScoreRepo) ListTaskSubms(ctx context.Context, partID int64, taskID int64) ([]scoredomain.SubmRecord, error) {
	if err := r.checkTask(ctx, partID, taskID); err != nil {
		return nil, err
	}
	return r.listSubms(ctx, `TRUE`, partID, taskID)
}

func (r *PgScoreRepo) GetTaskSubm(ctx context.Context, partID int64, taskID int64, submID int64) (scoredomain.SubmRecord, error) {
	if err := r.checkTask(ctx, partID, taskID); err != nil {
		return scoredomain.SubmRecord{}, err
	}
	recs, err := r.listSubms(ctx, `s.id = $3`, partID, taskID, submID)
	if err != nil {
		return scoredomain.SubmRecord{}, err
	}
	if len(recs) == 0 {
		return scoredomain.SubmRecord{}, scoresrvc.NewErrSubmissionNotFound()
	}
	return recs[0], nil
}

// checkTask reports NotFound unless the participation exists and the task
// belongs to its contest.
func (r *PgScoreRepo) checkTask(ctx context.Context, partID int64, taskID int64) error {
	part, err := r.GetParticipation(ctx, partID)
	if err != nil {
		return err
	}

	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1 AND contest_id = $2)`,
		taskID, part.ContestID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	}
	if !exists {
		return scoresrvc.NewErrTaskNotFound()
	}
	return nil
}

// listSubms selects a participant's submissions on a task with their result on
// the active dataset, newest first. args start with the participation and task
// ids; where may refer to further parameters from $3 on.
func (r *PgScoreRepo) listSubms(ctx context.Context, where string, args ...any) ([]scoredomain.SubmRecord, error) {
	query := `
		SELECT s.id, s.timestamp, s.language, s.official,
			   r.submission_id IS NOT NULL,
			   r.compilation_outcome, r.evaluation_outcome, r.score, r.score_details
		FROM submissions s
		JOIN tasks t ON t.id = s.task_id
		LEFT JOIN submission_results r
			ON r.submission_id = s.id AND r.dataset_id = t.active_dataset_id
		WHERE s.participation_id = $1 AND s.task_id = $2 AND ` + where + `
		ORDER BY s.timestamp DESC, s.id DESC
	`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var res []scoredomain.SubmRecord
	for rows.Next() {
		var (
			rec       scoredomain.SubmRecord
			language  *string
			hasResult bool
			result    scoredomain.SubmissionResult
			details   []byte
			timestamp time.Time
		)
		err := rows.Scan(&rec.ID, &timestamp, &language, &rec.Official,
			&hasResult, &result.CompilationOutcome, &result.EvaluationOutcome, &result.Score, &details)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		rec.Timestamp = timestamp.UTC()
		if language != nil {
			rec.Language = *language
		}
		if hasResult {
			result.ScoreDetails, err = parseScoreDetails(details)
			if err != nil {
				return nil, fmt.Errorf("submission %d: %w", rec.ID, err)
			}
			rec.Result = &result
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return res, nil
}

func (r *PgScoreRepo) listTasks(ctx context.Context, contestID int64) ([]scoredomain.Task, error) {
	query := `
		SELECT t.id, t.num, t.name, t.title, t.score_mode, t.score_precision,
			   d.id, d.score_type, d.score_type_parameters,
			   (SELECT count(*) FROM testcases tc WHERE tc.dataset_id = d.id)
		FROM tasks t
		JOIN datasets d ON d.id = t.active_dataset_id
		WHERE t.contest_id = $1
		ORDER BY t.num, t.id
	`
	rows, err := r.pool.Query(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []scoredomain.Task
	for rows.Next() {
		var (
			t            scoredomain.Task
			num          *int32
			scoreMode    string
			datasetID    int64
			scoreType    string
			params       []byte
			numTestcases int64
		)
		err := rows.Scan(&t.ID, &num, &t.Name, &t.Title, &scoreMode, &t.ScorePrecision,
			&datasetID, &scoreType, &params, &numTestcases)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if num != nil {
			t.Num = int(*num)
		}
		t.ScoreMode, err = parseScoreMode(t.ID, scoreMode)
		if err != nil {
			return nil, err
		}
		t.Dataset, err = parseDataset(t.ID, scoreType, params, int(numTestcases))
		if err != nil {
			return nil, err
		}
		t.Dataset.ID = datasetID
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *PgScoreRepo) listParticipations(ctx context.Context, contestID int64) ([]scoredomain.Participation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, contest_id, hidden FROM participations WHERE contest_id = $1 ORDER BY id`,
		contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participations: %w", err)
	}
	parts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (scoredomain.Participation, error) {
		var p scoredomain.Participation
		err := row.Scan(&p.ID, &p.ContestID, &p.Hidden)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan participations: %w", err)
	}
	return parts, nil
}

// listResultRows selects results of official submissions on the active
// dataset of their task. where is a condition on s (submissions) or p
// (participations) taking one parameter.
func (r *PgScoreRepo) listResultRows(ctx context.Context, where string, arg int64) ([]scoredomain.ResultRow, error) {
	query := `
		SELECT s.id, s.participation_id, s.task_id,
			   r.compilation_outcome, r.evaluation_outcome, r.score, r.score_details
		FROM submissions s
		JOIN participations p ON p.id = s.participation_id
		JOIN tasks t ON t.id = s.task_id AND t.contest_id = p.contest_id
		JOIN submission_results r
			ON r.submission_id = s.id AND r.dataset_id = t.active_dataset_id
		WHERE s.official AND ` + where + `
		ORDER BY s.id
	`
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission results: %w", err)
	}
	defer rows.Close()

	var res []scoredomain.ResultRow
	for rows.Next() {
		var (
			row     scoredomain.ResultRow
			details []byte
		)
		err := rows.Scan(&row.SubmissionID, &row.ParticipationID, &row.TaskID,
			&row.Result.CompilationOutcome, &row.Result.EvaluationOutcome, &row.Result.Score, &details)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission result: %w", err)
		}
		row.Result.ScoreDetails, err = parseScoreDetails(details)
		if err != nil {
			return nil, fmt.Errorf("submission %d: %w", row.SubmissionID, err)
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission results: %w", err)
	}
	return res, nil
}

// countSubms counts official submissions per participation and task.
func (r *PgScoreRepo) countSubms(ctx context.Context, where string, arg int64) (map[scoredomain.PartTaskKey]int, error) {
	query := `
		SELECT s.participation_id, s.task_id, count(*)
		FROM submissions s
		JOIN participations p ON p.id = s.participation_id
		JOIN tasks t ON t.id = s.task_id AND t.contest_id = p.contest_id
		WHERE s.official AND ` + where + `
		GROUP BY s.participation_id, s.task_id
	`
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	res := make(map[scoredomain.PartTaskKey]int)
	for rows.Next() {
		var (
			key scoredomain.PartTaskKey
			n   int64
		)
		if err := rows.Scan(&key.ParticipationID, &key.TaskID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan submission count: %w", err)
		}
		res[key] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission counts: %w", err)
	}
	return res, nil
}

// Connect opens a pool and checks that the database answers.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}
