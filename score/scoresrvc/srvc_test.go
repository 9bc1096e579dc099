package scoresrvc_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorecache"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
	"github.com/austrian-olympiad-informatics/aoi-portal/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contestID  = int64(1)
	taskSum    = int64(11)
	taskGroups = int64(12)
)

var t0 = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func scored(score float64, subtasks ...scoredomain.SubtaskDetail) *scoredomain.SubmissionResult {
	return &scoredomain.SubmissionResult{
		CompilationOutcome: strPtr(scoredomain.CompilationOk),
		EvaluationOutcome:  strPtr("ok"),
		Score:              floatPtr(score),
		ScoreDetails:       scoredomain.ScoreDetails{Subtasks: subtasks},
	}
}

func st(idx int, maxScore, fraction float64) scoredomain.SubtaskDetail {
	return scoredomain.SubtaskDetail{Idx: idx, MaxScore: maxScore, ScoreFraction: fraction}
}

func subm(id int64, minute int, official bool, res *scoredomain.SubmissionResult) scoredomain.SubmRecord {
	return scoredomain.SubmRecord{
		ID:        id,
		Timestamp: t0.Add(time.Duration(minute) * time.Minute),
		Language:  "C++17 / g++",
		Official:  official,
		Result:    res,
	}
}

// newTestRepo mirrors a small contest: a Sum task in max mode, a group task in
// max_subtask mode, three visible participants and a hidden one.
func newTestRepo() *scoresrvc.InMemRepo {
	repo := scoresrvc.NewInMemRepo()
	repo.AddContest(scoredomain.Contest{
		ID: contestID, Name: "aoi-2024-final", ScorePrecision: 2,
		ShowGlobalRank: true, ShowPointsToNextRank: true,
	})
	repo.AddTask(contestID, scoredomain.Task{
		ID: taskGroups, Num: 1, Name: "graph", Title: "Graph",
		ScoreMode: scoredomain.ScoreModeMaxSubtask, ScorePrecision: 2,
		Dataset: scoredomain.Dataset{ID: 120, ScoreType: scoredomain.ScoreTypeGroupMin, GroupMaxScores: []float64{40, 60}},
	})
	repo.AddTask(contestID, scoredomain.Task{
		ID: taskSum, Num: 0, Name: "sum", Title: "Sum",
		ScoreMode: scoredomain.ScoreModeMax, ScorePrecision: 2,
		Dataset: scoredomain.Dataset{ID: 110, ScoreType: scoredomain.ScoreTypeSum, SumPointsPerTestcase: 10, NumTestcases: 10},
	})
	for _, p := range []scoredomain.Participation{
		{ID: 100, ContestID: contestID},
		{ID: 101, ContestID: contestID},
		{ID: 102, ContestID: contestID, Hidden: true},
		{ID: 103, ContestID: contestID},
	} {
		repo.AddParticipation(p)
	}

	repo.AddSubm(100, taskSum, subm(1, 1, true, scored(70)))
	repo.AddSubm(100, taskSum, subm(2, 5, true, scored(50)))
	repo.AddSubm(100, taskGroups, subm(3, 7, true, scored(40, st(1, 40, 1), st(2, 60, 0))))
	repo.AddSubm(101, taskGroups, subm(4, 2, true, scored(60, st(1, 40, 0), st(2, 60, 1))))
	repo.AddSubm(101, taskGroups, subm(5, 3, true, scored(20, st(1, 40, 0.5), st(2, 60, 0))))
	// unofficial submissions never count
	repo.AddSubm(101, taskSum, subm(6, 4, false, scored(100)))
	repo.AddSubm(102, taskSum, subm(7, 2, true, scored(100)))
	repo.AddSubm(103, taskSum, subm(8, 9, true, nil))
	return repo
}

func newTestSrvc(repo scoresrvc.Repo) (*scoresrvc.ScoreSrvc, *scorecache.Cache) {
	cache := scorecache.New(time.Minute)
	return scoresrvc.NewScoreSrvc(repo, cache), cache
}

func getScores(t *testing.T, srvc *scoresrvc.ScoreSrvc) *scoredomain.Snapshot {
	t.Helper()
	snap, err := srvc.GetContestScores.Handle(context.Background(), scoresrvc.GetContestScoresParams{ContestID: contestID})
	require.NoError(t, err)
	return snap
}

func snapJson(t *testing.T, snap *scoredomain.Snapshot) string {
	t.Helper()
	b, err := json.Marshal(snap)
	require.NoError(t, err)
	return string(b)
}

// recomputed scores the repo's current state from a cold cache.
func recomputed(t *testing.T, repo scoresrvc.Repo) string {
	t.Helper()
	fresh, _ := newTestSrvc(repo)
	return snapJson(t, getScores(t, fresh))
}

func TestGetContestScores(t *testing.T) {
	srvc, _ := newTestSrvc(newTestRepo())
	snap := getScores(t, srvc)

	assert.Equal(t, []int64{taskSum, taskGroups}, snap.TaskIDs)

	assert.Equal(t, 110.0, snap.Results[100].Score)
	assert.Equal(t, 2, snap.Results[100].TaskScores[taskSum].NumSubmissions)

	// 0.5*40 from one submission, 60 from the other
	assert.Equal(t, 80.0, snap.Results[101].Score)
	assert.Equal(t, []float64{20, 60}, snap.Results[101].TaskScores[taskGroups].SubtaskScores)
	assert.Equal(t, 0, snap.Results[101].TaskScores[taskSum].NumSubmissions)

	assert.Equal(t, 0.0, snap.Results[103].Score)
	assert.Equal(t, 1, snap.Results[103].TaskScores[taskSum].NumSubmissions)

	assert.Equal(t, 1, snap.Results[100].Rank)
	assert.Equal(t, 2, snap.Results[101].Rank)
	assert.Equal(t, 3, snap.Results[103].Rank)
	assert.Equal(t, 4, snap.Results[102].Rank)
}

func TestGetContestScoresServesFromCache(t *testing.T) {
	repo := newTestRepo()
	srvc, _ := newTestSrvc(repo)
	first := getScores(t, srvc)

	require.NoError(t, repo.SetResult(2, *scored(100)))
	second := getScores(t, srvc)
	assert.Same(t, first, second)
	assert.Equal(t, 110.0, second.Results[100].Score)
}

func TestGetContestScoresRecomputesAfterExpiry(t *testing.T) {
	repo := newTestRepo()
	cache := scorecache.New(40 * time.Millisecond)
	srvc := scoresrvc.NewScoreSrvc(repo, cache)
	first := getScores(t, srvc)

	require.NoError(t, repo.SetResult(2, *scored(100)))
	time.Sleep(60 * time.Millisecond)

	second := getScores(t, srvc)
	assert.NotSame(t, first, second)
	assert.Equal(t, 140.0, second.Results[100].Score)
}

func TestGetContestScoresErrors(t *testing.T) {
	ctx := context.Background()
	srvc, _ := newTestSrvc(newTestRepo())
	_, err := srvc.GetContestScores.Handle(ctx, scoresrvc.GetContestScoresParams{ContestID: 404})
	assert.True(t, srvcerror.HasCode(err, scoresrvc.ErrCodeContestNotFound))

	repo := newTestRepo()
	repo.AddTask(contestID, scoredomain.Task{
		ID: 13, Num: 2, Name: "tokens",
		ScoreMode: "max_tokened_last",
		Dataset:   scoredomain.Dataset{ScoreType: scoredomain.ScoreTypeSum},
	})
	srvc, cache := newTestSrvc(repo)
	_, err = srvc.GetContestScores.Handle(ctx, scoresrvc.GetContestScoresParams{ContestID: contestID})
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, scoresrvc.ErrCodeScoringConfigError))
	var cfgErr *scoredomain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "max_tokened_last", cfgErr.Value)
	assert.Equal(t, 0, cache.Len())
}

// slowRepo delays contest loads so concurrent cold reads overlap.
type slowRepo struct {
	scoresrvc.Repo
	loads atomic.Int32
}

func (r *slowRepo) GetContestInput(ctx context.Context, contestID int64) (scoredomain.ContestInput, error) {
	r.loads.Add(1)
	time.Sleep(50 * time.Millisecond)
	return r.Repo.GetContestInput(ctx, contestID)
}

func TestConcurrentColdReadsLoadOnce(t *testing.T) {
	repo := &slowRepo{Repo: newTestRepo()}
	srvc, _ := newTestSrvc(repo)

	const readers = 20
	snaps := make([]*scoredomain.Snapshot, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := srvc.GetContestScores.Handle(context.Background(), scoresrvc.GetContestScoresParams{ContestID: contestID})
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), repo.loads.Load())
	for _, s := range snaps {
		assert.Same(t, snaps[0], s)
	}
}

// racingRepo runs onLoad once, after the contest input has been read but
// before it is returned.
type racingRepo struct {
	scoresrvc.Repo
	once   sync.Once
	onLoad func()
}

func (r *racingRepo) GetContestInput(ctx context.Context, contestID int64) (scoredomain.ContestInput, error) {
	in, err := r.Repo.GetContestInput(ctx, contestID)
	r.once.Do(r.onLoad)
	return in, err
}

func TestInvalidateDuringColdLoadIsNotLost(t *testing.T) {
	ctx := context.Background()
	base := newTestRepo()
	repo := &racingRepo{Repo: base}
	srvc, cache := newTestSrvc(repo)
	repo.onLoad = func() {
		require.NoError(t, base.SetResult(8, *scored(100)))
		require.NoError(t, srvc.InvalidateParticipation(ctx, 103))
	}

	// the first read was computed from the old input and is not cached
	stale := getScores(t, srvc)
	assert.Equal(t, 0.0, stale.Results[103].Score)
	assert.Equal(t, 0, cache.Len())

	fresh := getScores(t, srvc)
	assert.Equal(t, 100.0, fresh.Results[103].Score)
	assert.Equal(t, 2, fresh.Results[103].Rank)
	assert.Equal(t, 1, cache.Len())
}

func TestInvalidateMatchesFullRecompute(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	srvc, _ := newTestSrvc(repo)
	getScores(t, srvc)

	// one change per participant, each followed by its notification
	changes := []struct {
		partID int64
		apply  func()
	}{
		{100, func() {
			repo.AddSubm(100, taskGroups, subm(20, 30, true, scored(60, st(1, 40, 0), st(2, 60, 1))))
		}},
		{101, func() {
			repo.AddSubm(101, taskSum, subm(21, 31, true, scored(90)))
		}},
		{102, func() {
			repo.AddSubm(102, taskGroups, subm(22, 32, true, scored(100, st(1, 40, 1), st(2, 60, 1))))
		}},
		{103, func() {
			require.NoError(t, repo.SetResult(8, *scored(100)))
		}},
	}
	for _, c := range changes {
		c.apply()
		require.NoError(t, srvc.InvalidateParticipation(ctx, c.partID))
		assert.Equal(t, recomputed(t, repo), snapJson(t, getScores(t, srvc)), "after participation %d", c.partID)
	}

	snap := getScores(t, srvc)
	assert.Equal(t, 170.0, snap.Results[100].Score)
	assert.Equal(t, 170.0, snap.Results[101].Score)
	assert.Equal(t, 100.0, snap.Results[103].Score)
	assert.Equal(t, 1, snap.Results[100].Rank)
	assert.Equal(t, 1, snap.Results[101].Rank)
	assert.Equal(t, 3, snap.Results[103].Rank)
	assert.Equal(t, 4, snap.Results[102].Rank)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	srvc, _ := newTestSrvc(repo)
	getScores(t, srvc)

	repo.AddSubm(101, taskSum, subm(30, 40, true, scored(30)))
	require.NoError(t, srvc.InvalidateParticipation(ctx, 101))
	once := snapJson(t, getScores(t, srvc))

	require.NoError(t, srvc.InvalidateParticipation(ctx, 101))
	twice := snapJson(t, getScores(t, srvc))
	assert.Equal(t, once, twice)

	// invalidating someone without changes changes nothing either
	require.NoError(t, srvc.InvalidateParticipation(ctx, 100))
	assert.Equal(t, once, snapJson(t, getScores(t, srvc)))
}

func TestInvalidateDoesNotTouchHeldSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	srvc, _ := newTestSrvc(repo)
	held := getScores(t, srvc)
	before := snapJson(t, held)

	repo.AddSubm(103, taskSum, subm(40, 50, true, scored(100)))
	require.NoError(t, srvc.InvalidateParticipation(ctx, 103))

	assert.Equal(t, before, snapJson(t, held))
	assert.Equal(t, 100.0, getScores(t, srvc).Results[103].Score)
}

func TestInvalidateWithoutCachedContest(t *testing.T) {
	ctx := context.Background()
	srvc, cache := newTestSrvc(newTestRepo())

	require.NoError(t, srvc.InvalidateParticipation(ctx, 100))
	assert.Equal(t, 0, cache.Len())

	err := srvc.InvalidateParticipation(ctx, 999)
	assert.True(t, srvcerror.HasCode(err, scoresrvc.ErrCodeParticipationNotFound))
}

func TestInvalidateLoadFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	base := newTestRepo()
	boom := errors.New("connection reset")
	repo := &failingPartRepo{Repo: base, err: boom}
	srvc, _ := newTestSrvc(repo)
	before := snapJson(t, getScores(t, srvc))

	err := srvc.InvalidateParticipation(ctx, 100)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, snapJson(t, getScores(t, srvc)))
}

type failingPartRepo struct {
	scoresrvc.Repo
	err error
}

func (r *failingPartRepo) GetParticipationInput(ctx context.Context, partID int64) (scoredomain.ParticipationInput, error) {
	return scoredomain.ParticipationInput{}, r.err
}

func TestGetPartScores(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	srvc, _ := newTestSrvc(repo)

	view, err := srvc.GetPartScores.Handle(ctx, scoresrvc.GetPartScoresParams{ContestID: contestID, ParticipationID: 101})
	require.NoError(t, err)
	assert.Equal(t, 80.0, view.Score)
	assert.Equal(t, 200.0, view.MaxScore)
	require.NotNil(t, view.GlobalRank)
	assert.Equal(t, 2, *view.GlobalRank)
	require.NotNil(t, view.PointsToNextRank)
	assert.Equal(t, 30.0, *view.PointsToNextRank)

	// joined after the snapshot was computed
	repo.AddParticipation(scoredomain.Participation{ID: 104, ContestID: contestID})
	repo.AddSubm(104, taskSum, subm(50, 60, true, scored(10)))
	view, err = srvc.GetPartScores.Handle(ctx, scoresrvc.GetPartScoresParams{ContestID: contestID, ParticipationID: 104})
	require.NoError(t, err)
	assert.Equal(t, 10.0, view.Score)
	assert.Equal(t, 3, view.Rank)

	repo.AddContest(scoredomain.Contest{ID: 2})
	repo.AddParticipation(scoredomain.Participation{ID: 200, ContestID: 2})
	_, err = srvc.GetPartScores.Handle(ctx, scoresrvc.GetPartScoresParams{ContestID: contestID, ParticipationID: 200})
	assert.True(t, srvcerror.HasCode(err, scoresrvc.ErrCodeParticipationNotFound))
}

func TestListTaskSubms(t *testing.T) {
	ctx := context.Background()
	srvc, _ := newTestSrvc(newTestRepo())

	views, err := srvc.ListTaskSubms.Handle(ctx, scoresrvc.ListTaskSubmsParams{ParticipationID: 100, TaskID: taskSum})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(2), views[0].ID)
	assert.Equal(t, scoredomain.StatusScored, views[0].Status)
	assert.Equal(t, 50.0, *views[0].Score)

	views, err = srvc.ListTaskSubms.Handle(ctx, scoresrvc.ListTaskSubmsParams{ParticipationID: 103, TaskID: taskSum})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, scoredomain.StatusCompiling, views[0].Status)
	assert.Nil(t, views[0].Score)

	views, err = srvc.ListTaskSubms.Handle(ctx, scoresrvc.ListTaskSubmsParams{ParticipationID: 101, TaskID: taskGroups})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, []scoredomain.SubtaskDetailView{{MaxScore: 40, Fraction: 0.5}, {MaxScore: 60, Fraction: 0}}, views[0].Subtasks)

	_, err = srvc.ListTaskSubms.Handle(ctx, scoresrvc.ListTaskSubmsParams{ParticipationID: 100, TaskID: 999})
	assert.True(t, srvcerror.HasCode(err, scoresrvc.ErrCodeTaskNotFound))
}

func TestGetSubm(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	mem := int64(4096)
	repo.AddSubm(103, taskSum, subm(9, 10, false, &scoredomain.SubmissionResult{
		CompilationOutcome: strPtr(scoredomain.CompilationOk),
		EvaluationOutcome:  strPtr("ok"),
		Score:              floatPtr(10),
		ScoreDetails: scoredomain.ScoreDetails{Testcases: []scoredomain.TestcaseDetail{
			{Idx: "001", Outcome: "Correct", Text: []string{"Output is correct"}, Time: floatPtr(0.3), Memory: &mem},
			{Idx: "002", Outcome: "Not correct", Text: []string{"Output isn't correct"}},
		}},
	}))
	srvc, _ := newTestSrvc(repo)

	v, err := srvc.GetSubm.Handle(ctx, scoresrvc.GetSubmParams{ParticipationID: 103, TaskID: taskSum, SubmissionID: 9})
	require.NoError(t, err)
	assert.Equal(t, scoredomain.StatusScored, v.Status)
	assert.False(t, v.Official)
	require.Len(t, v.Testcases, 2)
	assert.Equal(t, "Correct", v.Testcases[0].Outcome)
	assert.Equal(t, 0.3, *v.Testcases[0].Time)
	assert.Equal(t, int64(4096), *v.Testcases[0].Memory)
	assert.Equal(t, []string{"Output isn't correct"}, v.Testcases[1].Text)

	v, err = srvc.GetSubm.Handle(ctx, scoresrvc.GetSubmParams{ParticipationID: 100, TaskID: taskGroups, SubmissionID: 3})
	require.NoError(t, err)
	assert.Nil(t, v.Testcases)
	require.Len(t, v.Subtasks, 2)
	assert.Equal(t, 40.0, v.Subtasks[0].MaxScore)
	assert.Equal(t, 1.0, v.Subtasks[0].Fraction)

	// submission 3 belongs to participant 100
	_, err = srvc.GetSubm.Handle(ctx, scoresrvc.GetSubmParams{ParticipationID: 101, TaskID: taskGroups, SubmissionID: 3})
	assert.True(t, srvcerror.HasCode(err, scoresrvc.ErrCodeSubmissionNotFound))
	_, err = srvc.GetSubm.Handle(ctx, scoresrvc.GetSubmParams{ParticipationID: 100, TaskID: taskSum, SubmissionID: 3})
	assert.True(t, srvcerror.HasCode(err, scoresrvc.ErrCodeSubmissionNotFound))
	_, err = srvc.GetSubm.Handle(ctx, scoresrvc.GetSubmParams{ParticipationID: 100, TaskID: 999, SubmissionID: 3})
	assert.True(t, srvcerror.HasCode(err, scoresrvc.ErrCodeTaskNotFound))
}

func TestGetContestTasks(t *testing.T) {
	srvc, _ := newTestSrvc(newTestRepo())
	tasks, err := srvc.GetContestTasks(context.Background(), contestID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "sum", tasks[0].Name)
	assert.Equal(t, "group_min", tasks[1].Scoring.Type)
	assert.Equal(t, 100.0, tasks[1].MaxScore)
}

func TestDemoRepo(t *testing.T) {
	srvc, _ := newTestSrvc(scoresrvc.NewDemoRepo())
	snap, err := srvc.GetContestScores.Handle(context.Background(),
		scoresrvc.GetContestScoresParams{ContestID: scoresrvc.DemoContestID})
	require.NoError(t, err)

	// participant 1 combines subtask 1 and subtasks 2-3 from two submissions
	assert.Equal(t, 175.0, snap.Results[1].Score)
	assert.Equal(t, []float64{20, 30, 25}, snap.Results[1].TaskScores[2].SubtaskScores)
	assert.Equal(t, 150.0, snap.Results[2].Score)
	assert.Equal(t, 35.0, snap.Results[3].Score)
	assert.Equal(t, 2, snap.Results[3].TaskScores[1].NumSubmissions)

	assert.Equal(t, 1, snap.Results[1].Rank)
	assert.Equal(t, 2, snap.Results[2].Rank)
	assert.Equal(t, 3, snap.Results[3].Rank)
	assert.Equal(t, 4, snap.Results[4].Rank)
}
