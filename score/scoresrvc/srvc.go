package scoresrvc

import (
	"context"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorecache"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	decorator "github.com/austrian-olympiad-informatics/aoi-portal/srvccqs"
)

type ScoreSrvc struct {
	GetContestScores GetContestScoresQuery
	GetPartScores    GetPartScoresQuery
	ListTaskSubms    ListTaskSubmsQuery
	GetSubm          GetSubmQuery

	InvalidatePart InvalidatePartCmd
}

func NewScoreSrvc(repo Repo, cache *scorecache.Cache) *ScoreSrvc {
	getContestScores := NewGetContestScoresQuery(cache, repo.GetContestInput)

	getPartScores := NewGetPartScoresQuery(
		getContestScoresFunc(getContestScores),
		repo.GetParticipation,
		repo.GetParticipationInput,
	)

	invalidatePart := NewInvalidatePartCmd(
		cache,
		repo.GetParticipation,
		repo.GetParticipationInput,
	)

	listTaskSubms := NewListTaskSubmsQuery(repo.ListTaskSubms)
	getSubm := NewGetSubmQuery(repo.GetTaskSubm)

	return &ScoreSrvc{
		GetContestScores: decorator.WithQueryLogging[GetContestScoresParams, *scoredomain.Snapshot](getContestScores),
		GetPartScores:    decorator.WithQueryLogging[GetPartScoresParams, scoredomain.ParticipationView](getPartScores),
		ListTaskSubms:    decorator.WithQueryLogging[ListTaskSubmsParams, []scoredomain.SubmView](listTaskSubms),
		GetSubm:          decorator.WithQueryLogging[GetSubmParams, scoredomain.SubmDetailView](getSubm),
		InvalidatePart:   decorator.WithCmdLogging[InvalidatePartParams](invalidatePart),
	}
}

// GetContestTasks lists the contest's tasks with their scoring description.
func (s *ScoreSrvc) GetContestTasks(ctx context.Context, contestID int64) ([]scoredomain.TaskView, error) {
	snap, err := s.GetContestScores.Handle(ctx, GetContestScoresParams{ContestID: contestID})
	if err != nil {
		return nil, err
	}
	return scoredomain.ProjectTasks(snap), nil
}

// InvalidateParticipation satisfies scorenotify.Invalidator.
func (s *ScoreSrvc) InvalidateParticipation(ctx context.Context, partID int64) error {
	return s.InvalidatePart.Handle(ctx, InvalidatePartParams{ParticipationID: partID})
}

func getContestScoresFunc(q GetContestScoresQuery) func(ctx context.Context, contestID int64) (*scoredomain.Snapshot, error) {
	return func(ctx context.Context, contestID int64) (*scoredomain.Snapshot, error) {
		return q.Handle(ctx, GetContestScoresParams{ContestID: contestID})
	}
}
