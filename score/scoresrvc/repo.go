package scoresrvc

import (
	"context"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
)

// Repo reads the contest data scoring needs. Rows it returns are already
// limited to official submissions on each task's active dataset; result status
// is left to the caller. Missing entities are reported with the NotFound
// service errors of this package.
type Repo interface {
	GetContestInput(ctx context.Context, contestID int64) (scoredomain.ContestInput, error)
	GetParticipation(ctx context.Context, partID int64) (scoredomain.Participation, error)
	GetParticipationInput(ctx context.Context, partID int64) (scoredomain.ParticipationInput, error)
	// ListTaskSubms returns all submissions, official or not, newest first.
	ListTaskSubms(ctx context.Context, partID int64, taskID int64) ([]scoredomain.SubmRecord, error)
	GetTaskSubm(ctx context.Context, partID int64, taskID int64, submID int64) (scoredomain.SubmRecord, error)
}
