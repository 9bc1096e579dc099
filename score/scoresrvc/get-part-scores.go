package scoresrvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	decorator "github.com/austrian-olympiad-informatics/aoi-portal/srvccqs"
)

type GetPartScoresQuery decorator.QueryHandler[GetPartScoresParams, scoredomain.ParticipationView]

func NewGetPartScoresQuery(
	getContestScores func(ctx context.Context, contestID int64) (*scoredomain.Snapshot, error),
	getPart func(ctx context.Context, partID int64) (scoredomain.Participation, error),
	loadPart func(ctx context.Context, partID int64) (scoredomain.ParticipationInput, error),
) GetPartScoresQuery {
	return getPartScoresHandler{
		getContestScores: getContestScores,
		getPart:          getPart,
		loadPart:         loadPart,
	}
}

type GetPartScoresParams struct {
	ContestID       int64
	ParticipationID int64
}

type getPartScoresHandler struct {
	getContestScores func(ctx context.Context, contestID int64) (*scoredomain.Snapshot, error)
	getPart          func(ctx context.Context, partID int64) (scoredomain.Participation, error)
	loadPart         func(ctx context.Context, partID int64) (scoredomain.ParticipationInput, error)
}

func (h getPartScoresHandler) Handle(ctx context.Context, p GetPartScoresParams) (scoredomain.ParticipationView, error) {
	snap, err := h.getContestScores(ctx, p.ContestID)
	if err != nil {
		return scoredomain.ParticipationView{}, err
	}

	view, err := scoredomain.ProjectParticipation(snap, p.ParticipationID)
	if !errors.Is(err, scoredomain.ErrParticipationNotInSnapshot) {
		return view, err
	}

	// joined after the snapshot was computed
	part, err := h.getPart(ctx, p.ParticipationID)
	if err != nil {
		return scoredomain.ParticipationView{}, err
	}
	if part.ContestID != p.ContestID {
		return scoredomain.ParticipationView{}, NewErrParticipationNotFound()
	}
	in, err := h.loadPart(ctx, part.ID)
	if err != nil {
		return scoredomain.ParticipationView{}, fmt.Errorf("failed to load participation %d: %w", part.ID, err)
	}
	local := snap.Clone()
	local.ReplaceParticipation(in)
	return scoredomain.ProjectParticipation(local, part.ID)
}
