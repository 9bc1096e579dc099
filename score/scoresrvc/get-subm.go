package scoresrvc

import (
	"context"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	decorator "github.com/austrian-olympiad-informatics/aoi-portal/srvccqs"
)

type GetSubmQuery decorator.QueryHandler[GetSubmParams, scoredomain.SubmDetailView]

func NewGetSubmQuery(
	getSubm func(ctx context.Context, partID int64, taskID int64, submID int64) (scoredomain.SubmRecord, error),
) GetSubmQuery {
	return getSubmHandler{getSubm: getSubm}
}

type GetSubmParams struct {
	ParticipationID int64
	TaskID          int64
	SubmissionID    int64
}

type getSubmHandler struct {
	getSubm func(ctx context.Context, partID int64, taskID int64, submID int64) (scoredomain.SubmRecord, error)
}

func (h getSubmHandler) Handle(ctx context.Context, p GetSubmParams) (scoredomain.SubmDetailView, error) {
	rec, err := h.getSubm(ctx, p.ParticipationID, p.TaskID, p.SubmissionID)
	if err != nil {
		return scoredomain.SubmDetailView{}, err
	}
	return scoredomain.ProjectSubmissionDetail(rec), nil
}
