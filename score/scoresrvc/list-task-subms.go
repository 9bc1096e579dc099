package scoresrvc

import (
	"context"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	decorator "github.com/austrian-olympiad-informatics/aoi-portal/srvccqs"
)

type ListTaskSubmsQuery decorator.QueryHandler[ListTaskSubmsParams, []scoredomain.SubmView]

func NewListTaskSubmsQuery(
	listSubms func(ctx context.Context, partID int64, taskID int64) ([]scoredomain.SubmRecord, error),
) ListTaskSubmsQuery {
	return listTaskSubmsHandler{listSubms: listSubms}
}

type ListTaskSubmsParams struct {
	ParticipationID int64
	TaskID          int64
}

type listTaskSubmsHandler struct {
	listSubms func(ctx context.Context, partID int64, taskID int64) ([]scoredomain.SubmRecord, error)
}

func (h listTaskSubmsHandler) Handle(ctx context.Context, p ListTaskSubmsParams) ([]scoredomain.SubmView, error) {
	recs, err := h.listSubms(ctx, p.ParticipationID, p.TaskID)
	if err != nil {
		return nil, err
	}
	res := make([]scoredomain.SubmView, 0, len(recs))
	for _, rec := range recs {
		res = append(res, scoredomain.ProjectSubmission(rec))
	}
	return res, nil
}
