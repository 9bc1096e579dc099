package scorehttp

import (
	"net/http"

	"github.com/austrian-olympiad-informatics/aoi-portal/httpjson"
	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
)

// GetSubm returns one submission with its per-testcase results.
func (h *ScoreHttpHandler) GetSubm(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	partID, err := idParam(r, "participationId")
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}
	taskID, err := idParam(r, "taskId")
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}
	submID, err := idParam(r, "submissionId")
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	subm, err := h.srvc.GetSubm.Handle(r.Context(), scoresrvc.GetSubmParams{
		ParticipationID: partID,
		TaskID:          taskID,
		SubmissionID:    submID,
	})
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, subm)
}
