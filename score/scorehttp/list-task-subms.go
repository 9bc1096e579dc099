package scorehttp

import (
	"net/http"

	"github.com/austrian-olympiad-informatics/aoi-portal/httpjson"
	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
)

func (h *ScoreHttpHandler) ListTaskSubms(w http.ResponseWriter, r *http.Request) {
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

	subms, err := h.srvc.ListTaskSubms.Handle(r.Context(), scoresrvc.ListTaskSubmsParams{
		ParticipationID: partID,
		TaskID:          taskID,
	})
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, subms)
}
