package scorehttp

import (
	"net/http"

	"github.com/austrian-olympiad-informatics/aoi-portal/httpjson"
	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
)

func (h *ScoreHttpHandler) GetContestScores(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	contestID, err := idParam(r, "contestId")
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	snap, err := h.srvc.GetContestScores.Handle(r.Context(), scoresrvc.GetContestScoresParams{
		ContestID: contestID,
	})
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, snap)
}

func (h *ScoreHttpHandler) GetContestTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	contestID, err := idParam(r, "contestId")
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	tasks, err := h.srvc.GetContestTasks(r.Context(), contestID)
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, tasks)
}
