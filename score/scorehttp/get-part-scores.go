package scorehttp

import (
	"net/http"

	"github.com/austrian-olympiad-informatics/aoi-portal/httpjson"
	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
)

func (h *ScoreHttpHandler) GetPartScores(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	contestID, err := idParam(r, "contestId")
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}
	partID, err := idParam(r, "participationId")
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	view, err := h.srvc.GetPartScores.Handle(r.Context(), scoresrvc.GetPartScoresParams{
		ContestID:       contestID,
		ParticipationID: partID,
	})
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, view)
}
