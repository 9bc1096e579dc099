package scorehttp

import (
	"net/http"

	"github.com/austrian-olympiad-informatics/aoi-portal/auth"
	"github.com/austrian-olympiad-informatics/aoi-portal/httpjson"
	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
)

// InvalidatePart lets collaborators without access to the notification queue
// report a freshly scored participation.
func (h *ScoreHttpHandler) InvalidatePart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	partID, err := idParam(r, "participationId")
	if err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}

	if err := h.srvc.InvalidateParticipation(r.Context(), partID); err != nil {
		httpjson.HandleSrvcError(log, w, err)
		return
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		log.Debug("participation invalidated", "participation_id", partID, "by", claims.Subject)
	}

	w.WriteHeader(http.StatusNoContent)
}
