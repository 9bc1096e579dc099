package scorehttp

import (
	"net/http"
	"strconv"

	"github.com/austrian-olympiad-informatics/aoi-portal/auth"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
	"github.com/austrian-olympiad-informatics/aoi-portal/srvcerror"
	"github.com/go-chi/chi/v5"
)

type ScoreHttpHandler struct {
	srvc *scoresrvc.ScoreSrvc
}

func NewScoreHttpHandler(srvc *scoresrvc.ScoreSrvc) *ScoreHttpHandler {
	return &ScoreHttpHandler{srvc: srvc}
}

// RegisterRoutes mounts the read routes publicly. Invalidation needs a service
// token signed with jwtKey; without a key it is always refused.
func (h *ScoreHttpHandler) RegisterRoutes(r chi.Router, jwtKey []byte) {
	r.Get("/contests/{contestId}/scores", h.GetContestScores)
	r.Get("/contests/{contestId}/tasks", h.GetContestTasks)
	r.Get("/contests/{contestId}/participations/{participationId}/scores", h.GetPartScores)
	r.Get("/participations/{participationId}/tasks/{taskId}/submissions", h.ListTaskSubms)
	r.Get("/participations/{participationId}/tasks/{taskId}/submissions/{submissionId}", h.GetSubm)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireScope(jwtKey, auth.ScopeInvalidateScores))
		r.Post("/participations/{participationId}/invalidate", h.InvalidatePart)
	})
}

const ErrCodeInvalidPathParam = "invalid_path_param"

func newErrInvalidPathParam(name string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidPathParam,
		name+" must be a positive integer",
	).SetHttpStatusCode(http.StatusBadRequest)
}

// idParam reads a positive integer id from the route.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, newErrInvalidPathParam(name)
	}
	return id, nil
}
