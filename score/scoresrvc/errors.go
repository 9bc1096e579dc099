package scoresrvc

import (
	"errors"
	"net/http"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	"github.com/austrian-olympiad-informatics/aoi-portal/srvcerror"
)

const (
	ErrCodeContestNotFound       = "contest_not_found"
	ErrCodeParticipationNotFound = "participation_not_found"
	ErrCodeTaskNotFound          = "task_not_found"
	ErrCodeSubmissionNotFound    = "submission_not_found"
	ErrCodeScoringConfigError    = "scoring_config_error"
)

func NewErrContestNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeContestNotFound,
		"contest not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

func NewErrParticipationNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeParticipationNotFound,
		"participation not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

func NewErrTaskNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeTaskNotFound,
		"task not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

func NewErrSubmissionNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionNotFound,
		"submission not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

func newErrScoringConfig(cause error) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeScoringConfigError,
		"contest scoring is misconfigured",
	).SetHttpStatusCode(http.StatusInternalServerError).SetDebug(cause)
}

// mapConfigError turns a scoring configuration problem into a service error and
// passes everything else through.
func mapConfigError(err error) error {
	var cfgErr *scoredomain.ConfigError
	if errors.As(err, &cfgErr) {
		return newErrScoringConfig(err)
	}
	return err
}
