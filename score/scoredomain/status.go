package scoredomain

// ResultStatus is the lifecycle stage of a submission result. It is always
// derived from the result's fields and never stored.
type ResultStatus string

const (
	StatusCompiling         ResultStatus = "compiling"
	StatusCompilationFailed ResultStatus = "compilation_failed"
	StatusEvaluating        ResultStatus = "evaluating"
	StatusScoring           ResultStatus = "scoring"
	StatusScored            ResultStatus = "scored"
)

// Classify derives the status of res. A missing result is still compiling.
func Classify(res *SubmissionResult) ResultStatus {
	switch {
	case res == nil || res.CompilationOutcome == nil:
		return StatusCompiling
	case *res.CompilationOutcome == CompilationFail:
		return StatusCompilationFailed
	case res.EvaluationOutcome == nil:
		return StatusEvaluating
	case res.Score == nil:
		return StatusScoring
	default:
		return StatusScored
	}
}

// IsScored reports whether res may be used for aggregation.
func IsScored(res *SubmissionResult) bool {
	return Classify(res) == StatusScored
}
