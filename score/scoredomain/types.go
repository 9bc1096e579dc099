package scoredomain

import "fmt"

// ScoreMode is the policy for combining a participant's submissions on one task.
type ScoreMode string

const (
	// best single submission
	ScoreModeMax ScoreMode = "max"
	// best result per subtask, summed over subtasks
	ScoreModeMaxSubtask ScoreMode = "max_subtask"
)

func ParseScoreMode(s string) (ScoreMode, error) {
	switch ScoreMode(s) {
	case ScoreModeMax, ScoreModeMaxSubtask:
		return ScoreMode(s), nil
	}
	return "", &ConfigError{Field: "score_mode", Value: s}
}

// ScoreType is the grading rule of a dataset.
type ScoreType string

const (
	ScoreTypeSum            ScoreType = "Sum"
	ScoreTypeGroupMin       ScoreType = "GroupMin"
	ScoreTypeGroupMul       ScoreType = "GroupMul"
	ScoreTypeGroupThreshold ScoreType = "GroupThreshold"
)

func ParseScoreType(s string) (ScoreType, error) {
	switch ScoreType(s) {
	case ScoreTypeSum, ScoreTypeGroupMin, ScoreTypeGroupMul, ScoreTypeGroupThreshold:
		return ScoreType(s), nil
	}
	return "", &ConfigError{Field: "score_type", Value: s}
}

// HasSubtasks is true for the group score types, each group being one subtask.
func (t ScoreType) HasSubtasks() bool {
	return t != ScoreTypeSum
}

// ConfigError reports a score mode or score type this portal does not know.
// It means the mirrored data is inconsistent with the code and must not be
// papered over with a default.
type ConfigError struct {
	Field string
	Value string
	// Entity identifies where the value was found, e.g. "task 12"
	Entity string
}

func (e *ConfigError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("unknown %s %q on %s", e.Field, e.Value, e.Entity)
	}
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

type Contest struct {
	ID             int64
	Name           string
	ScorePrecision int

	// what a participant may learn about the others
	ShowGlobalRank       bool
	ShowPointsToNextRank bool
}

type Participation struct {
	ID        int64
	ContestID int64
	Hidden    bool
}

// Dataset is the active grading configuration of a task.
type Dataset struct {
	ID        int64
	ScoreType ScoreType

	// Sum only
	SumPointsPerTestcase float64
	NumTestcases         int

	// group types only, one entry per subtask in order
	GroupMaxScores []float64
}

func (d Dataset) MaxScore() float64 {
	if !d.ScoreType.HasSubtasks() {
		return d.SumPointsPerTestcase * float64(d.NumTestcases)
	}
	total := 0.0
	for _, p := range d.GroupMaxScores {
		total += p
	}
	return total
}

// SubtaskMaxScores is nil for datasets without subtasks.
func (d Dataset) SubtaskMaxScores() []float64 {
	if !d.ScoreType.HasSubtasks() {
		return nil
	}
	res := make([]float64, len(d.GroupMaxScores))
	copy(res, d.GroupMaxScores)
	return res
}

type Task struct {
	ID             int64
	Num            int
	Name           string
	Title          string
	ScoreMode      ScoreMode
	ScorePrecision int
	Dataset        Dataset
}

// SubmissionResult is the grading outcome of one submission on one dataset.
// Nil pointers mean "not there yet".
type SubmissionResult struct {
	CompilationOutcome *string
	EvaluationOutcome  *string
	Score              *float64
	ScoreDetails       ScoreDetails
}

const (
	CompilationOk   = "ok"
	CompilationFail = "fail"
)

// ResultRow is the result of one official submission on its task's active dataset.
type ResultRow struct {
	SubmissionID    int64
	ParticipationID int64
	TaskID          int64
	Result          SubmissionResult
}

// ScoreDetails is the structured breakdown a score type attaches to a result:
// a list of subtasks for group types, a list of testcases for Sum, or nothing
// when compilation failed.
type ScoreDetails struct {
	Subtasks  []SubtaskDetail
	Testcases []TestcaseDetail
}

func (d ScoreDetails) IsEmpty() bool {
	return len(d.Subtasks) == 0 && len(d.Testcases) == 0
}

type SubtaskDetail struct {
	Idx           int
	MaxScore      float64
	ScoreFraction float64
	Testcases     []TestcaseDetail
}

func (s SubtaskDetail) Score() float64 {
	return s.ScoreFraction * s.MaxScore
}

type TestcaseDetail struct {
	Idx     string
	Outcome string
	// format string followed by its arguments
	Text   []string
	Time   *float64
	Memory *int64
}

// PartTaskKey identifies one participant's history on one task.
type PartTaskKey struct {
	ParticipationID int64
	TaskID          int64
}
