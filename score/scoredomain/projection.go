package scoredomain

import (
	"errors"
	"time"
)

var ErrParticipationNotInSnapshot = errors.New("participation not in snapshot")

type ParticipationView struct {
	ParticipationID int64   `json:"participation_id"`
	Hidden          bool    `json:"hidden"`
	Score           float64 `json:"score"`
	MaxScore        float64 `json:"max_score"`
	ScorePrecision  int     `json:"score_precision"`
	Rank            int     `json:"rank"`

	// omitted for hidden participants, for a score of zero and when the
	// contest does not show global ranks
	GlobalRank *int `json:"global_rank,omitempty"`
	// omitted at rank 1 and when the contest does not show it
	PointsToNextRank *float64 `json:"points_to_next_rank,omitempty"`

	Tasks []ParticipationTaskView `json:"tasks"`
}

type ParticipationTaskView struct {
	TaskID           int64     `json:"task_id"`
	Name             string    `json:"name"`
	Title            string    `json:"title"`
	Score            float64   `json:"score"`
	MaxScore         float64   `json:"max_score"`
	ScorePrecision   int       `json:"score_precision"`
	SubtaskScores    []float64 `json:"subtask_scores,omitempty"`
	SubtaskMaxScores []float64 `json:"subtask_max_scores,omitempty"`
	NumSubmissions   int       `json:"num_submissions"`
}

// ProjectParticipation builds one participant's personal score page from the
// contest snapshot.
func ProjectParticipation(s *Snapshot, partID int64) (ParticipationView, error) {
	me, ok := s.Results[partID]
	if !ok {
		return ParticipationView{}, ErrParticipationNotInSnapshot
	}

	view := ParticipationView{
		ParticipationID: partID,
		Hidden:          me.Hidden,
		Score:           me.Score,
		MaxScore:        s.MaxScore(),
		ScorePrecision:  s.ScorePrecision,
		Rank:            me.Rank,
		Tasks:           make([]ParticipationTaskView, 0, len(s.TaskIDs)),
	}
	for _, taskID := range s.TaskIDs {
		info := s.Tasks[taskID]
		tr := me.TaskScores[taskID]
		view.Tasks = append(view.Tasks, ParticipationTaskView{
			TaskID:           taskID,
			Name:             info.Name,
			Title:            info.Title,
			Score:            tr.Score,
			MaxScore:         info.MaxScore,
			ScorePrecision:   info.ScorePrecision,
			SubtaskScores:    tr.SubtaskScores,
			SubtaskMaxScores: info.SubtaskMaxScores,
			NumSubmissions:   tr.NumSubmissions,
		})
	}

	if me.Hidden {
		return view, nil
	}
	if s.ShowGlobalRank && me.Score != 0 {
		rank := me.Rank
		view.GlobalRank = &rank
	}
	if s.ShowPointsToNextRank && me.Rank != 1 {
		if next, ok := nextHigherScore(s, me.Score); ok {
			diff := RoundTo(next-me.Score, s.ScorePrecision)
			view.PointsToNextRank = &diff
		}
	}
	return view, nil
}

// nextHigherScore is the lowest visible score strictly above score.
func nextHigherScore(s *Snapshot, score float64) (float64, bool) {
	found := false
	next := 0.0
	for _, r := range s.Results {
		if r.Hidden || r.Score <= score {
			continue
		}
		if !found || r.Score < next {
			next = r.Score
			found = true
		}
	}
	return next, found
}

type TaskView struct {
	TaskID         int64       `json:"task_id"`
	Name           string      `json:"name"`
	Title          string      `json:"title"`
	ScoreMode      ScoreMode   `json:"score_mode"`
	MaxScore       float64     `json:"max_score"`
	ScorePrecision int         `json:"score_precision"`
	Scoring        ScoringView `json:"scoring"`
}

// ScoringView describes how a task is graded: "sum" with per-testcase points,
// or one of the group types with its subtasks.
type ScoringView struct {
	Type             string           `json:"type"`
	ScorePerTestcase *float64         `json:"score_per_testcase,omitempty"`
	NumTestcases     *int             `json:"num_testcases,omitempty"`
	Subtasks         []SubtaskMaxView `json:"subtasks,omitempty"`
}

type SubtaskMaxView struct {
	MaxScore float64 `json:"max_score"`
}

var scoringTypeNames = map[ScoreType]string{
	ScoreTypeSum:            "sum",
	ScoreTypeGroupMin:       "group_min",
	ScoreTypeGroupMul:       "group_mul",
	ScoreTypeGroupThreshold: "group_threshold",
}

// ProjectTasks lists the contest's tasks in order.
func ProjectTasks(s *Snapshot) []TaskView {
	res := make([]TaskView, 0, len(s.TaskIDs))
	for _, id := range s.TaskIDs {
		info := s.Tasks[id]
		tv := TaskView{
			TaskID:         id,
			Name:           info.Name,
			Title:          info.Title,
			ScoreMode:      info.ScoreMode,
			MaxScore:       info.MaxScore,
			ScorePrecision: info.ScorePrecision,
			Scoring:        ScoringView{Type: scoringTypeNames[info.ScoreType]},
		}
		if info.HasSubtasks() {
			for _, m := range info.SubtaskMaxScores {
				tv.Scoring.Subtasks = append(tv.Scoring.Subtasks, SubtaskMaxView{MaxScore: m})
			}
		} else {
			pts, n := info.PointsPerTestcase, info.NumTestcases
			tv.Scoring.ScorePerTestcase = &pts
			tv.Scoring.NumTestcases = &n
		}
		res = append(res, tv)
	}
	return res
}

// SubmRecord is a submission of a participant on a task, with its result on the
// active dataset if one exists.
type SubmRecord struct {
	ID        int64
	Timestamp time.Time
	Language  string
	Official  bool
	Result    *SubmissionResult
}

type SubmView struct {
	ID        int64               `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	Language  string              `json:"language"`
	Official  bool                `json:"official"`
	Status    ResultStatus        `json:"status"`
	Score     *float64            `json:"score,omitempty"`
	Subtasks  []SubtaskDetailView `json:"subtasks,omitempty"`
}

type SubtaskDetailView struct {
	MaxScore float64 `json:"max_score"`
	Fraction float64 `json:"fraction"`
}

func ProjectSubmission(rec SubmRecord) SubmView {
	view := SubmView{
		ID:        rec.ID,
		Timestamp: rec.Timestamp,
		Language:  rec.Language,
		Official:  rec.Official,
		Status:    Classify(rec.Result),
	}
	if view.Status != StatusScored {
		return view
	}
	score := *rec.Result.Score
	view.Score = &score
	for _, st := range rec.Result.ScoreDetails.Subtasks {
		view.Subtasks = append(view.Subtasks, SubtaskDetailView{
			MaxScore: st.MaxScore,
			Fraction: st.ScoreFraction,
		})
	}
	return view
}

// SubmDetailView is a single submission with its per-testcase results. Group
// score types nest testcases under their subtask, Sum lists them flat.
type SubmDetailView struct {
	ID        int64               `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	Language  string              `json:"language"`
	Official  bool                `json:"official"`
	Status    ResultStatus        `json:"status"`
	Score     *float64            `json:"score,omitempty"`
	Subtasks  []SubtaskResultView `json:"subtasks,omitempty"`
	Testcases []TestcaseView      `json:"testcases,omitempty"`
}

type SubtaskResultView struct {
	MaxScore  float64        `json:"max_score"`
	Fraction  float64        `json:"fraction"`
	Testcases []TestcaseView `json:"testcases"`
}

type TestcaseView struct {
	Outcome string   `json:"outcome"`
	Text    []string `json:"text"`
	Time    *float64 `json:"time"`
	Memory  *int64   `json:"memory"`
}

func ProjectSubmissionDetail(rec SubmRecord) SubmDetailView {
	view := SubmDetailView{
		ID:        rec.ID,
		Timestamp: rec.Timestamp,
		Language:  rec.Language,
		Official:  rec.Official,
		Status:    Classify(rec.Result),
	}
	if view.Status != StatusScored {
		return view
	}
	score := *rec.Result.Score
	view.Score = &score

	details := rec.Result.ScoreDetails
	if len(details.Subtasks) == 0 {
		view.Testcases = projectTestcases(details.Testcases)
		return view
	}
	view.Subtasks = make([]SubtaskResultView, 0, len(details.Subtasks))
	for _, st := range details.Subtasks {
		view.Subtasks = append(view.Subtasks, SubtaskResultView{
			MaxScore:  st.MaxScore,
			Fraction:  st.ScoreFraction,
			Testcases: projectTestcases(st.Testcases),
		})
	}
	return view
}

func projectTestcases(tcs []TestcaseDetail) []TestcaseView {
	res := make([]TestcaseView, 0, len(tcs))
	for _, tc := range tcs {
		text := tc.Text
		if text == nil {
			text = []string{}
		}
		res = append(res, TestcaseView{
			Outcome: tc.Outcome,
			Text:    text,
			Time:    tc.Time,
			Memory:  tc.Memory,
		})
	}
	return res
}
