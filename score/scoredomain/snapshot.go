package scoredomain

import "slices"

// Snapshot is the computed standings of one contest. A snapshot handed out by
// the cache is never mutated; writers work on a Clone.
type Snapshot struct {
	// task ids ordered by task num
	TaskIDs        []int64                       `json:"task_ids"`
	Tasks          map[int64]TaskInfo            `json:"tasks"`
	Results        map[int64]ParticipationResult `json:"results"`
	ScorePrecision int                           `json:"score_precision"`

	ShowGlobalRank       bool `json:"show_global_rank"`
	ShowPointsToNextRank bool `json:"show_points_to_next_rank"`
}

type TaskInfo struct {
	Name             string    `json:"name"`
	Title            string    `json:"title"`
	ScoreMode        ScoreMode `json:"score_mode"`
	ScoreType        ScoreType `json:"score_type"`
	MaxScore         float64   `json:"max_score"`
	SubtaskMaxScores []float64 `json:"subtask_max_scores,omitempty"`
	ScorePrecision   int       `json:"score_precision"`

	// Sum datasets only
	PointsPerTestcase float64 `json:"-"`
	NumTestcases      int     `json:"-"`
}

func (t TaskInfo) HasSubtasks() bool {
	return t.ScoreType.HasSubtasks()
}

type ParticipationResult struct {
	Hidden     bool                 `json:"hidden"`
	Score      float64              `json:"score"`
	TaskScores map[int64]TaskResult `json:"task_scores"`
	Rank       int                  `json:"rank"`
}

type TaskResult struct {
	Score float64 `json:"score"`
	// per-subtask maxima, only in max_subtask mode
	SubtaskScores  []float64 `json:"subtask_scores,omitempty"`
	NumSubmissions int       `json:"num_submissions"`
}

// MaxScore is the sum of all task max scores, rounded to the contest precision.
func (s *Snapshot) MaxScore() float64 {
	total := 0.0
	for _, id := range s.TaskIDs {
		total += s.Tasks[id].MaxScore
	}
	return RoundTo(total, s.ScorePrecision)
}

// Clone returns a deep copy that shares no mutable state with s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		TaskIDs:        slices.Clone(s.TaskIDs),
		Tasks:          make(map[int64]TaskInfo, len(s.Tasks)),
		Results:        make(map[int64]ParticipationResult, len(s.Results)),
		ScorePrecision: s.ScorePrecision,

		ShowGlobalRank:       s.ShowGlobalRank,
		ShowPointsToNextRank: s.ShowPointsToNextRank,
	}
	for id, t := range s.Tasks {
		t.SubtaskMaxScores = slices.Clone(t.SubtaskMaxScores)
		c.Tasks[id] = t
	}
	for id, r := range s.Results {
		c.Results[id] = r.clone()
	}
	return c
}

func (r ParticipationResult) clone() ParticipationResult {
	taskScores := make(map[int64]TaskResult, len(r.TaskScores))
	for id, ts := range r.TaskScores {
		ts.SubtaskScores = slices.Clone(ts.SubtaskScores)
		taskScores[id] = ts
	}
	r.TaskScores = taskScores
	return r
}
