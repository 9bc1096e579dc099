package scoredomain

import (
	"cmp"
	"fmt"
	"slices"
)

// ContestInput is everything needed to compute a contest's standings.
type ContestInput struct {
	Contest        Contest
	Tasks          []Task
	Participations []Participation
	// official submissions on each task's active dataset, any status
	Rows []ResultRow
	// official submission counts
	Counts map[PartTaskKey]int
}

// ParticipationInput is one participant's slice of a ContestInput.
type ParticipationInput struct {
	Participation Participation
	Rows          []ResultRow
	// official submission count by task id
	Counts map[int64]int
}

// BuildTaskInfos derives the per-task metadata of a contest. Task ids are
// returned ordered by task num.
func BuildTaskInfos(tasks []Task) ([]int64, map[int64]TaskInfo, error) {
	sorted := slices.Clone(tasks)
	slices.SortFunc(sorted, func(a, b Task) int {
		if c := cmp.Compare(a.Num, b.Num); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	ids := make([]int64, 0, len(sorted))
	infos := make(map[int64]TaskInfo, len(sorted))
	for _, t := range sorted {
		if err := validateTask(t); err != nil {
			return nil, nil, err
		}
		ids = append(ids, t.ID)
		infos[t.ID] = TaskInfo{
			Name:              t.Name,
			Title:             t.Title,
			ScoreMode:         t.ScoreMode,
			ScoreType:         t.Dataset.ScoreType,
			MaxScore:          t.Dataset.MaxScore(),
			SubtaskMaxScores:  t.Dataset.SubtaskMaxScores(),
			ScorePrecision:    t.ScorePrecision,
			PointsPerTestcase: t.Dataset.SumPointsPerTestcase,
			NumTestcases:      t.Dataset.NumTestcases,
		}
	}
	return ids, infos, nil
}

func validateTask(t Task) error {
	entity := fmt.Sprintf("task %d", t.ID)
	if _, err := ParseScoreMode(string(t.ScoreMode)); err != nil {
		return &ConfigError{Field: "score_mode", Value: string(t.ScoreMode), Entity: entity}
	}
	if _, err := ParseScoreType(string(t.Dataset.ScoreType)); err != nil {
		return &ConfigError{Field: "score_type", Value: string(t.Dataset.ScoreType), Entity: entity}
	}
	return nil
}

// CalcParticipationResult computes one participant's task scores and total.
// Each task score is rounded to the task precision, then the sum is rounded
// again to contest precision. Rank is left at zero.
func CalcParticipationResult(
	taskIDs []int64,
	infos map[int64]TaskInfo,
	contestPrecision int,
	in ParticipationInput,
) ParticipationResult {
	inputsByTask := make(map[int64][]ScoreInput)
	for _, row := range in.Rows {
		if row.ParticipationID != in.Participation.ID || !IsScored(&row.Result) {
			continue
		}
		inputsByTask[row.TaskID] = append(inputsByTask[row.TaskID], ScoreInput{
			Score:   *row.Result.Score,
			Details: row.Result.ScoreDetails,
		})
	}

	res := ParticipationResult{
		Hidden:     in.Participation.Hidden,
		TaskScores: make(map[int64]TaskResult, len(taskIDs)),
	}
	total := 0.0
	for _, taskID := range taskIDs {
		ts := CalcTaskScore(inputsByTask[taskID], infos[taskID])
		res.TaskScores[taskID] = TaskResult{
			Score:          ts.Score,
			SubtaskScores:  ts.SubtaskScores,
			NumSubmissions: in.Counts[taskID],
		}
		total += ts.Score
	}
	res.Score = RoundTo(total, contestPrecision)
	return res
}

// CalcContestScores computes the full standings of a contest, ranks included.
func CalcContestScores(in ContestInput) (*Snapshot, error) {
	taskIDs, infos, err := BuildTaskInfos(in.Tasks)
	if err != nil {
		return nil, err
	}

	rowsByPart := make(map[int64][]ResultRow)
	for _, row := range in.Rows {
		rowsByPart[row.ParticipationID] = append(rowsByPart[row.ParticipationID], row)
	}
	countsByPart := make(map[int64]map[int64]int)
	for key, n := range in.Counts {
		if countsByPart[key.ParticipationID] == nil {
			countsByPart[key.ParticipationID] = make(map[int64]int)
		}
		countsByPart[key.ParticipationID][key.TaskID] = n
	}

	snap := &Snapshot{
		TaskIDs:        taskIDs,
		Tasks:          infos,
		Results:        make(map[int64]ParticipationResult, len(in.Participations)),
		ScorePrecision: in.Contest.ScorePrecision,

		ShowGlobalRank:       in.Contest.ShowGlobalRank,
		ShowPointsToNextRank: in.Contest.ShowPointsToNextRank,
	}
	for _, part := range in.Participations {
		snap.Results[part.ID] = CalcParticipationResult(taskIDs, infos, in.Contest.ScorePrecision, ParticipationInput{
			Participation: part,
			Rows:          rowsByPart[part.ID],
			Counts:        countsByPart[part.ID],
		})
	}
	AssignRanks(snap.Results)
	return snap, nil
}

// ReplaceParticipation recomputes one participant against the snapshot's task
// metadata and re-ranks everyone. snap is modified in place, so callers must
// hand in a clone of any shared snapshot.
func (s *Snapshot) ReplaceParticipation(in ParticipationInput) {
	s.Results[in.Participation.ID] = CalcParticipationResult(s.TaskIDs, s.Tasks, s.ScorePrecision, in)
	AssignRanks(s.Results)
}
