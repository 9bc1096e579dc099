package scorepgrepo

import (
	"encoding/json"
	"fmt"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
)

type cmsSubtaskDetail struct {
	Idx           int                 `json:"idx"`
	MaxScore      float64             `json:"max_score"`
	ScoreFraction float64             `json:"score_fraction"`
	Testcases     []cmsTestcaseDetail `json:"testcases"`
}

type cmsTestcaseDetail struct {
	Idx     string   `json:"idx"`
	Outcome string   `json:"outcome"`
	Text    []string `json:"text"`
	Time    *float64 `json:"time"`
	Memory  *int64   `json:"memory"`
}

// parseScoreDetails decodes a submission_results.score_details value. Group
// score types store a list of subtasks (entries carry "max_score"), Sum stores
// a flat list of testcases. NULL and [] both mean no details.
func parseScoreDetails(raw []byte) (scoredomain.ScoreDetails, error) {
	var entries []map[string]json.RawMessage
	if len(raw) == 0 {
		return scoredomain.ScoreDetails{}, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return scoredomain.ScoreDetails{}, fmt.Errorf("failed to parse score details: %w", err)
	}
	if len(entries) == 0 {
		return scoredomain.ScoreDetails{}, nil
	}

	if _, isSubtask := entries[0]["max_score"]; isSubtask {
		var subtasks []cmsSubtaskDetail
		if err := json.Unmarshal(raw, &subtasks); err != nil {
			return scoredomain.ScoreDetails{}, fmt.Errorf("failed to parse subtask score details: %w", err)
		}
		res := scoredomain.ScoreDetails{Subtasks: make([]scoredomain.SubtaskDetail, 0, len(subtasks))}
		for _, st := range subtasks {
			res.Subtasks = append(res.Subtasks, scoredomain.SubtaskDetail{
				Idx:           st.Idx,
				MaxScore:      st.MaxScore,
				ScoreFraction: st.ScoreFraction,
				Testcases:     mapTestcases(st.Testcases),
			})
		}
		return res, nil
	}

	var testcases []cmsTestcaseDetail
	if err := json.Unmarshal(raw, &testcases); err != nil {
		return scoredomain.ScoreDetails{}, fmt.Errorf("failed to parse testcase score details: %w", err)
	}
	return scoredomain.ScoreDetails{Testcases: mapTestcases(testcases)}, nil
}

func mapTestcases(tcs []cmsTestcaseDetail) []scoredomain.TestcaseDetail {
	if len(tcs) == 0 {
		return nil
	}
	res := make([]scoredomain.TestcaseDetail, 0, len(tcs))
	for _, tc := range tcs {
		res = append(res, scoredomain.TestcaseDetail{
			Idx:     tc.Idx,
			Outcome: tc.Outcome,
			Text:    tc.Text,
			Time:    tc.Time,
			Memory:  tc.Memory,
		})
	}
	return res
}

// parseDataset fills the score type specific fields of a dataset from its
// score_type and score_type_parameters columns. Sum takes the points of a
// single testcase; group types take a list of [max_points, testcases] pairs.
func parseDataset(taskID int64, scoreType string, params []byte, numTestcases int) (scoredomain.Dataset, error) {
	entity := fmt.Sprintf("task %d", taskID)
	st, err := scoredomain.ParseScoreType(scoreType)
	if err != nil {
		return scoredomain.Dataset{}, &scoredomain.ConfigError{Field: "score_type", Value: scoreType, Entity: entity}
	}

	ds := scoredomain.Dataset{ScoreType: st, NumTestcases: numTestcases}
	if !st.HasSubtasks() {
		if err := json.Unmarshal(params, &ds.SumPointsPerTestcase); err != nil {
			return scoredomain.Dataset{}, fmt.Errorf("failed to parse Sum parameters of %s: %w", entity, err)
		}
		return ds, nil
	}

	var groups [][]json.RawMessage
	if err := json.Unmarshal(params, &groups); err != nil {
		return scoredomain.Dataset{}, fmt.Errorf("failed to parse %s parameters of %s: %w", scoreType, entity, err)
	}
	ds.GroupMaxScores = make([]float64, 0, len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			return scoredomain.Dataset{}, fmt.Errorf("group %d of %s has no max score", i+1, entity)
		}
		var maxPoints float64
		if err := json.Unmarshal(g[0], &maxPoints); err != nil {
			return scoredomain.Dataset{}, fmt.Errorf("failed to parse max score of group %d of %s: %w", i+1, entity, err)
		}
		ds.GroupMaxScores = append(ds.GroupMaxScores, maxPoints)
	}
	return ds, nil
}

func parseScoreMode(taskID int64, mode string) (scoredomain.ScoreMode, error) {
	m, err := scoredomain.ParseScoreMode(mode)
	if err != nil {
		return "", &scoredomain.ConfigError{Field: "score_mode", Value: mode, Entity: fmt.Sprintf("task %d", taskID)}
	}
	return m, nil
}
