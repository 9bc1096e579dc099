package scoresrvc

import (
	"fmt"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
)

const DemoContestID = int64(1)

// NewDemoRepo returns an in-memory repo holding one small finished contest.
// It backs the -demo mode of the binaries.
func NewDemoRepo() *InMemRepo {
	r := NewInMemRepo()
	r.AddContest(scoredomain.Contest{
		ID: DemoContestID, Name: "demo-final", ScorePrecision: 2,
		ShowGlobalRank: true, ShowPointsToNextRank: true,
	})
	r.AddTask(DemoContestID, scoredomain.Task{
		ID: 1, Num: 0, Name: "stones", Title: "Stones",
		ScoreMode: scoredomain.ScoreModeMax, ScorePrecision: 2,
		Dataset: scoredomain.Dataset{ID: 1, ScoreType: scoredomain.ScoreTypeSum, SumPointsPerTestcase: 5, NumTestcases: 20},
	})
	r.AddTask(DemoContestID, scoredomain.Task{
		ID: 2, Num: 1, Name: "bridges", Title: "Bridges",
		ScoreMode: scoredomain.ScoreModeMaxSubtask, ScorePrecision: 2,
		Dataset: scoredomain.Dataset{ID: 2, ScoreType: scoredomain.ScoreTypeGroupMin, GroupMaxScores: []float64{20, 30, 50}},
	})

	for id, hidden := range map[int64]bool{1: false, 2: false, 3: false, 4: true} {
		r.AddParticipation(scoredomain.Participation{ID: id, ContestID: DemoContestID, Hidden: hidden})
	}

	start := time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC)
	var submID int64
	add := func(partID, taskID int64, minute int, res *scoredomain.SubmissionResult) {
		submID++
		r.AddSubm(partID, taskID, scoredomain.SubmRecord{
			ID:        submID,
			Timestamp: start.Add(time.Duration(minute) * time.Minute),
			Language:  "C++17 / g++",
			Official:  true,
			Result:    res,
		})
	}
	// each group holds two testcases; a half solved group fails its second one
	groups := func(fractions ...float64) *scoredomain.SubmissionResult {
		maxScores := []float64{20, 30, 50}
		details := scoredomain.ScoreDetails{}
		total := 0.0
		for i, f := range fractions {
			correct := 0
			switch {
			case f >= 1:
				correct = 2
			case f > 0:
				correct = 1
			}
			details.Subtasks = append(details.Subtasks, scoredomain.SubtaskDetail{
				Idx: i + 1, MaxScore: maxScores[i], ScoreFraction: f,
				Testcases: demoTestcases(2*i, 2, correct),
			})
			total += f * maxScores[i]
		}
		return demoResult(total, details)
	}
	sum := func(correct int) *scoredomain.SubmissionResult {
		return demoResult(float64(5*correct), scoredomain.ScoreDetails{Testcases: demoTestcases(0, 20, correct)})
	}

	add(1, 1, 12, sum(13))
	add(1, 1, 48, sum(20))
	add(1, 2, 95, groups(1, 0, 0))
	add(1, 2, 140, groups(0, 1, 0.5))
	add(2, 2, 30, groups(1, 1, 0))
	add(2, 1, 75, sum(20))
	add(3, 1, 20, &scoredomain.SubmissionResult{CompilationOutcome: demoStr(scoredomain.CompilationFail)})
	add(3, 1, 26, sum(7))
	add(4, 2, 15, groups(1, 1, 1))
	add(3, 2, 170, nil)
	return r
}

func demoResult(score float64, details scoredomain.ScoreDetails) *scoredomain.SubmissionResult {
	return &scoredomain.SubmissionResult{
		CompilationOutcome: demoStr(scoredomain.CompilationOk),
		EvaluationOutcome:  demoStr("ok"),
		Score:              &score,
		ScoreDetails:       details,
	}
}

// demoTestcases returns n testcases numbered from first+1, the first correct
// of which pass.
func demoTestcases(first, n, correct int) []scoredomain.TestcaseDetail {
	res := make([]scoredomain.TestcaseDetail, 0, n)
	for i := 0; i < n; i++ {
		t := 0.05 * float64(i+1)
		mem := int64(1<<20) * int64(i+1)
		tc := scoredomain.TestcaseDetail{
			Idx:     fmt.Sprintf("%03d", first+i+1),
			Outcome: "Correct",
			Text:    []string{"Output is correct"},
			Time:    &t,
			Memory:  &mem,
		}
		if i >= correct {
			tc.Outcome = "Not correct"
			tc.Text = []string{"Output isn't correct"}
		}
		res = append(res, tc)
	}
	return res
}

func demoStr(s string) *string { return &s }
