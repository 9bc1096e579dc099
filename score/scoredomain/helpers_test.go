package scoredomain

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func scored(score float64, subtasks ...SubtaskDetail) SubmissionResult {
	return SubmissionResult{
		CompilationOutcome: strPtr(CompilationOk),
		EvaluationOutcome:  strPtr("ok"),
		Score:              floatPtr(score),
		ScoreDetails:       ScoreDetails{Subtasks: subtasks},
	}
}

// compileFailed is the "did not compile" sentinel: score 0 with no details.
func compileFailed() SubmissionResult {
	return SubmissionResult{
		CompilationOutcome: strPtr(CompilationFail),
		EvaluationOutcome:  strPtr("ok"),
		Score:              floatPtr(0),
	}
}

func subtask(idx int, maxScore, fraction float64) SubtaskDetail {
	return SubtaskDetail{Idx: idx, MaxScore: maxScore, ScoreFraction: fraction}
}

func groupTask(id int64, num int, mode ScoreMode, maxScores ...float64) Task {
	return Task{
		ID:             id,
		Num:            num,
		Name:           "t" + string(rune('a'+num)),
		ScoreMode:      mode,
		ScorePrecision: 2,
		Dataset: Dataset{
			ID:             id * 10,
			ScoreType:      ScoreTypeGroupMin,
			GroupMaxScores: maxScores,
		},
	}
}

func sumTask(id int64, num int, mode ScoreMode, pointsPerTc float64, numTc int) Task {
	return Task{
		ID:             id,
		Num:            num,
		Name:           "t" + string(rune('a'+num)),
		ScoreMode:      mode,
		ScorePrecision: 2,
		Dataset: Dataset{
			ID:                   id * 10,
			ScoreType:            ScoreTypeSum,
			SumPointsPerTestcase: pointsPerTc,
			NumTestcases:         numTc,
		},
	}
}

func row(subID, partID, taskID int64, res SubmissionResult) ResultRow {
	return ResultRow{SubmissionID: subID, ParticipationID: partID, TaskID: taskID, Result: res}
}

func taskInfo(t Task) TaskInfo {
	_, infos, err := BuildTaskInfos([]Task{t})
	if err != nil {
		panic(err)
	}
	return infos[t.ID]
}
