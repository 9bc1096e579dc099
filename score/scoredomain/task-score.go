package scoredomain

// ScoreInput is the score and breakdown of one scored official submission.
type ScoreInput struct {
	Score   float64
	Details ScoreDetails
}

type TaskScore struct {
	Score float64
	// only set in max_subtask mode on tasks with subtasks
	SubtaskScores []float64
}

// CalcTaskScore combines a participant's scored submissions on one task
// according to the task's score mode.
func CalcTaskScore(inputs []ScoreInput, task TaskInfo) TaskScore {
	if task.ScoreMode == ScoreModeMaxSubtask && task.HasSubtasks() {
		return calcMaxSubtask(inputs, task)
	}

	best := 0.0
	for _, in := range inputs {
		if in.Score > best {
			best = in.Score
		}
	}
	return TaskScore{Score: RoundTo(best, task.ScorePrecision)}
}

func calcMaxSubtask(inputs []ScoreInput, task TaskInfo) TaskScore {
	n := len(task.SubtaskMaxScores)
	maxima := make([]float64, n)
	for _, in := range inputs {
		// compilation failures carry no details and cannot contribute
		if len(in.Details.Subtasks) == 0 {
			continue
		}
		for _, st := range in.Details.Subtasks {
			if st.Idx < 1 || st.Idx > n {
				continue
			}
			if s := st.Score(); s > maxima[st.Idx-1] {
				maxima[st.Idx-1] = s
			}
		}
	}

	total := 0.0
	for _, m := range maxima {
		total += m
	}
	return TaskScore{
		Score:         RoundTo(total, task.ScorePrecision),
		SubtaskScores: maxima,
	}
}
