package main

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	hiddenStyle = cellStyle.Foreground(lipgloss.Color("#7f8c8d"))
	fullStyle   = cellStyle.Foreground(lipgloss.Color("#27ae60"))
)

// lipgloss numbers the header row 0 and data rows from 1.
const headerRow = 0

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#9b59b6"))).
		Headers(headers...)
}

func fmtScore(score float64, prec int) string {
	return strconv.FormatFloat(score, 'f', prec, 64)
}

// renderStandings prints participations best first; hidden ones go last and
// show "-" for rank.
func renderStandings(snap *scoredomain.Snapshot, showHidden bool) string {
	headers := []string{"rank", "participation"}
	for _, id := range snap.TaskIDs {
		headers = append(headers, snap.Tasks[id].Name)
	}
	headers = append(headers, "total")

	ids := make([]int64, 0, len(snap.Results))
	for id, res := range snap.Results {
		if res.Hidden && !showHidden {
			continue
		}
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b int64) int {
		return cmp.Or(
			cmp.Compare(snap.Results[a].Rank, snap.Results[b].Rank),
			cmp.Compare(a, b),
		)
	})

	var rows [][]string
	full := make(map[[2]int]bool)
	for i, id := range ids {
		res := snap.Results[id]
		rank := strconv.Itoa(res.Rank)
		if res.Hidden {
			rank = "-"
		}
		row := []string{rank, strconv.FormatInt(id, 10)}
		for j, taskID := range snap.TaskIDs {
			info := snap.Tasks[taskID]
			ts := res.TaskScores[taskID]
			if info.MaxScore > 0 && ts.Score >= info.MaxScore {
				full[[2]int{i + 1, j + 2}] = true
			}
			row = append(row, fmtScore(ts.Score, info.ScorePrecision))
		}
		row = append(row, fmtScore(res.Score, snap.ScorePrecision))
		rows = append(rows, row)
	}

	t := newTable(headers...).Rows(rows...).StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == headerRow:
			return headerStyle
		case row-1 < len(ids) && row >= 1 && snap.Results[ids[row-1]].Hidden:
			return hiddenStyle
		case full[[2]int{row, col}]:
			return fullStyle
		default:
			return cellStyle
		}
	})
	return t.Render()
}

func renderTasks(tasks []scoredomain.TaskView) string {
	var rows [][]string
	for _, task := range tasks {
		var scoring string
		switch {
		case task.Scoring.ScorePerTestcase != nil && task.Scoring.NumTestcases != nil:
			scoring = fmt.Sprintf("%s: %d x %s", task.Scoring.Type, *task.Scoring.NumTestcases,
				fmtScore(*task.Scoring.ScorePerTestcase, task.ScorePrecision))
		default:
			parts := make([]string, 0, len(task.Scoring.Subtasks))
			for _, st := range task.Scoring.Subtasks {
				parts = append(parts, fmtScore(st.MaxScore, task.ScorePrecision))
			}
			scoring = fmt.Sprintf("%s: %s", task.Scoring.Type, strings.Join(parts, " + "))
		}
		rows = append(rows, []string{
			strconv.FormatInt(task.TaskID, 10),
			task.Name,
			task.Title,
			string(task.ScoreMode),
			scoring,
			fmtScore(task.MaxScore, task.ScorePrecision),
		})
	}
	return newTable("id", "name", "title", "mode", "scoring", "max").Rows(rows...).
		StyleFunc(plainStyle).Render()
}

func renderSubms(subms []scoredomain.SubmView) string {
	var rows [][]string
	for _, s := range subms {
		score := "-"
		if s.Score != nil {
			score = strconv.FormatFloat(*s.Score, 'f', -1, 64)
		}
		official := "yes"
		if !s.Official {
			official = "no"
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Language,
			official,
			string(s.Status),
			score,
		})
	}
	return newTable("id", "time", "language", "official", "status", "score").Rows(rows...).
		StyleFunc(plainStyle).Render()
}

// renderSubmDetail prints one testcase per line, prefixed with its subtask
// for group score types.
func renderSubmDetail(s scoredomain.SubmDetailView) string {
	score := "-"
	if s.Score != nil {
		score = strconv.FormatFloat(*s.Score, 'f', -1, 64)
	}
	summary := fmt.Sprintf("submission %d: %s, score %s", s.ID, s.Status, score)

	tcRow := func(subtask string, n int, tc scoredomain.TestcaseView) []string {
		row := []string{subtask, strconv.Itoa(n), tc.Outcome, "-", "-", strings.Join(tc.Text, " ")}
		if tc.Time != nil {
			row[3] = strconv.FormatFloat(*tc.Time, 'f', 3, 64) + "s"
		}
		if tc.Memory != nil {
			row[4] = strconv.FormatInt(*tc.Memory>>10, 10) + " KiB"
		}
		return row
	}

	var rows [][]string
	n := 0
	for _, tc := range s.Testcases {
		n++
		rows = append(rows, tcRow("-", n, tc))
	}
	for i, st := range s.Subtasks {
		label := fmt.Sprintf("%d (%s/%s)", i+1, strconv.FormatFloat(st.Fraction*st.MaxScore, 'f', -1, 64),
			strconv.FormatFloat(st.MaxScore, 'f', -1, 64))
		for _, tc := range st.Testcases {
			n++
			rows = append(rows, tcRow(label, n, tc))
		}
	}
	if len(rows) == 0 {
		return summary
	}
	return summary + "\n" + newTable("subtask", "testcase", "outcome", "time", "memory", "text").Rows(rows...).
		StyleFunc(plainStyle).Render()
}

func plainStyle(row, col int) lipgloss.Style {
	if row == headerRow {
		return headerStyle
	}
	return cellStyle
}
