package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorecache"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSrvc() *scoresrvc.ScoreSrvc {
	return scoresrvc.NewScoreSrvc(scoresrvc.NewDemoRepo(), scorecache.New(time.Minute))
}

func TestRenderStandings(t *testing.T) {
	ctx := context.Background()
	snap, err := demoSrvc().GetContestScores.Handle(ctx, scoresrvc.GetContestScoresParams{ContestID: scoresrvc.DemoContestID})
	require.NoError(t, err)

	out := renderStandings(snap, false)
	assert.Contains(t, out, "stones")
	assert.Contains(t, out, "bridges")
	assert.Contains(t, out, "175.00")
	assert.NotContains(t, out, " - ")
	assert.Less(t, strings.Index(out, "175.00"), strings.Index(out, "150.00"))

	withHidden := renderStandings(snap, true)
	assert.Contains(t, withHidden, " - ")
	assert.Greater(t, strings.Count(withHidden, "\n"), strings.Count(out, "\n"))
}

func TestRenderTasksAndSubms(t *testing.T) {
	ctx := context.Background()
	srvc := demoSrvc()

	tasks, err := srvc.GetContestTasks(ctx, scoresrvc.DemoContestID)
	require.NoError(t, err)
	out := renderTasks(tasks)
	assert.Contains(t, out, "sum: 20 x 5.00")
	assert.Contains(t, out, "group_min: 20.00 + 30.00 + 50.00")

	subms, err := srvc.ListTaskSubms.Handle(ctx, scoresrvc.ListTaskSubmsParams{ParticipationID: 3, TaskID: 1})
	require.NoError(t, err)
	out = renderSubms(subms)
	assert.Contains(t, out, "compilation_failed")
	assert.Contains(t, out, "35")
	assert.Less(t, strings.Index(out, "scored"), strings.Index(out, "compilation_failed"))
}

func TestRenderSubmDetail(t *testing.T) {
	ctx := context.Background()
	srvc := demoSrvc()

	subm, err := srvc.GetSubm.Handle(ctx, scoresrvc.GetSubmParams{ParticipationID: 1, TaskID: 2, SubmissionID: 4})
	require.NoError(t, err)
	out := renderSubmDetail(subm)
	assert.Contains(t, out, "submission 4: scored, score 55")
	assert.Contains(t, out, "1 (0/20)")
	assert.Contains(t, out, "3 (25/50)")
	assert.Contains(t, out, "0.050s")
	assert.Contains(t, out, "1024 KiB")
	assert.Equal(t, 3, strings.Count(out, "Not correct"))

	subm, err = srvc.GetSubm.Handle(ctx, scoresrvc.GetSubmParams{ParticipationID: 3, TaskID: 1, SubmissionID: 8})
	require.NoError(t, err)
	out = renderSubmDetail(subm)
	assert.Equal(t, 7, strings.Count(out, "Output is correct"))
	assert.Equal(t, 13, strings.Count(out, "Not correct"))

	subm, err = srvc.GetSubm.Handle(ctx, scoresrvc.GetSubmParams{ParticipationID: 3, TaskID: 1, SubmissionID: 7})
	require.NoError(t, err)
	assert.Equal(t, "submission 7: compilation_failed, score -", renderSubmDetail(subm))
}
