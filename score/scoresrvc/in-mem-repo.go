package scoresrvc

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
)

type inMemSubm struct {
	partID int64
	taskID int64
	rec    scoredomain.SubmRecord
}

// InMemRepo keeps a contest mirror in memory. It backs tests and the server's
// -inmem mode.
type InMemRepo struct {
	mu       sync.RWMutex
	contests map[int64]scoredomain.Contest
	// tasks by contest id
	tasks map[int64][]scoredomain.Task
	parts map[int64]scoredomain.Participation
	subms map[int64]inMemSubm
}

var _ Repo = (*InMemRepo)(nil)

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{
		contests: make(map[int64]scoredomain.Contest),
		tasks:    make(map[int64][]scoredomain.Task),
		parts:    make(map[int64]scoredomain.Participation),
		subms:    make(map[int64]inMemSubm),
	}
}

func (r *InMemRepo) AddContest(c scoredomain.Contest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contests[c.ID] = c
}

func (r *InMemRepo) AddTask(contestID int64, t scoredomain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[contestID] = append(r.tasks[contestID], t)
}

func (r *InMemRepo) AddParticipation(p scoredomain.Participation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[p.ID] = p
}

func (r *InMemRepo) AddSubm(partID int64, taskID int64, rec scoredomain.SubmRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subms[rec.ID] = inMemSubm{partID: partID, taskID: taskID, rec: rec}
}

// SetResult replaces the result of an existing submission.
func (r *InMemRepo) SetResult(submID int64, res scoredomain.SubmissionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subms[submID]
	if !ok {
		return fmt.Errorf("submission %d does not exist", submID)
	}
	s.rec.Result = &res
	r.subms[submID] = s
	return nil
}

func (r *InMemRepo) GetContestInput(ctx context.Context, contestID int64) (scoredomain.ContestInput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contest, ok := r.contests[contestID]
	if !ok {
		return scoredomain.ContestInput{}, NewErrContestNotFound()
	}
	in := scoredomain.ContestInput{
		Contest: contest,
		Tasks:   slices.Clone(r.tasks[contestID]),
		Counts:  make(map[scoredomain.PartTaskKey]int),
	}
	for _, p := range r.parts {
		if p.ContestID == contestID {
			in.Participations = append(in.Participations, p)
		}
	}
	slices.SortFunc(in.Participations, func(a, b scoredomain.Participation) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for _, s := range r.sortedSubms() {
		p, ok := r.parts[s.partID]
		if !ok || p.ContestID != contestID || !s.rec.Official {
			continue
		}
		in.Counts[scoredomain.PartTaskKey{ParticipationID: s.partID, TaskID: s.taskID}]++
		if s.rec.Result != nil {
			in.Rows = append(in.Rows, toRow(s))
		}
	}
	return in, nil
}

func (r *InMemRepo) GetParticipation(ctx context.Context, partID int64) (scoredomain.Participation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parts[partID]
	if !ok {
		return scoredomain.Participation{}, NewErrParticipationNotFound()
	}
	return p, nil
}

func (r *InMemRepo) GetParticipationInput(ctx context.Context, partID int64) (scoredomain.ParticipationInput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parts[partID]
	if !ok {
		return scoredomain.ParticipationInput{}, NewErrParticipationNotFound()
	}
	in := scoredomain.ParticipationInput{
		Participation: p,
		Counts:        make(map[int64]int),
	}
	for _, s := range r.sortedSubms() {
		if s.partID != partID || !s.rec.Official {
			continue
		}
		in.Counts[s.taskID]++
		if s.rec.Result != nil {
			in.Rows = append(in.Rows, toRow(s))
		}
	}
	return in, nil
}

func (r *InMemRepo) ListTaskSubms(ctx context.Context, partID int64, taskID int64) ([]scoredomain.SubmRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parts[partID]
	if !ok {
		return nil, NewErrParticipationNotFound()
	}
	if !slices.ContainsFunc(r.tasks[p.ContestID], func(t scoredomain.Task) bool { return t.ID == taskID }) {
		return nil, NewErrTaskNotFound()
	}

	var res []scoredomain.SubmRecord
	for _, s := range r.sortedSubms() {
		if s.partID == partID && s.taskID == taskID {
			res = append(res, s.rec)
		}
	}
	slices.Reverse(res)
	return res, nil
}

func (r *InMemRepo) GetTaskSubm(ctx context.Context, partID int64, taskID int64, submID int64) (scoredomain.SubmRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parts[partID]
	if !ok {
		return scoredomain.SubmRecord{}, NewErrParticipationNotFound()
	}
	if !slices.ContainsFunc(r.tasks[p.ContestID], func(t scoredomain.Task) bool { return t.ID == taskID }) {
		return scoredomain.SubmRecord{}, NewErrTaskNotFound()
	}
	s, ok := r.subms[submID]
	if !ok || s.partID != partID || s.taskID != taskID {
		return scoredomain.SubmRecord{}, NewErrSubmissionNotFound()
	}
	return s.rec, nil
}

// sortedSubms orders submissions by timestamp, then id. Callers hold mu.
func (r *InMemRepo) sortedSubms() []inMemSubm {
	res := make([]inMemSubm, 0, len(r.subms))
	for _, s := range r.subms {
		res = append(res, s)
	}
	slices.SortFunc(res, func(a, b inMemSubm) int {
		if c := a.rec.Timestamp.Compare(b.rec.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.rec.ID, b.rec.ID)
	})
	return res
}

func toRow(s inMemSubm) scoredomain.ResultRow {
	return scoredomain.ResultRow{
		SubmissionID:    s.rec.ID,
		ParticipationID: s.partID,
		TaskID:          s.taskID,
		Result:          *s.rec.Result,
	}
}
