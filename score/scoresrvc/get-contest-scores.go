package scoresrvc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorecache"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	decorator "github.com/austrian-olympiad-informatics/aoi-portal/srvccqs"
	"golang.org/x/sync/singleflight"
)

type GetContestScoresQuery decorator.QueryHandler[GetContestScoresParams, *scoredomain.Snapshot]

func NewGetContestScoresQuery(
	cache *scorecache.Cache,
	loadContest func(ctx context.Context, contestID int64) (scoredomain.ContestInput, error),
) GetContestScoresQuery {
	return getContestScoresHandler{
		cache:       cache,
		loadContest: loadContest,
		sfGroup:     &singleflight.Group{},
	}
}

type GetContestScoresParams struct {
	ContestID int64
}

type getContestScoresHandler struct {
	cache *scorecache.Cache

	// load everything the contest's standings are computed from
	loadContest func(ctx context.Context, contestID int64) (scoredomain.ContestInput, error)

	// collapses concurrent recomputations of one contest
	sfGroup *singleflight.Group
}

// Handle serves the cached snapshot, recomputing it when absent or stale.
// The returned snapshot is shared and must not be modified.
func (h getContestScoresHandler) Handle(ctx context.Context, p GetContestScoresParams) (*scoredomain.Snapshot, error) {
	if snap, ok := h.cache.Get(p.ContestID); ok {
		return snap, nil
	}

	res, err, _ := h.sfGroup.Do(strconv.FormatInt(p.ContestID, 10), func() (interface{}, error) {
		// another caller may have filled the cache while we waited
		if snap, ok := h.cache.Get(p.ContestID); ok {
			return snap, nil
		}

		gen := h.cache.Generation(p.ContestID)

		// shared by every waiter, so one caller going away must not abort it
		in, err := h.loadContest(context.WithoutCancel(ctx), p.ContestID)
		if err != nil {
			return nil, fmt.Errorf("failed to load contest %d: %w", p.ContestID, err)
		}
		snap, err := scoredomain.CalcContestScores(in)
		if err != nil {
			return nil, mapConfigError(fmt.Errorf("failed to score contest %d: %w", p.ContestID, err))
		}

		if !h.cache.PutIfUnchanged(p.ContestID, snap, gen) {
			// an invalidation raced the load; the next read loads again
			logger.FromContext(ctx).Debug("discarded contest snapshot",
				"contest_id", p.ContestID)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*scoredomain.Snapshot), nil
}
