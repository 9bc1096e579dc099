package scoresrvc

import (
	"context"
	"fmt"

	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorecache"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	decorator "github.com/austrian-olympiad-informatics/aoi-portal/srvccqs"
)

type InvalidatePartCmd decorator.CmdHandler[InvalidatePartParams]

func NewInvalidatePartCmd(
	cache *scorecache.Cache,
	getPart func(ctx context.Context, partID int64) (scoredomain.Participation, error),
	loadPart func(ctx context.Context, partID int64) (scoredomain.ParticipationInput, error),
) InvalidatePartCmd {
	return invalidatePartHandler{
		cache:    cache,
		getPart:  getPart,
		loadPart: loadPart,
	}
}

type InvalidatePartParams struct {
	ParticipationID int64
}

type invalidatePartHandler struct {
	cache *scorecache.Cache

	// find the contest the participation belongs to
	getPart func(ctx context.Context, partID int64) (scoredomain.Participation, error)

	// load the participation's own submissions and counts
	loadPart func(ctx context.Context, partID int64) (scoredomain.ParticipationInput, error)
}

// Handle recomputes a single participant inside the contest's cached snapshot
// and re-ranks the contest. Without a live snapshot there is nothing to fix:
// the next read recomputes everything anyway.
func (h invalidatePartHandler) Handle(ctx context.Context, p InvalidatePartParams) error {
	part, err := h.getPart(ctx, p.ParticipationID)
	if err != nil {
		return err
	}

	patched, err := h.cache.Patch(ctx, part.ContestID, func(snap *scoredomain.Snapshot) (*scoredomain.Snapshot, error) {
		in, err := h.loadPart(ctx, part.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load participation %d: %w", part.ID, err)
		}
		snap.ReplaceParticipation(in)
		return snap, nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Debug("participation invalidated",
		"participation_id", part.ID,
		"contest_id", part.ContestID,
		"patched", patched)
	return nil
}
