package scorenotify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

const MsgTypeParticipationScored = "participation_scored"

// ScoredMsg is published by the grading system whenever a submission result of
// a participation changes.
type ScoredMsg struct {
	MsgType         string `json:"msg_type"`
	ParticipationID int64  `json:"participation_id"`
}

type Invalidator interface {
	InvalidateParticipation(ctx context.Context, partID int64) error
}

func DecodeScoredMsg(body []byte) (ScoredMsg, error) {
	var msg ScoredMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return ScoredMsg{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.MsgType != MsgTypeParticipationScored {
		return ScoredMsg{}, fmt.Errorf("unexpected msg_type %q", msg.MsgType)
	}
	if msg.ParticipationID <= 0 {
		return ScoredMsg{}, fmt.Errorf("invalid participation_id %d", msg.ParticipationID)
	}
	return msg, nil
}

// handleBody decodes one message and invalidates its participation. Failures
// are logged and dropped; the next notification or cache expiry repairs them.
func handleBody(ctx context.Context, inv Invalidator, logger *slog.Logger, body []byte) {
	msg, err := DecodeScoredMsg(body)
	if err != nil {
		logger.Error("dropping notification", "error", err, "body", string(body))
		return
	}
	if err := inv.InvalidateParticipation(ctx, msg.ParticipationID); err != nil {
		logger.Warn("failed to invalidate participation",
			"participation_id", msg.ParticipationID, "error", err)
		return
	}
	logger.Debug("participation invalidated", "participation_id", msg.ParticipationID)
}
