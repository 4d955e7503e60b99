package notify

import (
	"context"

	"go.uber.org/zap"
)

type fallbackNotifier struct {
	logger *zap.Logger
}

// NewFallback returns a Notifier that only logs. Used when no broker URL is
// configured so the engines can still run end to end.
func NewFallback(logger *zap.Logger) Notifier {
	return &fallbackNotifier{logger: logger}
}

func (n *fallbackNotifier) Enqueue(ctx context.Context, msg Message) error {
	n.logger.Warn("fallback notifier: skipped enqueue",
		zap.String("kind", string(msg.Kind)),
		zap.String("item_id", msg.ItemID),
		zap.String("target_agent_id", msg.TargetAgentID))
	return nil
}

func (n *fallbackNotifier) Close() error {
	return nil
}
