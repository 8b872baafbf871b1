package notifier_test

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/notifier"
	"github.com/versewell/library-service/pkg/kafka"
)

// rebalancingGroup imitates the broker driving several consecutive sessions
// against the same handler, as sarama does on every rebalance.
type rebalancingGroup struct {
	sessions int
	stopAt   int
	cancel   context.CancelFunc
}

func (g *rebalancingGroup) Consume(_ context.Context, _ []string, handler sarama.ConsumerGroupHandler) error {
	g.sessions++
	if err := handler.Setup(nil); err != nil {
		return err
	}
	if err := handler.Cleanup(nil); err != nil {
		return err
	}
	if g.sessions >= g.stopAt {
		g.cancel()
	}
	return nil
}

func (g *rebalancingGroup) Errors() <-chan error        { return nil }
func (g *rebalancingGroup) Close() error                { return nil }
func (g *rebalancingGroup) Pause(_ map[string][]int32)  {}
func (g *rebalancingGroup) Resume(_ map[string][]int32) {}
func (g *rebalancingGroup) PauseAll()                   {}
func (g *rebalancingGroup) ResumeAll()                  {}

func TestConsumer_SurvivesRebalance(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := notifier.NewConsumer(func(context.Context, kafka.EventNotify) error {
		return nil
	}, zap.NewExample())

	group := &rebalancingGroup{stopAt: 3, cancel: cancel}
	err := kafka.Consume(ctx, group, consumer, kafka.NotifyTopic)

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, group.sessions)
}
