package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"byteguard/internal/metrics"
)

// NoticeField is one name/value row of a Notice.
type NoticeField struct {
	Name   string
	Value  string
	Inline bool
}

// Notice is the content of a direct message sent to an affected user.
type Notice struct {
	Title       string
	Description string
	Color       int
	Fields      []NoticeField
	Footer      string
}

// DMSender opens direct channels and posts notices to them.
type DMSender interface {
	OpenDM(ctx context.Context, userID string) (string, error)
	SendNotice(ctx context.Context, channelID string, n Notice) error
}

const notifyTimeout = 15 * time.Second

// Notifier delivers notices without blocking the caller. Failures are logged
// and never reach the command that triggered them.
type Notifier struct {
	sender DMSender
	log    zerolog.Logger
	wg     sync.WaitGroup
}

func NewNotifier(sender DMSender, log zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, log: log.With().Str("component", "notifier").Logger()}
}

// Notify sends n to userID in the background. The delivery is detached from
// ctx cancellation but keeps its values.
func (n *Notifier) Notify(ctx context.Context, userID string, notice Notice) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		err := n.deliver(ctx, userID, notice)
		metrics.Notifications.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			n.log.Debug().Err(err).Str("user", userID).Msg("could not deliver notice")
			return
		}
		n.log.Debug().Str("user", userID).Str("title", notice.Title).Msg("notice delivered")
	}()
}

func (n *Notifier) deliver(ctx context.Context, userID string, notice Notice) error {
	channelID, err := n.sender.OpenDM(ctx, userID)
	if err != nil {
		return err
	}
	return n.sender.SendNotice(ctx, channelID, notice)
}

// Wait blocks until in-flight notices finish or timeout elapses.
// It reports whether everything finished.
func (n *Notifier) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
