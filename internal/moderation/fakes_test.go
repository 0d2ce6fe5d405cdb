package moderation

import (
	"context"
	"errors"
	"sync"
)

type platformCall struct {
	Op      string
	GuildID string
	UserID  string
	Reason  string
}

type fakePlatform struct {
	mu    sync.Mutex
	calls []platformCall
	err   error
}

func (p *fakePlatform) record(c platformCall) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
	return p.err
}

func (p *fakePlatform) Ban(_ context.Context, guildID, userID, reason string) error {
	return p.record(platformCall{"ban", guildID, userID, reason})
}

func (p *fakePlatform) Kick(_ context.Context, guildID, userID, reason string) error {
	return p.record(platformCall{"kick", guildID, userID, reason})
}

func (p *fakePlatform) Unban(_ context.Context, guildID, userID string) error {
	return p.record(platformCall{"unban", guildID, userID, ""})
}

func (p *fakePlatform) Calls() []platformCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]platformCall(nil), p.calls...)
}

type fakeDM struct {
	mu      sync.Mutex
	sent    map[string][]Notice
	openErr error
	block   chan struct{}
}

func newFakeDM() *fakeDM { return &fakeDM{sent: map[string][]Notice{}} }

func (d *fakeDM) OpenDM(_ context.Context, userID string) (string, error) {
	if d.block != nil {
		<-d.block
	}
	if d.openErr != nil {
		return "", d.openErr
	}
	return "dm-" + userID, nil
}

func (d *fakeDM) SendNotice(_ context.Context, channelID string, n Notice) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent[channelID] = append(d.sent[channelID], n)
	return nil
}

func (d *fakeDM) Sent(channelID string) []Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Notice(nil), d.sent[channelID]...)
}

var errMissingPermissions = errors.New("HTTP 403 Forbidden, Missing Permissions")
