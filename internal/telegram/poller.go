package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller drives long polling and hands each update to a handler. It is
// the counterpart of webhook mode; only one of the two runs at a time.
type Poller struct {
	client  *Client
	handler func(ctx context.Context, upd Update)
	log     *zap.Logger
}

func NewPoller(client *Client, handler func(ctx context.Context, upd Update), log *zap.Logger) *Poller {
	return &Poller{client: client, handler: handler, log: log}
}

func (p *Poller) Run(ctx context.Context) {
	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}
		updates, err := p.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn("getUpdates failed", zap.Error(err))
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			p.handler(ctx, upd)
		}
	}
}
