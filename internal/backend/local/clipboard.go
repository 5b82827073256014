package local

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"golang.org/x/time/rate"

	"vanta/internal/logging"
)

// SystemClipboard writes to the host clipboard
type SystemClipboard struct{}

// WriteAll replaces the clipboard contents
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// clipboardPoller copies new host clipboard text into the store
type clipboardPoller struct {
	store    *Store
	read     func() (string, error)
	interval time.Duration
	keep     int

	errLog rate.Sometimes
	last   string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newClipboardPoller(store *Store, read func() (string, error), interval time.Duration, keep int) *clipboardPoller {
	if read == nil {
		read = clipboard.ReadAll
	}
	return &clipboardPoller{
		store:    store,
		read:     read,
		interval: interval,
		keep:     keep,
		errLog:   rate.Sometimes{Interval: time.Minute},
	}
}

func (p *clipboardPoller) start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

func (p *clipboardPoller) stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// poll captures the clipboard when it changed since the last poll
func (p *clipboardPoller) poll(ctx context.Context) {
	text, err := p.read()
	if err != nil {
		p.errLog.Do(func() { logging.Warn("clipboard read failed", "error", err) })
		return
	}
	if strings.TrimSpace(text) == "" || text == p.last {
		return
	}
	p.last = text

	if _, err := p.store.AddClipboard(ctx, text, p.keep); err != nil {
		p.errLog.Do(func() { logging.Warn("clipboard capture failed", "error", err) })
	}
}
