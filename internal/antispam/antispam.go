// Package antispam gates conversational messages before they reach the
// model. The check is pluggable; the default is a per-(chat,user) flood
// window.
package antispam

import (
	"context"
	"sync"
	"time"
)

// Gate reports whether a message should be suppressed. A non-nil error
// means the gate could not decide; callers treat that as not blocked.
type Gate interface {
	Check(ctx context.Context, chatID, userID int64, text string) (blocked bool, err error)
}

// Nop never blocks.
type Nop struct{}

func (Nop) Check(context.Context, int64, int64, string) (bool, error) { return false, nil }

// WarningSink records a spam warning for a user. Implemented by the
// settings store; failures are reported but do not change the verdict.
type WarningSink interface {
	AddWarning(ctx context.Context, chatID, userID int64) (int, error)
}

// Flood blocks when a (chat, user) pair sends more than MaxMessages within
// Window. Blocked messages add a warning through the sink when one is set.
type Flood struct {
	Window      time.Duration
	MaxMessages int
	Warnings    WarningSink

	now func() time.Time

	mu   sync.Mutex
	seen map[floodKey][]time.Time
}

type floodKey struct {
	ChatID int64
	UserID int64
}

func NewFlood(window time.Duration, maxMessages int, warnings WarningSink) *Flood {
	if window <= 0 {
		window = 10 * time.Second
	}
	if maxMessages <= 0 {
		maxMessages = 5
	}
	return &Flood{
		Window:      window,
		MaxMessages: maxMessages,
		Warnings:    warnings,
		now:         time.Now,
		seen:        make(map[floodKey][]time.Time),
	}
}

func (f *Flood) Check(ctx context.Context, chatID, userID int64, text string) (bool, error) {
	now := f.now()
	cutoff := now.Add(-f.Window)
	k := floodKey{chatID, userID}

	f.mu.Lock()
	stamps := f.seen[k]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	f.seen[k] = kept
	over := len(kept) > f.MaxMessages
	f.mu.Unlock()

	if !over {
		return false, nil
	}
	if f.Warnings != nil {
		if _, err := f.Warnings.AddWarning(ctx, chatID, userID); err != nil {
			return true, err
		}
	}
	return true, nil
}
