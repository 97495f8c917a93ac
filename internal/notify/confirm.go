package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DefaultConfirmationTTL bounds how long an unanswered confirmation stays
// pending.
const DefaultConfirmationTTL = 10 * time.Minute

var ErrUnknownConfirmation = errors.New("confirmation_not_found")

// Prompt describes what the user is asked to confirm.
type Prompt struct {
	Title        string   `json:"title"`
	Message      string   `json:"message"`
	ConfirmLabel string   `json:"confirmLabel"`
	CancelLabel  string   `json:"cancelLabel"`
	Severity     Severity `json:"type"`
}

// Confirmation is a prompt awaiting an answer.
type Confirmation struct {
	ID        string    `json:"id"`
	Prompt    Prompt    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Callback runs once with the user's answer.
type Callback func(ctx context.Context, confirmed bool) error

type ConfirmerParams struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
}

type pending struct {
	confirmation Confirmation
	callback     Callback
}

// Confirmer pairs prompts with the callback that acts on the answer.
type Confirmer struct {
	mu      sync.Mutex
	pending map[string]pending
	order   []string
	ttl     time.Duration
	clock   clock.Clock
	log     *zap.Logger
}

func NewConfirmer(p ConfirmerParams) *Confirmer {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Confirmer{
		pending: make(map[string]pending),
		ttl:     DefaultConfirmationTTL,
		clock:   c,
		log:     log.Named("notify.confirmer"),
	}
}

// Request registers prompt and returns the confirmation the caller shows
// to the user.
func (c *Confirmer) Request(prompt Prompt, cb Callback) Confirmation {
	if prompt.ConfirmLabel == "" {
		prompt.ConfirmLabel = "Confirm"
	}
	if prompt.CancelLabel == "" {
		prompt.CancelLabel = "Cancel"
	}
	if prompt.Severity == "" {
		prompt.Severity = SeverityDanger
	}

	now := c.clock.Now()
	conf := Confirmation{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.pruneLocked(now)
	c.pending[conf.ID] = pending{confirmation: conf, callback: cb}
	c.order = append(c.order, conf.ID)
	c.mu.Unlock()

	c.log.Debug("confirmation requested", zap.String("confirmation_id", conf.ID), zap.String("title", prompt.Title))
	return conf
}

// Resolve answers the confirmation with id and runs its callback. A
// confirmation is resolved at most once.
func (c *Confirmer) Resolve(ctx context.Context, id string, confirmed bool) error {
	now := c.clock.Now()

	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		c.remove(id)
	}
	c.mu.Unlock()

	if !ok || !now.Before(p.confirmation.ExpiresAt) {
		return ErrUnknownConfirmation
	}

	c.log.Info("confirmation resolved",
		zap.String("confirmation_id", id),
		zap.Bool("confirmed", confirmed),
	)
	if p.callback == nil {
		return nil
	}
	return p.callback(ctx, confirmed)
}

// Pending returns unexpired confirmations in request order.
func (c *Confirmer) Pending() []Confirmation {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(now)

	out := make([]Confirmation, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.pending[id].confirmation)
	}
	return out
}

// pruneLocked drops confirmations expired at now without running their
// callbacks. mu must be held.
func (c *Confirmer) pruneLocked(now time.Time) {
	kept := c.order[:0:0]
	for _, id := range c.order {
		if !now.Before(c.pending[id].confirmation.ExpiresAt) {
			delete(c.pending, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
}

// remove must be called with mu held.
func (c *Confirmer) remove(id string) {
	delete(c.pending, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
}
