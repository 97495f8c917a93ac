// Package notify holds user-facing notifications and pending confirmations.
// Both services are passed explicitly to the handlers that need them.
package notify

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// DefaultDuration applies when a toast is shown without a duration.
const DefaultDuration = 5 * time.Second

// Toast is a transient notification. A negative Duration keeps the toast
// until it is dismissed.
type Toast struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
}

type ToasterParams struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
}

// Toaster keeps the active toasts in display order. Expired toasts are
// pruned on every read and write.
type Toaster struct {
	mu     sync.Mutex
	toasts []Toast
	clock  clock.Clock
	log    *zap.Logger
}

func NewToaster(p ToasterParams) *Toaster {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Toaster{clock: c, log: log.Named("notify.toaster")}
}

// Show stores t and returns it with its id and expiry filled in.
func (t *Toaster) Show(toast Toast) Toast {
	now := t.clock.Now()
	toast.ID = uuid.NewString()
	toast.Title = strings.TrimSpace(toast.Title)
	if toast.Kind == "" {
		toast.Kind = KindInfo
	}
	if toast.Duration == 0 {
		toast.Duration = DefaultDuration
	}
	toast.CreatedAt = now
	if toast.Duration > 0 {
		expires := now.Add(toast.Duration)
		toast.ExpiresAt = &expires
	}

	t.mu.Lock()
	t.pruneLocked(now)
	t.toasts = append(t.toasts, toast)
	t.mu.Unlock()

	t.log.Debug("toast shown", zap.String("toast_id", toast.ID), zap.String("kind", string(toast.Kind)))
	return toast
}

func (t *Toaster) Success(title, message string) Toast {
	return t.Show(Toast{Kind: KindSuccess, Title: title, Message: message})
}

func (t *Toaster) Error(title, message string) Toast {
	return t.Show(Toast{Kind: KindError, Title: title, Message: message})
}

func (t *Toaster) Warning(title, message string) Toast {
	return t.Show(Toast{Kind: KindWarning, Title: title, Message: message})
}

func (t *Toaster) Info(title, message string) Toast {
	return t.Show(Toast{Kind: KindInfo, Title: title, Message: message})
}

// Dismiss removes the toast with id and reports whether it was active.
func (t *Toaster) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, toast := range t.toasts {
		if toast.ID == id {
			t.toasts = append(t.toasts[:i:i], t.toasts[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Toaster) Clear() {
	t.mu.Lock()
	t.toasts = nil
	t.mu.Unlock()
}

// Active returns unexpired toasts, oldest first.
func (t *Toaster) Active() []Toast {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(now)

	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// pruneLocked drops toasts expired at now. mu must be held.
func (t *Toaster) pruneLocked(now time.Time) {
	kept := t.toasts[:0:0]
	for _, toast := range t.toasts {
		if toast.ExpiresAt != nil && !now.Before(*toast.ExpiresAt) {
			continue
		}
		kept = append(kept, toast)
	}
	t.toasts = kept
}
