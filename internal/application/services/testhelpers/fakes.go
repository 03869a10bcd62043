package testhelpers

import (
	"context"
	"sync"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
)

// MemoryVault is a TokenVault kept in a map.
type MemoryVault struct {
	mu     sync.Mutex
	tokens map[string]domain.PaymentToken
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{tokens: make(map[string]domain.PaymentToken)}
}

func (v *MemoryVault) Get(_ context.Context, customerID string) (*domain.PaymentToken, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	token, ok := v.tokens[customerID]
	if !ok {
		return nil, application.ErrTokenNotFound
	}
	return &token, nil
}

func (v *MemoryVault) Put(_ context.Context, token domain.PaymentToken) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token.CustomerID] = token
	return nil
}

func (v *MemoryVault) Forget(_ context.Context, customerID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tokens, customerID)
	return nil
}

// RecordingNotifier keeps every notice it is handed.
type RecordingNotifier struct {
	mu        sync.Mutex
	notices   []application.TransitionNotice
	reminders []domain.ReminderTarget
}

func (n *RecordingNotifier) NotifyTransition(notice application.TransitionNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *RecordingNotifier) NotifyReminder(target domain.ReminderTarget) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, target)
}

// Targets lists the statuses notified so far, in order.
func (n *RecordingNotifier) Targets() []domain.EnrollmentStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.EnrollmentStatus, 0, len(n.notices))
	for _, notice := range n.notices {
		out = append(out, notice.Transition.To)
	}
	return out
}

func (n *RecordingNotifier) Reminders() []domain.ReminderTarget {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.ReminderTarget(nil), n.reminders...)
}
