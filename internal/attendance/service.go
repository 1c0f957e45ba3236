package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"absensi/internal/notify"
	"absensi/internal/ratelimit"
)

// Submission outcomes that are expected control flow, not faults.
var (
	ErrRateLimited  = errors.New("too fast, wait a moment")
	ErrNameRequired = errors.New("name is required")
)

// Submission is one incoming attendance form.
type Submission struct {
	Name     string
	Class    string
	Status   string
	Honeypot string
	Address  string
}

// Service runs the attendance write path: honeypot, throttle, validate,
// persist, notify, publish.
type Service struct {
	repo     *Repository
	limiter  ratelimit.Limiter
	notifier notify.Notifier
	feed     *Feed
	triggers map[string]bool
	now      func() time.Time
}

// NewService wires the write path. triggerStatuses are matched
// case-insensitively against the submitted status.
func NewService(repo *Repository, limiter ratelimit.Limiter, notifier notify.Notifier, feed *Feed, triggerStatuses []string) *Service {
	triggers := make(map[string]bool, len(triggerStatuses))
	for _, s := range triggerStatuses {
		triggers[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return &Service{
		repo:     repo,
		limiter:  limiter,
		notifier: notifier,
		feed:     feed,
		triggers: triggers,
		now:      time.Now,
	}
}

// Submit processes one submission. A nil record with nil error means the
// honeypot tripped and the event was silently discarded. Side effects run
// in a fixed order: rate-limit state, then insert, then notification; the
// rate slot is consumed before any downstream work so slow inserts cannot
// be used to slip past the throttle.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Record, error) {
	if sub.Honeypot != "" {
		return nil, nil
	}

	if !s.limiter.Allow(ctx, sub.Address) {
		return nil, ErrRateLimited
	}

	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	rec := Record{
		Name:        name,
		Class:       strings.TrimSpace(sub.Class),
		Status:      strings.TrimSpace(sub.Status),
		SubmittedAt: s.now().Format(TimeLayout),
		Address:     sub.Address,
	}

	rec, err := s.repo.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert attendance: %w", err)
	}

	if s.triggers[strings.ToLower(rec.Status)] {
		msg := fmt.Sprintf("[ABSENSI]\n%s | %s | %s | %s", rec.Name, rec.Class, rec.Status, rec.SubmittedAt)
		if !s.notifier.Send(ctx, msg) {
			// Best effort only; the record is already in.
			log.Printf("notification dropped for %q (%s)", rec.Name, rec.Status)
		}
	}

	if s.feed != nil {
		s.feed.Publish(rec)
	}
	return &rec, nil
}
