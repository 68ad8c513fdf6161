// Package feedback validates and acknowledges messages sent through the site's
// feedback form. Delivery is simulated: accepted messages are logged and receive
// a reference id.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxMessageLength bounds the message body in runes.
const MaxMessageLength = 5000

// ErrRateLimited is returned when a client submits too often.
var ErrRateLimited = errors.New("feedback: rate limited")

// Submission is one form post.
type Submission struct {
	Name    string
	Email   string
	Message string
}

// Normalize trims every field.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Message: strings.TrimSpace(s.Message),
	}
}

// ValidationError lists the invalid fields with a reason each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "feedback: invalid " + strings.Join(parts, ", ")
}

// Validate checks a normalized submission.
func Validate(s Submission) error {
	fields := map[string]string{}
	if s.Name == "" {
		fields["name"] = "is required"
	}
	switch {
	case s.Email == "":
		fields["email"] = "is required"
	case !validEmail(s.Email):
		fields["email"] = "is not an address"
	}
	switch {
	case s.Message == "":
		fields["message"] = "is required"
	case utf8.RuneCountInString(s.Message) > MaxMessageLength:
		fields["message"] = fmt.Sprintf("exceeds %d characters", MaxMessageLength)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	return err == nil && addr.Address == v
}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	ID         string
	ReceivedAt time.Time
}

// Service accepts submissions.
type Service struct {
	limiter *rateLimiter
	logger  *zap.Logger
	clock   func() time.Time
	newID   func() string
}

// Option customises a Service.
type Option func(*Service)

// WithRateLimit allows limit submissions per key within window. A non-positive
// limit disables limiting.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Service) {
		s.limiter = newRateLimiter(limit, window, s.clock)
	}
}

// WithLogger sets the logger receiving accepted submissions.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
			if s.limiter != nil {
				s.limiter.clock = clock
			}
		}
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		logger: zap.NewNop(),
		clock:  time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates sub and records it for recipient. key identifies the client
// for rate limiting, typically its address.
func (s *Service) Submit(ctx context.Context, key, recipient string, sub Submission) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	sub = sub.Normalize()
	if err := Validate(sub); err != nil {
		return Receipt{}, err
	}
	if !s.limiter.Allow(key) {
		s.logger.Info("feedback rate limited", zap.String("client", key))
		return Receipt{}, ErrRateLimited
	}
	r := Receipt{ID: s.newID(), ReceivedAt: s.clock()}
	s.logger.Info("feedback received",
		zap.String("reference", r.ID),
		zap.String("recipient", recipient),
		zap.String("from", sub.Email),
		zap.Int("length", utf8.RuneCountInString(sub.Message)),
	)
	return r, nil
}

type rateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time
	mu     sync.Mutex
	store  map[string]rateEntry
}

type rateEntry struct {
	count int
	reset time.Time
}

func newRateLimiter(limit int, window time.Duration, clock func() time.Time) *rateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &rateLimiter{
		limit:  limit,
		window: window,
		clock:  clock,
		store:  make(map[string]rateEntry),
	}
}

// Allow counts one attempt for key within the current window.
func (l *rateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.store[key]
	if !ok || now.After(entry.reset) {
		l.store[key] = rateEntry{count: 1, reset: now.Add(l.window)}
		l.pruneExpiredLocked(now)
		return true
	}
	if entry.count >= l.limit {
		return false
	}
	entry.count++
	l.store[key] = entry
	return true
}

func (l *rateLimiter) pruneExpiredLocked(now time.Time) {
	for key, entry := range l.store {
		if now.After(entry.reset) {
			delete(l.store, key)
		}
	}
}
