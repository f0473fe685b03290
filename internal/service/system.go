package service

import (
	"context"
	"sync"
	"time"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/logger"
	"devicepool-backend/internal/repository"

	"github.com/google/uuid"
)

// subscriber is the hub-side handle for one live subscription. The inbox is
// buffered; the pump goroutine drains it into the outbound channel so a slow
// consumer never blocks the publisher.
type subscriber struct {
	id    uuid.UUID
	inbox chan domain.StatusEvent
	done  chan struct{}
}

// Subscription is the consumer-side handle. Events yields the snapshot
// first, then change and heartbeat events in FIFO order until Close.
type Subscription struct {
	id        uuid.UUID
	events    chan domain.StatusEvent
	svc       *systemService
	closeOnce sync.Once
}

// Events returns the event stream. The channel is closed on Close or when
// the subscribing context is cancelled.
func (s *Subscription) Events() <-chan domain.StatusEvent {
	return s.events
}

// Close unsubscribes. Safe to call more than once; other subscribers are
// unaffected.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.svc.unsubscribe(s.id)
	})
}

type systemService struct {
	configRepo repository.SystemConfigRepository
	emailSvc   EmailService // nil when notices are disabled
	heartbeat  time.Duration
	buffer     int

	mu            sync.RWMutex
	subs          map[uuid.UUID]*subscriber
	lastEffective *bool // last broadcast-relevant derivation, nil until known
	closed        bool
}

func NewSystemService(configRepo repository.SystemConfigRepository, emailSvc EmailService, heartbeat time.Duration, buffer int) SystemService {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	if buffer <= 0 {
		buffer = 16
	}
	return &systemService{
		configRepo: configRepo,
		emailSvc:   emailSvc,
		heartbeat:  heartbeat,
		buffer:     buffer,
		subs:       make(map[uuid.UUID]*subscriber),
	}
}

func (s *systemService) GetStatus(ctx context.Context) (*domain.SystemStatus, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.StatusAt(time.Now()), nil
}

func (s *systemService) GetConfig(ctx context.Context) (*domain.SystemConfig, error) {
	return s.configRepo.Get(ctx)
}

// UpdateConfig persists the new configuration and broadcasts exactly one
// change event iff the effective test mode flipped. Message- or window-only
// edits that leave the derived flag unchanged notify nobody; that is
// deliberate policy, not an oversight.
func (s *systemService) UpdateConfig(ctx context.Context, params UpdateSystemConfigParams) (*domain.SystemConfig, bool, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, false, err
	}

	start, err := parseOptionalDate("testStartDate", params.TestStartDate)
	if err != nil {
		return nil, false, err
	}
	end, err := parseOptionalDate("testEndDate", params.TestEndDate)
	if err != nil {
		return nil, false, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, false, &domain.ValidationError{Field: "testEndDate", Detail: "must not be before testStartDate"}
	}

	// One clock reading so the before/after comparison is consistent.
	now := time.Now()
	prev := cfg.EffectiveTestMode(now)

	cfg.IsTestMode = params.IsTestMode
	cfg.TestMessage = params.TestMessage
	cfg.TestStartDate = start
	cfg.TestEndDate = end
	cfg.TestType = params.TestType

	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return nil, false, err
	}

	next := cfg.EffectiveTestMode(now)
	broadcast := next != prev
	s.recordEffective(next)
	if broadcast {
		status := cfg.StatusAt(now)
		s.publish(domain.StatusEvent{Kind: domain.EventKindChange, Status: status, At: now})
		s.sendNotice(status)
	}
	return cfg, broadcast, nil
}

func (s *systemService) ToggleTestMode(ctx context.Context) (*domain.SystemConfig, bool, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, false, err
	}
	params := UpdateSystemConfigParams{
		IsTestMode:  !cfg.IsTestMode,
		TestMessage: cfg.TestMessage,
		TestType:    cfg.TestType,
	}
	if cfg.TestStartDate != nil {
		v := cfg.TestStartDate.Format(time.RFC3339)
		params.TestStartDate = &v
	}
	if cfg.TestEndDate != nil {
		v := cfg.TestEndDate.Format(time.RFC3339)
		params.TestEndDate = &v
	}
	return s.UpdateConfig(ctx, params)
}

func (s *systemService) Subscribe(ctx context.Context) (*Subscription, error) {
	status, err := s.GetStatus(ctx)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{
		id:    uuid.New(),
		inbox: make(chan domain.StatusEvent, s.buffer),
		done:  make(chan struct{}),
	}
	// Queue the snapshot before registration so it is always first.
	sub.inbox <- domain.StatusEvent{Kind: domain.EventKindSnapshot, Status: status, At: time.Now()}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, &domain.ConflictError{Entity: "status stream", Reason: "broadcaster is shut down"}
	}
	s.subs[sub.id] = sub
	s.mu.Unlock()

	out := make(chan domain.StatusEvent)
	subscription := &Subscription{id: sub.id, events: out, svc: s}
	go s.pump(ctx, sub, out)

	logger.Debug("Status subscriber attached", "subscriber_id", sub.id)
	return subscription, nil
}

// pump owns one subscriber's outbound channel and heartbeat timer. It exits
// on unsubscribe or context cancellation, releasing both the registry entry
// and the ticker.
func (s *systemService) pump(ctx context.Context, sub *subscriber, out chan<- domain.StatusEvent) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	defer close(out)

	forward := func(ev domain.StatusEvent) bool {
		select {
		case out <- ev:
			return true
		case <-sub.done:
			return false
		case <-ctx.Done():
			s.unsubscribe(sub.id)
			return false
		}
	}

	for {
		select {
		case <-sub.done:
			return
		case <-ctx.Done():
			s.unsubscribe(sub.id)
			return
		case ev := <-sub.inbox:
			if !forward(ev) {
				return
			}
		case <-ticker.C:
			if !forward(domain.StatusEvent{Kind: domain.EventKindHeartbeat, At: time.Now()}) {
				return
			}
		}
	}
}

// unsubscribe removes the registry entry and signals the pump. Map presence
// is the once-guard: concurrent calls for the same id close done only once.
func (s *systemService) unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	sub, ok := s.subs[id]
	if ok {
		delete(s.subs, id)
	}
	s.mu.Unlock()
	if ok {
		close(sub.done)
		logger.Debug("Status subscriber detached", "subscriber_id", id)
	}
}

// publish fans an event out to every live subscriber. Sends are
// non-blocking: a full inbox drops the event for that subscriber only.
func (s *systemService) publish(ev domain.StatusEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, sub := range s.subs {
		select {
		case sub.inbox <- ev:
		default:
			logger.Warn("Subscriber inbox full, dropping event",
				"subscriber_id", id, "kind", ev.Kind)
		}
	}
}

func (s *systemService) ActiveSubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// SyncEffectiveMode catches window edges: a configured test window opening
// or closing flips the derived mode without any UpdateConfig call. The
// derivation itself is never cached; only the last broadcast value is kept.
func (s *systemService) SyncEffectiveMode(ctx context.Context) (bool, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return false, err
	}
	now := time.Now()
	eff := cfg.EffectiveTestMode(now)

	s.mu.Lock()
	known := s.lastEffective
	if known == nil || *known == eff {
		v := eff
		s.lastEffective = &v
		s.mu.Unlock()
		return false, nil
	}
	v := eff
	s.lastEffective = &v
	s.mu.Unlock()

	status := cfg.StatusAt(now)
	s.publish(domain.StatusEvent{Kind: domain.EventKindChange, Status: status, At: now})
	s.sendNotice(status)
	logger.Info("Test window edge crossed, change broadcast", "effective_test_mode", eff)
	return true, nil
}

// Close tears the broadcaster down: no new subscribers, all streams ended.
func (s *systemService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[uuid.UUID]*subscriber)
	s.mu.Unlock()

	for _, sub := range subs {
		close(sub.done)
	}
}

func (s *systemService) recordEffective(v bool) {
	s.mu.Lock()
	val := v
	s.lastEffective = &val
	s.mu.Unlock()
}

// sendNotice emails the QA list about the flip. Failures are logged and
// dropped; config updates never fail because of email.
func (s *systemService) sendNotice(status *domain.SystemStatus) {
	if s.emailSvc == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.emailSvc.SendTestModeChangeNotice(ctx, status); err != nil {
			logger.Error("Failed to send test mode notice", "error", err)
		}
	}()
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Detail: "must be an RFC 3339 timestamp"}
	}
	return &t, nil
}
