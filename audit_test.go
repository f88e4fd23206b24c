package goCareer

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func auditEnabled(c *Config) {
	c.Audit.Enabled = true
	c.Audit.BufferSize = 32
	c.Audit.DropIfFull = false
}

func collectEvents(t *testing.T, sink *ChannelSink, want ...string) map[string]AuditEvent {
	t.Helper()

	got := make(map[string]AuditEvent)
	timeout := time.After(2 * time.Second)
	for {
		missing := false
		for _, w := range want {
			if _, ok := got[w]; !ok {
				missing = true
			}
		}
		if !missing {
			return got
		}
		select {
		case ev := <-sink.Events():
			got[ev.EventType] = ev
		case <-timeout:
			t.Fatalf("timed out waiting for events %v, got %v", want, got)
		}
	}
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}
	env := newTestEnv(t, nil, func(b *Builder) { b.WithAuditSink(sink) })
	env.backend.AddUser(aliceSeed)

	_, _ = env.client.Login(context.Background(), aliceSeed.Email, "wrong-password")
	env.client.Navigate(context.Background(), "/admin")
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditLoginLifecycleEvents(t *testing.T) {
	sink := NewChannelSink(32)
	env := newTestEnv(t, auditEnabled, func(b *Builder) { b.WithAuditSink(sink) })
	alice := env.backend.AddUser(aliceSeed)
	ctx := context.Background()

	if _, err := env.client.Login(ctx, aliceSeed.Email, aliceSeed.Password); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	env.client.Navigate(ctx, "/admin")
	if err := env.client.Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	events := collectEvents(t, sink, auditEventLoginSuccess, auditEventNavigationDenied, auditEventLogout)

	login := events[auditEventLoginSuccess]
	if !login.Success || login.UserID == "" || login.ID == "" {
		t.Fatalf("unexpected login event: %+v", login)
	}
	if login.Metadata["role"] != "user" {
		t.Fatalf("expected role metadata, got %v", login.Metadata)
	}
	if login.Timestamp.IsZero() || login.Timestamp.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", login.Timestamp)
	}

	denied := events[auditEventNavigationDenied]
	if denied.Route != "/admin" || denied.Metadata["location"] != "/dashboard" || denied.Metadata["required"] != "admin" {
		t.Fatalf("unexpected navigation event: %+v", denied)
	}

	logout := events[auditEventLogout]
	if want := strconv.FormatInt(alice.ID, 10); logout.UserID != want || login.UserID != want {
		t.Fatalf("expected user %s, login %q logout %q", want, login.UserID, logout.UserID)
	}
}

func TestAuditFailedLoginRecordsForcedLogoutAndCode(t *testing.T) {
	sink := NewChannelSink(32)
	env := newTestEnv(t, auditEnabled, func(b *Builder) { b.WithAuditSink(sink) })
	env.backend.AddUser(aliceSeed)

	_, _ = env.client.Login(context.Background(), aliceSeed.Email, "not-the-password")

	events := collectEvents(t, sink, auditEventLoginFailure, auditEventForcedLogout)
	failure := events[auditEventLoginFailure]
	if failure.Success || failure.Error != string(auditErrInvalidCredentials) {
		t.Fatalf("unexpected failure event: %+v", failure)
	}
	if failure.Metadata["email"] != aliceSeed.Email {
		t.Fatalf("expected email metadata, got %v", failure.Metadata)
	}

	forced := events[auditEventForcedLogout]
	if forced.Route != "/auth/login" || forced.Error != string(auditErrUnauthenticated) {
		t.Fatalf("unexpected forced logout event: %+v", forced)
	}
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	sink := NewChannelSink(64)
	env := newTestEnv(t, auditEnabled, func(b *Builder) { b.WithAuditSink(sink) })
	env.backend.AddUser(aliceSeed)
	ctx := context.Background()

	_, _ = env.client.Login(ctx, aliceSeed.Email, "wrong-secret-value")
	if _, err := env.client.Login(ctx, aliceSeed.Email, aliceSeed.Password); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	token, _ := env.client.Store().GetToken(ctx)
	env.client.Bootstrap(ctx)

	events := collectEvents(t, sink,
		auditEventLoginFailure, auditEventForcedLogout, auditEventLoginSuccess, auditEventSessionResolved)

	needles := []string{aliceSeed.Password, "wrong-secret-value", token}
	for _, ev := range events {
		for _, needle := range needles {
			if strings.Contains(ev.Error, needle) {
				t.Fatalf("sensitive value leaked in audit error field of %s", ev.EventType)
			}
			for k, v := range ev.Metadata {
				if strings.Contains(k, needle) || strings.Contains(v, needle) {
					t.Fatalf("sensitive value leaked in audit metadata of %s", ev.EventType)
				}
			}
		}
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditBlockedEmitHonoursContext(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	dispatcher.Emit(ctx, AuditEvent{EventType: "e3"})

	if dispatcher.Dropped() != 1 {
		t.Fatalf("expected 1 dropped event, got %d", dispatcher.Dropped())
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), AuditEvent{
		ID:        "e-1",
		Timestamp: time.Now().UTC(),
		EventType: auditEventLoginSuccess,
		UserID:    "7",
		Success:   true,
	})
	sink.Emit(context.Background(), AuditEvent{EventType: auditEventLogout})

	if !buf.Contains("login_success") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains("\"user_id\":\"7\"") {
		t.Fatal("expected JSON log line to contain user id")
	}
	if n := buf.Lines(); n != 2 {
		t.Fatalf("expected 2 lines, got %d", n)
	}
}

func TestAuditChannelSinkDropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Emit(context.Background(), AuditEvent{EventType: "e1"})
	sink.Emit(context.Background(), AuditEvent{EventType: "e2"})

	ev := <-sink.Events()
	if ev.EventType != "e1" {
		t.Fatalf("expected e1, got %s", ev.EventType)
	}
	select {
	case ev := <-sink.Events():
		t.Fatalf("expected empty channel, got %s", ev.EventType)
	default:
	}
}

func TestAuditDispatcherCloseFlushesAndIsIdempotent(t *testing.T) {
	sink := &countingSink{}
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, sink)

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})

	if sink.Count() != 2 {
		t.Fatalf("expected 2 flushed events, got %d", sink.Count())
	}
	if dispatcher.Dropped() != 1 {
		t.Fatalf("expected event after close counted as dropped, got %d", dispatcher.Dropped())
	}
}

func TestAuditDoneContextStillQueuesWhenBufferHasRoom(t *testing.T) {
	sink := &countingSink{}
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
	}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dispatcher.Emit(ctx, AuditEvent{EventType: "e1"})
	dispatcher.Close()

	if sink.Count() != 1 || dispatcher.Dropped() != 0 {
		t.Fatalf("expected event delivered, got delivered=%d dropped=%d", sink.Count(), dispatcher.Dropped())
	}
}

func TestAuditDoneContextDropsImmediatelyWhenFull(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 20; i++ {
		dispatcher.Emit(ctx, AuditEvent{EventType: "late"})
	}
	if dispatcher.Dropped() != 20 {
		t.Fatalf("expected every late event dropped, got %d", dispatcher.Dropped())
	}
}

func TestAuditCloseReleasesBlockedEmitters(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
	}, sink)

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispatcher.Emit(context.Background(), AuditEvent{EventType: "blocked"})
		}()
	}
	time.Sleep(50 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		dispatcher.Close()
		close(closed)
	}()
	wg.Wait()
	close(sink.gate)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
	if dispatcher.Dropped() != 3 {
		t.Fatalf("expected blocked emitters counted as dropped, got %d", dispatcher.Dropped())
	}
}

func TestAuditDisabledDispatcherIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), AuditEvent{EventType: "e1"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(string(b.buf), v)
}

func (b *syncBuffer) Lines() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(string(b.buf), "\n")
}
