package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/attachpro/backend/pkg/queue"
)

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.subject, m.body = to, subject, body
	return nil
}

func emailJob(t *testing.T, p queue.EmailPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &queue.Job{ID: "job-1", Type: queue.JobTypeEmail, Payload: raw}
}

func TestProcessWelcomeEmail(t *testing.T) {
	m := &fakeMailer{}
	p := NewEmailProcessor(m, nil, nil)

	job := emailJob(t, queue.EmailPayload{
		Kind:           queue.EmailKindWelcome,
		RecipientEmail: "admin@school.edu",
		RecipientName:  "Grace",
		SchoolName:     "Harbor Tech",
		TempPassword:   "tmp-secret",
	})
	if err := p.Process(context.Background(), job); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if m.to != "admin@school.edu" {
		t.Fatalf("recipient = %q", m.to)
	}
	if !strings.Contains(m.body, "Harbor Tech") || !strings.Contains(m.body, "tmp-secret") {
		t.Fatalf("welcome body missing school or credential: %q", m.body)
	}
}

func TestProcessLockedEmail(t *testing.T) {
	m := &fakeMailer{}
	p := NewEmailProcessor(m, nil, nil)

	job := emailJob(t, queue.EmailPayload{
		Kind:           queue.EmailKindAccountLocked,
		RecipientEmail: "student@school.edu",
		RecipientName:  "Sam",
	})
	if err := p.Process(context.Background(), job); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if !strings.Contains(strings.ToLower(m.subject), "locked") {
		t.Fatalf("subject = %q", m.subject)
	}
}

func TestProcessRejectsUnknownKind(t *testing.T) {
	p := NewEmailProcessor(&fakeMailer{}, nil, nil)
	job := emailJob(t, queue.EmailPayload{Kind: "newsletter", RecipientEmail: "a@b.c"})
	if err := p.Process(context.Background(), job); err == nil {
		t.Fatal("expected error for unknown email kind")
	}
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewEmailProcessor(&fakeMailer{}, nil, nil)
	job := &queue.Job{ID: "job-2", Type: "video_encode"}
	if err := p.Process(context.Background(), job); err == nil {
		t.Fatal("expected error for unknown job type")
	}
}

func TestProcessPropagatesSendFailure(t *testing.T) {
	p := NewEmailProcessor(&fakeMailer{err: errors.New("smtp down")}, nil, nil)
	job := emailJob(t, queue.EmailPayload{Kind: queue.EmailKindWelcome, RecipientEmail: "a@b.c"})
	if err := p.Process(context.Background(), job); err == nil {
		t.Fatal("expected send failure to propagate for retry")
	}
}

// blockedQueue never yields a job; Dequeue returns only when ctx ends.
type blockedQueue struct{}

func (blockedQueue) Dequeue(ctx context.Context) (*queue.Job, string, error) {
	<-ctx.Done()
	return nil, "", ctx.Err()
}

func (blockedQueue) Retry(context.Context, *queue.Job) error { return nil }

func TestRunStopsPromptlyOnCancel(t *testing.T) {
	p := NewEmailProcessor(&fakeMailer{}, blockedQueue{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker still running after cancellation")
	}
}
