package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/attachpro/backend/pkg/mailer"
	"github.com/attachpro/backend/pkg/queue"
)

// JobQueue is the queue surface the worker loop consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// EmailProcessor delivers transactional emails from the job queue.
type EmailProcessor struct {
	mailer mailer.Mailer
	queue  JobQueue
	logger *zap.Logger
}

// NewEmailProcessor creates an email delivery processor.
func NewEmailProcessor(m mailer.Mailer, q JobQueue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{mailer: m, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject, body, err := render(payload)
	if err != nil {
		return err
	}
	if err := p.mailer.Send(ctx, payload.RecipientEmail, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	p.logger.Info("email delivered",
		zap.String("job_id", job.ID),
		zap.String("kind", string(payload.Kind)),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

func render(p queue.EmailPayload) (subject, body string, err error) {
	switch p.Kind {
	case queue.EmailKindWelcome:
		subject = "Your administrator account is ready"
		body = fmt.Sprintf(
			"Hello %s,\n\nAn administrator account has been created for %s.\n\n"+
				"Email: %s\nTemporary password: %s\n\nPlease sign in and change your password.\n",
			p.RecipientName, p.SchoolName, p.RecipientEmail, p.TempPassword)
	case queue.EmailKindAccountLocked:
		subject = "Your account has been locked"
		body = fmt.Sprintf(
			"Hello %s,\n\nYour account was locked after repeated failed sign-in attempts.\n"+
				"Use the password reset flow to regain access, or contact your administrator.\n",
			p.RecipientName)
	default:
		return "", "", fmt.Errorf("unknown email kind: %s", p.Kind)
	}
	return subject, body, nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("email worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			if !p.backoff(ctx) {
				return
			}
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			if !p.backoff(ctx) {
				return
			}
			continue
		}
	}
}

// backoff waits out the retry delay, returning false if ctx ends first.
func (p *EmailProcessor) backoff(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		p.logger.Info("email worker stopping")
		return false
	case <-time.After(queue.RetryBackoff):
		return true
	}
}
