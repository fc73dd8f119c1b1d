package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fraudstream/internal/domain"
)

type EmailService interface {
	SendEmail(to, subject, body string) error
}

type SlackService interface {
	SendMessage(channel, message string) error
}

type notification struct {
	alert     domain.FraudAlert
	createdAt time.Time
}

// Notifier pushes critical alerts (risk score at or above the configured
// threshold) to the security channels asynchronously, so slow delivery
// never backs up the pipeline.
type Notifier struct {
	emailService  EmailService
	slackService  SlackService
	criticalScore float64
	queue         chan notification
	shutdownChan  chan struct{}
	wg            sync.WaitGroup
	logger        *slog.Logger
}

func NewNotifier(
	emailService EmailService,
	slackService SlackService,
	criticalScore float64,
	workers int,
	logger *slog.Logger,
) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	n := &Notifier{
		emailService:  emailService,
		slackService:  slackService,
		criticalScore: criticalScore,
		queue:         make(chan notification, 1000),
		shutdownChan:  make(chan struct{}),
		logger:        logger,
	}

	for i := 0; i < workers; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}

	return n
}

// NotifyAlert queues the alert if it is critical; sub-threshold alerts
// are ignored.
func (n *Notifier) NotifyAlert(ctx context.Context, alert domain.FraudAlert) error {
	if alert.RiskScore < n.criticalScore {
		return nil
	}

	select {
	case n.queue <- notification{alert: alert, createdAt: time.Now()}:
		n.logger.Info("critical alert queued for notification",
			slog.String("alert_id", alert.AlertID),
			slog.String("fraud_type", string(alert.FraudType)),
			slog.Float64("risk_score", alert.RiskScore))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) worker(id int) {
	defer n.wg.Done()

	for {
		select {
		case msg := <-n.queue:
			n.deliver(msg, id)
		case <-n.shutdownChan:
			// Deliver what was already accepted before exiting.
			for {
				select {
				case msg := <-n.queue:
					n.deliver(msg, id)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) deliver(msg notification, workerID int) {
	alert := msg.alert
	body := fmt.Sprintf(
		"Fraud Alert!\nAlert ID: %s\nType: %s\nRisk Score: %.1f\nUser: %s\nTransaction: %s\nAmount: %.2f\nReason: %s",
		alert.AlertID, alert.FraudType, alert.RiskScore, alert.UserID,
		alert.TransactionID, alert.OriginalTransaction.Amount, alert.Reason,
	)

	if err := n.slackService.SendMessage("#fraud-alerts", body); err != nil {
		n.logger.Error("failed to send slack notification",
			slog.String("alert_id", alert.AlertID),
			slog.Int("worker_id", workerID),
			slog.String("error", err.Error()))
	}

	subject := fmt.Sprintf("Fraud Alert: %s - %s", alert.FraudType, alert.AlertID)
	if err := n.emailService.SendEmail("security@example.com", subject, body); err != nil {
		n.logger.Error("failed to send email notification",
			slog.String("alert_id", alert.AlertID),
			slog.Int("worker_id", workerID),
			slog.String("error", err.Error()))
	}
}

func (n *Notifier) Shutdown(ctx context.Context) error {
	close(n.shutdownChan)

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		n.logger.Info("notifier shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []struct {
		To      string
		Subject string
		Body    string
	}
}

func (m *MockEmailService) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, struct {
		To      string
		Subject string
		Body    string
	}{to, subject, body})
	return nil
}

type MockSlackService struct {
	mu       sync.Mutex
	Messages []struct {
		Channel string
		Message string
	}
}

func (m *MockSlackService) SendMessage(channel, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, struct {
		Channel string
		Message string
	}{channel, message})
	return nil
}
