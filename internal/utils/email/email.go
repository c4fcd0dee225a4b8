package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bareqalyusr/bnpl-service/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.log.Infof("Email sent to %s: %s", e.To[0], e.Subject)
	return nil
}

// SendPaymentReminder sends an installment reminder email
func (s *Sender) SendPaymentReminder(to, name string, dueDate time.Time, amount decimal.Decimal, overdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if overdue {
		e.Subject = "Overdue Installment Notification"
	} else {
		e.Subject = "Upcoming Installment Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	if overdue {
		body += fmt.Sprintf(
			"Your installment of %s SAR was due on %s and is now overdue.\n"+
				"Please request the payment from your account as soon as possible.\n",
			amount, dueDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that your installment of %s SAR is due on %s.\n",
			amount, dueDate.Format("2006-01-02"),
		)
	}
	body += "\nBest regards,\nBNPL Service"
	e.Text = []byte(body)

	return s.send(e)
}

// SendPurchaseRequest notifies a customer about a new purchase request
func (s *Sender) SendPurchaseRequest(to, name, businessName string, amount decimal.Decimal, reference string, expiresAt time.Time) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "New Purchase Request"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"%s has sent you a purchase request of %s SAR (reference %s).\n"+
			"Please approve or reject it before %s, after which it expires automatically.\n"+
			"\nBest regards,\nBNPL Service",
		name, businessName, amount, reference, expiresAt.Format("2006-01-02 15:04"),
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendPurchaseDecision notifies a customer about the outcome of a transaction
func (s *Sender) SendPurchaseDecision(to, name, reference string, approved bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if approved {
		e.Subject = "Purchase Approved"
	} else {
		e.Subject = "Purchase Rejected"
	}

	outcome := "approved"
	if !approved {
		outcome = "rejected"
	}
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your transaction %s has been %s.\n"+
			"\nBest regards,\nBNPL Service",
		name, reference, outcome,
	)
	e.Text = []byte(body)

	return s.send(e)
}
