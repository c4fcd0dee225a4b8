package service

import (
	"context"
	"time"
)

// ExpirePendingTransactions marks pending purchase requests past their
// expiry as expired. Run periodically by the scheduler.
func (s *Service) ExpirePendingTransactions(ctx context.Context) {
	n, err := s.store.ExpirePendingBefore(ctx, time.Now().UTC())
	if err != nil {
		s.log.Errorf("Failed to expire pending transactions: %v", err)
		return
	}
	if n > 0 {
		s.log.Infof("Expired %d pending transactions", n)
	}
}

// MarkOverdueSchedules flips pending installments past their due date to
// overdue. Run periodically by the scheduler.
func (s *Service) MarkOverdueSchedules(ctx context.Context) {
	n, err := s.store.MarkOverdueBefore(ctx, time.Now().UTC())
	if err != nil {
		s.log.Errorf("Failed to mark overdue installments: %v", err)
		return
	}
	if n > 0 {
		s.log.Infof("Marked %d installments overdue", n)
	}
}

// SendPaymentReminders emails customers whose installments are overdue or
// come due within the configured reminder window. Failures are logged per
// recipient and do not stop the batch.
func (s *Service) SendPaymentReminders(ctx context.Context) {
	if s.notifier == nil {
		return
	}

	now := time.Now().UTC()
	reminders, err := s.store.ReminderSchedules(ctx, now, now.Add(s.config.ReminderWindow))
	if err != nil {
		s.log.Errorf("Failed to list payment reminders: %v", err)
		return
	}

	sent := 0
	for _, r := range reminders {
		if err := s.notifier.SendPaymentReminder(r.Email, r.FullName, r.DueDate, r.Amount, r.Overdue); err != nil {
			s.log.Warnf("Failed to send payment reminder to %s: %v", r.Email, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		s.log.Infof("Sent %d payment reminders", sent)
	}
}
