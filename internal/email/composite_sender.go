package email

import (
	"context"
	"errors"
	"fmt"
)

// CompositeEmailSender fans one notification out to several Senders, e.g. the delivery sender
// plus the LOG_EMAILS file copy.
type CompositeEmailSender struct {
	senders []Sender
}

func NewCompositeEmailSender(senders ...Sender) *CompositeEmailSender {
	return &CompositeEmailSender{senders: senders}
}

// AddSender appends sender; nil is ignored.
func (cs *CompositeEmailSender) AddSender(sender Sender) {
	if sender != nil {
		cs.senders = append(cs.senders, sender)
	}
}

// Send tries every sender even after one fails. A failure anywhere fails the send, so the
// order notification task is retried.
func (cs *CompositeEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if len(cs.senders) == 0 {
		return errors.New("no email senders configured")
	}

	var errs []error
	for i, sender := range cs.senders {
		if err := sender.Send(ctx, to, subject, rawMessage); err != nil {
			errs = append(errs, fmt.Errorf("sender %d (%s): %w", i, KindOf(subject), err))
		}
	}
	return errors.Join(errs...)
}
