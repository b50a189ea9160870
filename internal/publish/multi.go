package publish

import (
	"context"
	"fmt"

	"github.com/liamashdown/holderscope/internal/metrics"
)

// MultiSender fans a payload out to several senders
type MultiSender struct {
	senders []Sender
}

// NewMultiSender creates a new multi-sender
func NewMultiSender(senders ...Sender) *MultiSender {
	return &MultiSender{
		senders: senders,
	}
}

// Name implements Sender
func (s *MultiSender) Name() string { return "multi" }

// Send sends the payload to every sender, continuing past failures
func (s *MultiSender) Send(ctx context.Context, payload *Payload) error {
	var errs []error
	for _, sender := range s.senders {
		err := sender.Send(ctx, payload)
		metrics.RecordPublish(sender.Name(), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sender.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multi-sender errors: %v", errs)
	}

	return nil
}
