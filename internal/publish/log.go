package publish

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes the payload to the logger
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender creates a new log sender
func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

// Name implements Sender
func (s *LogSender) Name() string { return "log" }

// Send logs one line per side and the verdict
func (s *LogSender) Send(ctx context.Context, payload *Payload) error {
	for _, side := range payload.Sides {
		s.log.WithFields(logrus.Fields{
			"run_id":           payload.RunID,
			"event":            payload.EventTitle,
			"side":             side.Side,
			"holders":          side.Holders,
			"total_value":      side.TotalValue,
			"avg_all_time_pnl": side.AvgAllTimePnL,
			"known_pnl":        side.KnownPnL,
			"profitable":       side.Profitable,
		}).Info("Side summary")
	}
	s.log.WithFields(logrus.Fields{
		"run_id":  payload.RunID,
		"verdict": payload.Verdict,
	}).Info(payload.Headline)
	return nil
}
