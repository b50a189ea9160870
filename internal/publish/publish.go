// Package publish sends the outcome of an analysis to notification sinks.
package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/report"
)

// SideSummary is the per-side part of a payload
type SideSummary struct {
	Side          holders.Side
	Holders       int
	TotalValue    float64
	AvgAllTimePnL float64
	KnownPnL      int
	Profitable    int
}

// Payload contains everything a sender needs to describe one analysis
type Payload struct {
	RunID      string
	EventTitle string
	EventURL   string
	Question   string
	Sides      []SideSummary
	Verdict    report.Verdict
	Headline   string
	ShareURL   string
	Timestamp  time.Time
}

// NewPayload builds a payload from a rendered report
func NewPayload(r *report.Report) *Payload {
	p := &Payload{
		RunID:      r.RunID,
		EventTitle: r.EventTitle,
		EventURL:   "https://polymarket.com/event/" + r.EventSlug,
		Question:   r.Question,
		ShareURL:   r.ShareURL,
		Verdict:    report.VerdictInsufficient,
		Timestamp:  r.GeneratedAt,
	}
	for _, s := range r.Sides {
		p.Sides = append(p.Sides, SideSummary{
			Side:          s.Side,
			Holders:       s.Summary.Holders,
			TotalValue:    s.Summary.TotalValue,
			AvgAllTimePnL: s.Summary.AvgAllTimePnL,
			KnownPnL:      s.Summary.KnownPnL,
			Profitable:    s.Summary.Profitable,
		})
	}
	if r.Comparison != nil {
		p.Verdict = r.Comparison.Verdict
		p.Headline = r.Comparison.Headline()
	}
	return p
}

// Sender defines the interface for publish destinations
type Sender interface {
	Name() string
	Send(ctx context.Context, payload *Payload) error
}

// FromConfig builds the senders named by PUBLISH_MODE. It returns nil when
// publishing is disabled.
func FromConfig(cfg *config.Config, log *logrus.Logger) (Sender, error) {
	var senders []Sender
	for _, mode := range cfg.PublishModes() {
		switch mode {
		case "none":
		case "log":
			senders = append(senders, NewLogSender(log))
		case "discord":
			for _, u := range cfg.DiscordWebhookURLs {
				senders = append(senders, NewDiscordSender(u))
			}
		default:
			return nil, fmt.Errorf("unknown publish mode %q", mode)
		}
	}
	if len(senders) == 0 {
		return nil, nil
	}
	return NewMultiSender(senders...), nil
}
