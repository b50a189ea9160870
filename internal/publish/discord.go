package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"

	"github.com/liamashdown/holderscope/internal/report"
)

// DiscordSender posts the payload to a Discord webhook as an embed
type DiscordSender struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordSender creates a new Discord sender
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Sender
func (s *DiscordSender) Name() string { return "discord" }

// Send posts the embed
func (s *DiscordSender) Send(ctx context.Context, payload *Payload) error {
	webhookPayload := map[string]interface{}{
		"embeds": []interface{}{s.buildEmbed(payload)},
	}

	body, err := json.Marshal(webhookPayload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (s *DiscordSender) buildEmbed(payload *Payload) map[string]interface{} {
	var color int
	switch payload.Verdict {
	case report.VerdictYes:
		color = 0x2ECC71
	case report.VerdictNo:
		color = 0xE74C3C
	default:
		color = 0x95A5A6
	}

	fields := make([]map[string]interface{}, 0, len(payload.Sides)+1)
	for _, side := range payload.Sides {
		avg := "N/A"
		if side.KnownPnL > 0 {
			avg = "$" + humanize.FormatFloat("#,###.", side.AvgAllTimePnL)
		}
		fields = append(fields, map[string]interface{}{
			"name": fmt.Sprintf("%s (%d holders)", side.Side, side.Holders),
			"value": fmt.Sprintf("Capital $%s\nAvg all-time P&L %s\nProfitable %d/%d",
				humanize.FormatFloat("#,###.", side.TotalValue), avg, side.Profitable, side.KnownPnL),
			"inline": true,
		})
	}
	if payload.ShareURL != "" {
		fields = append(fields, map[string]interface{}{
			"name":   "Share",
			"value":  fmt.Sprintf("[Post summary](%s)", truncate(payload.ShareURL, 1000)),
			"inline": false,
		})
	}

	return map[string]interface{}{
		"title":       truncate(payload.EventTitle, 256),
		"url":         payload.EventURL,
		"description": truncate(payload.Question+"\n**"+payload.Headline+"**", 2000),
		"color":       color,
		"fields":      fields,
		"footer": map[string]interface{}{
			"text": fmt.Sprintf("holderscope • run %s", payload.RunID),
		},
		"timestamp": payload.Timestamp.Format(time.RFC3339),
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
