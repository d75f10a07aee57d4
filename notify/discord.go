package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"tasks-api/domain"
)

// Message is the body posted to a Discord-compatible webhook.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

var priorityColors = map[domain.Priority]int{
	domain.PriorityCritical: 0xff0000,
	domain.PriorityHigh:     0xff6600,
	domain.PriorityMedium:   0xffff00,
	domain.PriorityLow:      0x00ff00,
}

const timestampLayout = "02/01/2006, 15:04:05"

// TaskCreated builds the embed announcing a newly created task.
func TaskCreated(t domain.Task) Message {
	color, ok := priorityColors[t.Priority]
	if !ok {
		color = priorityColors[domain.PriorityMedium]
	}
	due := t.DueDate
	if due == "" {
		due = "No due date"
	}
	return Message{Embeds: []Embed{{
		Title:       "📋 New Task Added",
		Description: t.Title,
		Color:       color,
		Fields: []EmbedField{
			{Name: "📂 Category", Value: string(t.Category), Inline: true},
			{Name: "⚡ Priority", Value: string(t.Priority), Inline: true},
			{Name: "📅 Due", Value: due, Inline: true},
			{Name: "⏰ Registered", Value: t.CreatedAt.Format(timestampLayout)},
		},
	}}}
}

// ProposalReceived builds the embed for a project proposal. The
// reference id lets a reply be matched back to the submission.
func ProposalReceived(name, email, contact, description, reference string) Message {
	return Message{Embeds: []Embed{{
		Title:       "💡 New Project Proposal",
		Description: description,
		Color:       0x00ff64,
		Fields: []EmbedField{
			{Name: "📋 Project Name", Value: orPlaceholder(name), Inline: true},
			{Name: "📧 Email", Value: orPlaceholder(email), Inline: true},
			{Name: "👤 Contact", Value: orPlaceholder(contact), Inline: true},
			{Name: "📝 Description", Value: orPlaceholder(description)},
		},
		Footer: &EmbedFooter{Text: fmt.Sprintf("Ref %s | %s", reference, time.Now().Format(timestampLayout))},
	}}}
}

// ContactReceived builds the embed for a contact-form message.
func ContactReceived(name, email, phone, message string) Message {
	return Message{Embeds: []Embed{{
		Title: "📨 New Contact Message",
		Color: 0x00d4ff,
		Fields: []EmbedField{
			{Name: "👤 Name", Value: orPlaceholder(name), Inline: true},
			{Name: "📧 Email", Value: orPlaceholder(email), Inline: true},
			{Name: "📱 Phone", Value: orPlaceholder(phone), Inline: true},
			{Name: "💬 Message", Value: orPlaceholder(message)},
		},
		Footer: &EmbedFooter{Text: time.Now().Format(timestampLayout)},
	}}}
}

func orPlaceholder(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

// Webhook posts messages to a Discord-compatible webhook URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook builds a webhook target with a bounded request timeout.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message. Discord answers 204 on success.
func (w *Webhook) Send(ctx context.Context, msg Message) error {
	body, err := sonic.ConfigStd.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
