package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"

	"tasks-api/domain"
)

func TestTaskCreatedEmbed(t *testing.T) {
	task := domain.Task{
		Title:    "Ship the release",
		Category: domain.CategoryWork,
		Priority: domain.PriorityCritical,
	}
	msg := TaskCreated(task)
	if len(msg.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(msg.Embeds))
	}
	e := msg.Embeds[0]
	if e.Description != "Ship the release" {
		t.Fatalf("unexpected description: %q", e.Description)
	}
	if e.Color != 0xff0000 {
		t.Fatalf("critical tasks must be red, got %#x", e.Color)
	}
	if e.Fields[2].Value != "No due date" {
		t.Fatalf("missing due date placeholder, got %q", e.Fields[2].Value)
	}

	low := TaskCreated(domain.Task{Title: "x", Priority: domain.PriorityLow, DueDate: "2026-09-01"})
	if low.Embeds[0].Color != 0x00ff00 {
		t.Fatalf("low priority must be green, got %#x", low.Embeds[0].Color)
	}
	if low.Embeds[0].Fields[2].Value != "2026-09-01" {
		t.Fatalf("due date not carried: %q", low.Embeds[0].Fields[2].Value)
	}
}

func TestProposalReceivedEmbed(t *testing.T) {
	msg := ProposalReceived("Shop rebuild", "a@b.com", "Ada", "A long description of the project.", "ref-123")
	e := msg.Embeds[0]
	if e.Color != 0x00ff64 {
		t.Fatalf("unexpected color %#x", e.Color)
	}
	if e.Footer == nil || e.Footer.Text == "" {
		t.Fatal("proposal embeds must carry a footer with the reference")
	}

	empty := ProposalReceived("", "", "", "", "ref-1")
	if empty.Embeds[0].Fields[0].Value != "Not provided" {
		t.Fatalf("empty fields must use the placeholder, got %q", empty.Embeds[0].Fields[0].Value)
	}
}

func TestWebhookSend(t *testing.T) {
	var received Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := sonic.ConfigStd.Unmarshal(body, &received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	w := NewWebhook(srv.URL)
	msg := TaskCreated(domain.Task{Title: "hello", Priority: domain.PriorityMedium})
	if err := w.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(received.Embeds) != 1 || received.Embeds[0].Description != "hello" {
		t.Fatalf("server did not receive the embed: %+v", received)
	}
}

func TestWebhookSendFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	w := NewWebhook(srv.URL)
	if err := w.Send(context.Background(), Message{Content: "x"}); err == nil {
		t.Fatal("expected an error for a 429 response")
	}
}
