package email

import (
	"context"
	"testing"
)

var (
	_ Sender = (*NoopSender)(nil)
	_ Sender = (*ResendSender)(nil)
)

// TestNoopSender_RecordsRequests verifies sends are captured in order.
func TestNoopSender_RecordsRequests(t *testing.T) {
	s := NewNoopSender()
	ctx := context.Background()

	if _, err := s.Send(ctx, SendRequest{To: []string{"a@example.org"}, Subject: "one"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	results, err := s.SendBatch(ctx, []SendRequest{
		{To: []string{"b@example.org"}, Subject: "two"},
		{To: []string{"c@example.org"}, Subject: "three"},
	})
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}

	sent := s.Sent()
	if len(sent) != 3 {
		t.Fatalf("len(Sent) = %d, want 3", len(sent))
	}
	for i, want := range []string{"one", "two", "three"} {
		if sent[i].Subject != want {
			t.Errorf("Sent[%d].Subject = %q, want %q", i, sent[i].Subject, want)
		}
	}
}

// TestResendSender_DefaultFrom verifies the sender address falls back to the default.
func TestResendSender_DefaultFrom(t *testing.T) {
	s := NewResendSender("re_test", "Grace Chapel <office@example.org>")

	p := s.params(SendRequest{To: []string{"x@example.org"}, Subject: "hi", Text: "plain"})
	if p.From != "Grace Chapel <office@example.org>" {
		t.Errorf("From = %q, want default", p.From)
	}
	if p.Text != "plain" {
		t.Errorf("Text = %q, want plain", p.Text)
	}

	p = s.params(SendRequest{From: "pastor@example.org"})
	if p.From != "pastor@example.org" {
		t.Errorf("From = %q, want override", p.From)
	}
}
