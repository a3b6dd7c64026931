package fcm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

type fakeSender struct {
	calls   []*messaging.MulticastMessage
	failAt  map[string]error
	callErr error
	short   bool
}

func (f *fakeSender) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.calls = append(f.calls, message)
	if f.callErr != nil {
		return nil, f.callErr
	}
	resp := &messaging.BatchResponse{}
	for _, tok := range message.Tokens {
		if err, ok := f.failAt[tok]; ok {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: false, Error: err})
			continue
		}
		resp.SuccessCount++
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "id-" + tok})
	}
	if f.short {
		resp.Responses = resp.Responses[:len(resp.Responses)-1]
	}
	return resp, nil
}

func TestSendMulticastPairsResultsWithTokens(t *testing.T) {
	sender := &fakeSender{failAt: map[string]error{"t2": errors.New("boom")}}
	c := newClient(sender)

	deliveries, err := c.SendMulticast(context.Background(), []string{"t1", "t2", "t3"}, NotificationData{
		Title:       "Ann posted a message",
		Body:        "hi",
		Icon:        "/images/profile_placeholder.png",
		ClickAction: "https://chat.example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deliveries) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(deliveries))
	}
	for i, want := range []string{"t1", "t2", "t3"} {
		if deliveries[i].Token != want {
			t.Fatalf("delivery %d: expected token %s, got %s", i, want, deliveries[i].Token)
		}
	}
	if deliveries[0].Failed() || deliveries[0].MessageID != "id-t1" {
		t.Fatalf("expected t1 success, got %+v", deliveries[0])
	}
	if !deliveries[1].Failed() || deliveries[1].Code != CodeUnknown {
		t.Fatalf("expected t2 unknown failure, got %+v", deliveries[1])
	}

	msg := sender.calls[0]
	if msg.Notification.Title != "Ann posted a message" || msg.Notification.Body != "hi" {
		t.Fatalf("unexpected notification: %+v", msg.Notification)
	}
	if msg.Webpush.Notification.Icon != "/images/profile_placeholder.png" {
		t.Fatalf("unexpected icon: %s", msg.Webpush.Notification.Icon)
	}
	if msg.Webpush.FCMOptions == nil || msg.Webpush.FCMOptions.Link != "https://chat.example.com" {
		t.Fatalf("expected click link, got %+v", msg.Webpush.FCMOptions)
	}
	if msg.Data["click_action"] != "https://chat.example.com" {
		t.Fatalf("expected click_action data, got %v", msg.Data)
	}
}

func TestSendMulticastSplitsLargeBatches(t *testing.T) {
	sender := &fakeSender{}
	c := newClient(sender)

	tokens := make([]string, 1201)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%d", i)
	}
	deliveries, err := c.SendMulticast(context.Background(), tokens, NotificationData{Title: "t"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.calls) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(sender.calls))
	}
	if len(deliveries) != len(tokens) {
		t.Fatalf("expected %d deliveries, got %d", len(tokens), len(deliveries))
	}
	if deliveries[1200].Token != "tok-1200" {
		t.Fatalf("last delivery misaligned: %s", deliveries[1200].Token)
	}
}

func TestSendMulticastEmptyIsNoop(t *testing.T) {
	sender := &fakeSender{}
	c := newClient(sender)
	deliveries, err := c.SendMulticast(context.Background(), nil, NotificationData{})
	if err != nil || deliveries != nil {
		t.Fatalf("expected nil, nil; got %v, %v", deliveries, err)
	}
	if len(sender.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(sender.calls))
	}
}

func TestSendMulticastErrors(t *testing.T) {
	c := newClient(&fakeSender{callErr: errors.New("unavailable")})
	if _, err := c.SendMulticast(context.Background(), []string{"a"}, NotificationData{}); err == nil {
		t.Fatal("expected batch error")
	}

	c = newClient(&fakeSender{short: true})
	if _, err := c.SendMulticast(context.Background(), []string{"a", "b"}, NotificationData{}); err == nil {
		t.Fatal("expected misaligned response error")
	}
}

func TestErrorCodes(t *testing.T) {
	if Classify(nil) != "" {
		t.Fatal("nil error must have no code")
	}
	if Classify(errors.New("x")) != CodeUnknown {
		t.Fatal("plain error must classify as unknown")
	}
	if !CodeInvalidRegistrationToken.Permanent() || !CodeTokenNotRegistered.Permanent() {
		t.Fatal("invalidity codes must be permanent")
	}
	for _, c := range []ErrorCode{CodeUnknown, CodeUnavailable, CodeQuotaExceeded, CodeInternal, CodeSenderIDMismatch} {
		if c.Permanent() {
			t.Fatalf("%s must not be permanent", c)
		}
	}
}
