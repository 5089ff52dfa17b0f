package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *FCMSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sender, err := newFCMSender(context.Background(), "pid", nil,
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("newFCMSender: %v", err)
	}
	return sender
}

func TestFCMSenderSend_NotificationIncludesAPNSAlert(t *testing.T) {
	var (
		path string
		body []byte
	)
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"projects/pid/messages/1"}`))
	})

	err := sender.Send(context.Background(), "fcm-token-1", Message{
		Data: map[string]string{"type": "event_invite"},
		Notification: &Notification{
			Title: "Game night invite",
			Body:  "alice invited you to Game Night.",
		},
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if path != "/v1/projects/pid/messages:send" {
		t.Fatalf("unexpected path: %s", path)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	message, _ := payload["message"].(map[string]any)
	if message == nil {
		t.Fatalf("missing message payload")
	}
	if message["token"] != "fcm-token-1" {
		t.Fatalf("unexpected token: %v", message["token"])
	}

	notification, _ := message["notification"].(map[string]any)
	if notification == nil || notification["title"] != "Game night invite" {
		t.Fatalf("unexpected notification payload: %v", message["notification"])
	}

	apns, _ := message["apns"].(map[string]any)
	if apns == nil {
		t.Fatalf("missing apns payload")
	}
	headers, _ := apns["headers"].(map[string]any)
	if headers["apns-push-type"] != "alert" || headers["apns-priority"] != "10" {
		t.Fatalf("unexpected apns headers: %v", headers)
	}
}

func TestFCMSenderSend_DataOnlyHasNoAlert(t *testing.T) {
	var body []byte
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{}`))
	})

	if err := sender.Send(context.Background(), "tok", Message{Data: map[string]string{"type": "friend_request"}}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var payload struct {
		Message map[string]any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := payload.Message["notification"]; ok {
		t.Fatalf("data-only message must not carry a notification")
	}
	android, _ := payload.Message["android"].(map[string]any)
	if android["priority"] != "HIGH" {
		t.Fatalf("unexpected android config: %v", payload.Message["android"])
	}
}

func TestFCMSenderSend_UnregisteredTokenIsInvalid(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND","details":[{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"UNREGISTERED"}]}}`))
	})

	err := sender.Send(context.Background(), "stale", Message{})
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestFCMSenderSend_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
	})

	for i := 0; i < 5; i++ {
		if err := sender.Send(context.Background(), "tok", Message{}); err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("attempt %d: expected upstream error, got %v", i, err)
		}
	}
	if err := sender.Send(context.Background(), "tok", Message{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable once the breaker is open, got %v", err)
	}
	if calls != 5 {
		t.Fatalf("expected 5 upstream calls, got %d", calls)
	}
}

func TestFCMSenderSend_RequiresToken(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected upstream call")
	})
	if err := sender.Send(context.Background(), "  ", Message{}); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
