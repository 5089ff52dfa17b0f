package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/api/fcm/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var (
	// ErrInvalidToken means the device token is no longer registered and should be dropped.
	ErrInvalidToken = errors.New("fcm_invalid_token")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("fcm_unavailable")
)

// Message is a push payload. Data is always delivered; Notification adds a
// visible alert, which iOS needs to show anything while the app is closed.
type Message struct {
	Data         map[string]string
	Notification *Notification
}

type Notification struct {
	Title string
	Body  string
}

type FCMSender struct {
	parent  string
	service *fcm.Service
	breaker *gobreaker.CircuitBreaker
}

// NewFCMSender loads a service account file. projectID defaults to the one in the file.
func NewFCMSender(ctx context.Context, projectID, credentialsPath string, logger *slog.Logger) (*FCMSender, error) {
	if strings.TrimSpace(credentialsPath) == "" {
		return nil, fmt.Errorf("fcm credentials path required")
	}
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}
	if projectID == "" {
		var creds struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.Unmarshal(raw, &creds); err != nil {
			return nil, fmt.Errorf("parse fcm credentials: %w", err)
		}
		projectID = creds.ProjectID
	}
	return newFCMSender(ctx, projectID, logger,
		option.WithCredentialsJSON(raw),
		option.WithScopes(fcm.FirebaseMessagingScope),
	)
}

func newFCMSender(ctx context.Context, projectID string, logger *slog.Logger, opts ...option.ClientOption) (*FCMSender, error) {
	if projectID == "" {
		return nil, fmt.Errorf("fcm project id required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := fcm.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create fcm service: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fcm",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		// A dead device token says nothing about the health of FCM itself.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidToken)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notifications: circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &FCMSender{
		parent:  "projects/" + projectID,
		service: svc,
		breaker: breaker,
	}, nil
}

func (s *FCMSender) Send(ctx context.Context, token string, msg Message) error {
	if s == nil {
		return fmt.Errorf("fcm sender not configured")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("fcm token required")
	}

	req := &fcm.SendMessageRequest{Message: buildMessage(token, msg)}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		_, err := s.service.Projects.Messages.Send(s.parent, req).Context(ctx).Do()
		if err != nil {
			return nil, classifyError(err)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func buildMessage(token string, msg Message) *fcm.Message {
	out := &fcm.Message{
		Token:   token,
		Data:    msg.Data,
		Android: &fcm.AndroidConfig{Priority: "HIGH"},
	}
	if msg.Notification != nil {
		out.Notification = &fcm.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		}
		out.Apns = &fcm.ApnsConfig{
			Headers: map[string]string{
				"apns-push-type": "alert",
				"apns-priority":  "10",
			},
		}
	}
	return out
}

func classifyError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("fcm send: %w", err)
	}
	if apiErr.Code == http.StatusNotFound || strings.Contains(apiErr.Body, "UNREGISTERED") {
		return fmt.Errorf("%w: %s", ErrInvalidToken, apiErr.Message)
	}
	for _, d := range apiErr.Details {
		if m, ok := d.(map[string]interface{}); ok && m["errorCode"] == "UNREGISTERED" {
			return fmt.Errorf("%w: %s", ErrInvalidToken, apiErr.Message)
		}
	}
	return fmt.Errorf("fcm send: status %d: %s", apiErr.Code, apiErr.Message)
}
