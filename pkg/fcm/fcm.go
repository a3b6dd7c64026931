package fcm

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"

	"friendlychat-backend/pkg/logging"
)

// maxMulticastTokens is the FCM limit for a single SendEachForMulticast call.
const maxMulticastTokens = 500

// ErrorCode is the FCM error vocabulary attached to a failed delivery.
type ErrorCode string

const (
	CodeInvalidRegistrationToken ErrorCode = "messaging/invalid-registration-token"
	CodeTokenNotRegistered       ErrorCode = "messaging/registration-token-not-registered"
	CodeSenderIDMismatch         ErrorCode = "messaging/mismatched-credential"
	CodeQuotaExceeded            ErrorCode = "messaging/message-rate-exceeded"
	CodeThirdPartyAuth           ErrorCode = "messaging/third-party-auth-error"
	CodeUnavailable              ErrorCode = "messaging/server-unavailable"
	CodeInternal                 ErrorCode = "messaging/internal-error"
	CodeUnknown                  ErrorCode = "messaging/unknown-error"
)

// Permanent reports whether the token behind this error will never succeed again.
func (c ErrorCode) Permanent() bool {
	return c == CodeInvalidRegistrationToken || c == CodeTokenNotRegistered
}

// Classify maps an FCM send error to its error code. A nil error has no code.
func Classify(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case messaging.IsUnregistered(err):
		return CodeTokenNotRegistered
	case messaging.IsInvalidArgument(err):
		// In a multicast batch the payload is shared, so a per-token
		// INVALID_ARGUMENT is a malformed token.
		return CodeInvalidRegistrationToken
	case messaging.IsSenderIDMismatch(err):
		return CodeSenderIDMismatch
	case messaging.IsQuotaExceeded(err):
		return CodeQuotaExceeded
	case messaging.IsThirdPartyAuthError(err):
		return CodeThirdPartyAuth
	case messaging.IsUnavailable(err):
		return CodeUnavailable
	case messaging.IsInternal(err):
		return CodeInternal
	}
	return CodeUnknown
}

// Delivery is the outcome of sending to one token, paired with that token.
type Delivery struct {
	Token     string
	MessageID string
	Code      ErrorCode
	Err       error
}

// Failed reports whether the delivery carries an error.
func (d Delivery) Failed() bool {
	return d.Err != nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title       string
	Body        string
	Icon        string            // Web push icon URL
	ClickAction string            // URL to open when notification is clicked
	ImageURL    string            // Optional notification image
	Data        map[string]string // Custom data payload
}

type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	sender multicastSender
	log    zerolog.Logger
}

// NewClient wraps an initialized messaging client.
func NewClient(messagingClient *messaging.Client) *Client {
	return newClient(messagingClient)
}

func newClient(sender multicastSender) *Client {
	return &Client{
		sender: sender,
		log:    logging.Component("fcm"),
	}
}

// SendMulticast sends one notification to every token and returns one
// Delivery per token in input order. Token lists larger than the FCM batch
// limit are split into consecutive batches. An error is returned only when a
// batch call itself fails; per-token failures are reported in the result.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, notification NotificationData) ([]Delivery, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	deliveries := make([]Delivery, 0, len(tokens))
	for start := 0; start < len(tokens); start += maxMulticastTokens {
		end := start + maxMulticastTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		response, err := c.sender.SendEachForMulticast(ctx, buildMulticast(batch, notification))
		if err != nil {
			return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
		}
		if len(response.Responses) != len(batch) {
			return nil, fmt.Errorf("fcm returned %d responses for %d tokens", len(response.Responses), len(batch))
		}

		c.log.Info().
			Int("success", response.SuccessCount).
			Int("failure", response.FailureCount).
			Msg("multicast sent")

		for i, resp := range response.Responses {
			d := Delivery{Token: batch[i], MessageID: resp.MessageID}
			if !resp.Success {
				d.Err = resp.Error
				if d.Err == nil {
					d.Err = errors.New("fcm reported failure without error")
				}
				d.Code = Classify(d.Err)
			}
			deliveries = append(deliveries, d)
		}
	}
	return deliveries, nil
}

func buildMulticast(tokens []string, n NotificationData) *messaging.MulticastMessage {
	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	if n.ClickAction != "" {
		data["click_action"] = n.ClickAction
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title:    n.Title,
			Body:     n.Body,
			ImageURL: n.ImageURL,
		},
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: n.Title,
				Body:  n.Body,
				Icon:  n.Icon,
			},
		},
	}
	if n.ClickAction != "" {
		message.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: n.ClickAction}
	}
	return message
}
