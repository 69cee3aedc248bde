package line

import (
	"context"
	"fmt"

	"medreminder/internal/domain/recurrence"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// Client wraps the linebot.Client and pushes reminder notifications to one recipient.
type Client struct {
	*linebot.Client
	recipient string
	log       logger.Logger
}

// NewClient creates a LINE Bot client that delivers notifications to recipient.
func NewClient(channelSecret, channelToken, recipient string, log logger.Logger, options ...linebot.ClientOption) (*Client, error) {
	if channelSecret == "" || channelToken == "" {
		return nil, fmt.Errorf("CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN must be set")
	}
	if recipient == "" {
		return nil, fmt.Errorf("NOTIFY_USER_ID must be set")
	}

	bot, err := linebot.New(channelSecret, channelToken, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE Bot client: %w", err)
	}
	log.Info("Successfully created LINE Bot client.")
	return &Client{
		Client:    bot,
		recipient: recipient,
		log:       log,
	}, nil
}

// PushMessages sends one or more messages using the PushMessage API.
func (c *Client) PushMessages(ctx context.Context, to string, messages ...linebot.SendingMessage) error {
	_, err := c.PushMessage(to, messages...).WithContext(ctx).Do()
	if err != nil {
		return err // Return the error for the caller to handle
	}
	c.log.Debug("Successfully sent push message.")
	return nil
}

// Notify pushes a reminder notification to the configured recipient.
func (c *Client) Notify(ctx context.Context, reminderID string, payload recurrence.Payload) error {
	message := linebot.NewTextMessage(payload.Title + "\n" + payload.Body)
	if err := c.PushMessages(ctx, c.recipient, message); err != nil {
		c.log.Error(fmt.Sprintf("Failed to push notification for reminder %s", reminderID), err)
		return fmt.Errorf("%w: %v", appErrors.ErrNotification, err)
	}
	c.log.Info(fmt.Sprintf("Pushed notification for reminder %s", reminderID))
	return nil
}
