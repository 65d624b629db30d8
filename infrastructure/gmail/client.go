package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"mp4-splitter/domain/notification"
	"mp4-splitter/infrastructure/drive"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailService defines the interface for Gmail API operations
// This allows mocking the Gmail API in tests
type GmailService interface {
	SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error)
}

// GoogleGmailService is the production implementation using the Gmail API
type GoogleGmailService struct {
	service *gmail.Service
}

// SendMessage sends an email via Gmail API
func (s *GoogleGmailService) SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error) {
	return s.service.Users.Messages.Send(userID, message).Context(ctx).Do()
}

// Client implements notification.EmailSender using Gmail API
type Client struct {
	gmailService GmailService
	from         notification.Recipient
	template     notification.EmailTemplate
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithGmailService sets a custom Gmail service (for testing)
func WithGmailService(svc GmailService) ClientOption {
	return func(c *Client) {
		c.gmailService = svc
	}
}

// WithTemplate sets a custom email template
func WithTemplate(tmpl notification.EmailTemplate) ClientOption {
	return func(c *Client) {
		c.template = tmpl
	}
}

// NewClient creates a new Gmail client
func NewClient(from notification.Recipient, opts ...ClientOption) *Client {
	c := &Client{
		from:     from,
		template: notification.DefaultTemplate,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientWithOAuth creates a Gmail client that may only send mail.
// The token is kept apart from the Drive token since the scopes differ.
func NewClientWithOAuth(ctx context.Context, cfg drive.OAuthConfig, from notification.Recipient, opts ...ClientOption) (*Client, error) {
	c := NewClient(from, opts...)
	if c.gmailService != nil {
		return c, nil
	}

	cfg.Scopes = []string{gmail.GmailSendScope}
	httpClient, err := drive.NewOAuthHTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}
	c.gmailService = &GoogleGmailService{service: srv}
	return c, nil
}

// Send renders the share email and sends it using the Gmail API
func (c *Client) Send(ctx context.Context, req *notification.ShareRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid email request: %w", err)
	}

	data := notification.NewTemplateData(req)

	subject, err := c.template.RenderSubject(data)
	if err != nil {
		return fmt.Errorf("failed to render subject: %w", err)
	}

	plainText, err := c.template.RenderPlainText(data)
	if err != nil {
		return fmt.Errorf("failed to render plain text: %w", err)
	}

	htmlBody, err := c.template.RenderHTML(data)
	if err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	rawMessage := c.buildMIMEMessage(req, subject, plainText, htmlBody)

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(rawMessage)),
	}

	if _, err := c.gmailService.SendMessage(ctx, "me", message); err != nil {
		return fmt.Errorf("%w: %v", notification.ErrSendFailed, err)
	}

	return nil
}

// buildMIMEMessage builds a RFC 2822 MIME message
func (c *Client) buildMIMEMessage(req *notification.ShareRequest, subject, plainText, htmlBody string) string {
	var msg strings.Builder

	fmt.Fprintf(&msg, "From: %s\r\n", c.from)
	fmt.Fprintf(&msg, "To: %s\r\n", joinRecipients(req.To))
	if len(req.CC) > 0 {
		fmt.Fprintf(&msg, "Cc: %s\r\n", joinRecipients(req.CC))
	}

	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/alternative; boundary=\"boundary42\"\r\n\r\n")

	msg.WriteString("--boundary42\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(plainText)
	msg.WriteString("\r\n\r\n")

	msg.WriteString("--boundary42\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n\r\n")

	msg.WriteString("--boundary42--\r\n")

	return msg.String()
}

func joinRecipients(list []notification.Recipient) string {
	addrs := make([]string, len(list))
	for i, r := range list {
		addrs[i] = r.String()
	}
	return strings.Join(addrs, ", ")
}

// Ensure Client implements notification.EmailSender
var _ notification.EmailSender = (*Client)(nil)
