package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/models"
	templates "github.com/linesmerrill/casetrack-api/templates/html"
)

const senderName = "SAPS CaseTrack"

// SendgridMailer e-mails notifications to their recipients through SendGrid
type SendgridMailer struct {
	client  *sendgrid.Client
	from    *mail.Email
	users   databases.UserDatabase
	baseURL string
}

// NewSendgridMailer creates a mailer sending from the given address
func NewSendgridMailer(apiKey, from, baseURL string, users databases.UserDatabase) *SendgridMailer {
	return &SendgridMailer{
		client:  sendgrid.NewSendClient(apiKey),
		from:    mail.NewEmail(senderName, from),
		users:   users,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Send looks up the recipient and e-mails the notification. Recipients
// registered without a real address are skipped.
func (m *SendgridMailer) Send(ctx context.Context, n models.Notification) error {
	user, err := m.users.FindOne(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to find recipient %s: %w", n.RecipientID, err)
	}
	if !deliverable(user.Email) {
		zap.S().Debugw("skipping e-mail for recipient without a mailbox", "recipientId", n.RecipientID)
		return nil
	}

	message := buildMessage(m.from, *user, n, m.baseURL)
	response, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

// deliverable reports whether an address can receive mail. Addresses under
// the portal's own domain are synthesised at registration.
func deliverable(address string) bool {
	return address != "" && !strings.HasSuffix(strings.ToLower(address), "@"+models.EmailDomain)
}

func buildMessage(from *mail.Email, user models.User, n models.Notification, baseURL string) *mail.SGMailV3 {
	email := templates.CaseEmail{
		RecipientName: user.DisplayName(),
		CaseNumber:    n.CaseNumber,
		Headline:      n.Message,
		Details:       n.Details,
	}
	if baseURL != "" && n.CaseID != "" {
		email.CaseURL = fmt.Sprintf("%s/cases/%s", baseURL, n.CaseID)
	}

	to := mail.NewEmail(user.DisplayName(), user.Email)
	return mail.NewSingleEmail(from, n.Message, to,
		templates.RenderCaseNotificationText(email),
		templates.RenderCaseNotificationEmail(email),
	)
}
