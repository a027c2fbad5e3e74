package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/WWJD/logger"
	"github.com/WWJD/models"
)

var ErrEmailDisabled = errors.New("email service not initialized")

type EmailService struct {
	client  *resend.Client
	from    string
	siteURL string
	log     *logger.Logger
}

// NewEmailService returns a disabled service when apiKey is empty.
func NewEmailService(apiKey, from, siteURL string, log *logger.Logger) *EmailService {
	s := &EmailService{from: from, siteURL: strings.TrimRight(siteURL, "/"), log: log.With("service", "EmailService")}
	if apiKey == "" {
		s.log.Warn("RESEND_API_KEY not set, email service will not be available")
		return s
	}
	s.client = resend.NewClient(apiKey)
	s.log.Info("Email service initialized with Resend")
	return s
}

func (s *EmailService) Enabled() bool {
	return s != nil && s.client != nil
}

const emailLayout = `<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; padding: 20px 0; border-bottom: 2px solid #b8860b; }
        .header h1 { color: #b8860b; margin: 0; }
        .content { padding: 30px 0; }
        .card { background-color: #faf7f0; border-left: 4px solid #b8860b; padding: 12px 16px; margin: 16px 0; }
        .footer { text-align: center; padding: 20px 0; border-top: 1px solid #ddd; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header"><h1>What Would Jesus Do?</h1></div>
    <div class="content">%s</div>
    <div class="footer"><p>You can change your email preferences in <a href="%s/settings">settings</a>.</p></div>
</body>
</html>`

func greeting(name *string) string {
	if name == nil || strings.TrimSpace(*name) == "" {
		return "Hi friend,"
	}
	return fmt.Sprintf("Hi %s,", html.EscapeString(*name))
}

func (s *EmailService) send(ctx context.Context, to, subject, body, text string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    fmt.Sprintf(emailLayout, body, s.siteURL),
		Text:    text,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.log.Debug("Email sent", "id", sent.Id, "subject", subject)
	return nil
}

// SendPrayedForEmail tells a prayer request owner that someone prayed.
func (s *EmailService) SendPrayedForEmail(ctx context.Context, user models.UserProfile, result models.PrayedResult) error {
	people := "person has"
	if result.Prayer_Count != 1 {
		people = "people have"
	}
	body := fmt.Sprintf(`<p>%s</p>
<p>Someone just prayed for your request. %d %s prayed for it so far.</p>
<div class="card">%s</div>
<p>"Therefore confess your sins to each other and pray for each other so that you may be healed." (James 5:16)</p>`,
		greeting(user.Display_Name), result.Prayer_Count, people, html.EscapeString(result.Request_Text))
	text := fmt.Sprintf("Someone just prayed for your request. %d %s prayed for it so far.\n\n%s",
		result.Prayer_Count, people, result.Request_Text)
	return s.send(ctx, user.Email, "Someone prayed for you", body, text)
}

// SendDigestEmail sends the periodic summary of new guidance on the user's
// followed topics.
func (s *EmailService) SendDigestEmail(ctx context.Context, user models.UserProfile, situations []models.Situation) error {
	var items, lines strings.Builder
	for _, situation := range situations {
		link := fmt.Sprintf("%s/situation/%d", s.siteURL, situation.Situation_ID)
		fmt.Fprintf(&items, `<div class="card"><a href="%s">%s</a><br><small>%s</small></div>`,
			link, html.EscapeString(situation.Situation_Text), html.EscapeString(strings.Join(situation.Tags, ", ")))
		fmt.Fprintf(&lines, "- %s\n  %s\n", situation.Situation_Text, link)
	}
	body := fmt.Sprintf(`<p>%s</p>
<p>Here is new guidance on the topics you follow:</p>
%s`, greeting(user.Display_Name), items.String())
	text := "Here is new guidance on the topics you follow:\n\n" + lines.String()
	subject := fmt.Sprintf("Your %s WWJD digest", user.Digest_Frequency)
	return s.send(ctx, user.Email, subject, body, text)
}
