package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"spectrumhub/models"
)

// ModerationNotifier tells moderators a story is waiting.
type ModerationNotifier interface {
	StorySubmitted(ctx context.Context, story *models.Story) error
}

// SMTPSettings mirrors the smtp config section.
type SMTPSettings struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	SenderName  string
	Inbox       string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails the moderation inbox on each submission.
type SMTPNotifier struct {
	settings SMTPSettings
	send     sendMailFunc
}

func NewSMTPNotifier(settings SMTPSettings) *SMTPNotifier {
	return &SMTPNotifier{settings: settings, send: smtp.SendMail}
}

func (n *SMTPNotifier) StorySubmitted(_ context.Context, story *models.Story) error {
	s := n.settings
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: New story awaiting moderation: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"%s (%s) submitted a story.\r\n\r\nID: %s\r\n\r\n%s\r\n",
		s.Inbox, s.SenderName, s.SenderEmail, headerSafe(story.Title),
		story.AuthorName, story.Relationship, story.ID.Hex(), story.Content))

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	if err := n.send(addr, auth, s.SenderEmail, []string{s.Inbox}, msg); err != nil {
		return fmt.Errorf("failed to send moderation email: %w", err)
	}
	return nil
}

// headerSafe strips line breaks so user text cannot inject headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
