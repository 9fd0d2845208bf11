package contact

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"portfolio-api/core/mail"
	"portfolio-api/core/repository"
	"portfolio-api/core/validate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var notificationHTML = template.Must(template.New("contact").Parse(`<h2>New contact message</h2>
<p><strong>Name:</strong> {{.Name}}<br>
<strong>Email:</strong> {{.Email}}<br>
<strong>Phone:</strong> {{.Phone}}</p>
<p>{{.Message}}</p>
`))

// Service stores contact messages and notifies the site owner.
type Service struct {
	db       *gorm.DB
	messages *repository.Repository[Message]
	mailer   mail.Sender
	logger   *zap.Logger
}

// NewService creates a new contact service.
func NewService(db *gorm.DB, mailer mail.Sender, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		messages: repository.New[Message](db),
		mailer:   mailer,
		logger:   logger,
	}
}

// Submit validates and stores a submission, then sends the notification.
// A failed notification is logged and does not fail the submission.
func (s *Service) Submit(ctx context.Context, req Request) (*Message, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	msg := &Message{Name: req.Name, Email: req.Email, Phone: req.Phone, Message: req.Message}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.notify(ctx, msg); err != nil {
		s.logger.Error("Failed to send contact notification", zap.Uint("id", msg.ID), zap.Error(err))
		return msg, nil
	}

	if err := s.db.WithContext(ctx).Model(msg).Update("notified", true).Error; err != nil {
		s.logger.Warn("Failed to mark contact message as notified", zap.Uint("id", msg.ID), zap.Error(err))
	}
	return msg, nil
}

// List returns submissions, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Message, error) {
	return s.messages.List(ctx, repository.Filter{Order: "created_at desc, id desc", Limit: limit})
}

func (s *Service) notify(ctx context.Context, msg *Message) error {
	var html bytes.Buffer
	if err := notificationHTML.Execute(&html, msg); err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}
	return s.mailer.Send(ctx, mail.Message{
		ReplyTo: msg.Email,
		Subject: "New contact message from " + msg.Name,
		Text: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\n%s\n",
			msg.Name, msg.Email, msg.Phone, msg.Message),
		HTML: html.String(),
	})
}
