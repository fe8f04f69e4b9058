// Package services доставляет уведомления из очереди по электронной почте.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/textproto"
	"strings"

	"github.com/magabrotheeeer/ecolight/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/ecolight/internal/lib/sl"
	"github.com/magabrotheeeer/ecolight/internal/lib/smtp"
	"github.com/magabrotheeeer/ecolight/internal/models"
)

// ErrMalformedMessage сообщение из очереди не удалось разобрать.
var ErrMalformedMessage = errors.New("malformed notification message")

type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendNotification разбирает models.NotificationMessage и отправляет письмо адресату.
func (s *SenderService) SendNotification(body []byte) error {
	var message models.NotificationMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if message.Email == "" {
		return fmt.Errorf("%w: empty email", ErrMalformedMessage)
	}

	subject := "[Ecolight] " + message.Title
	bodyText := fmt.Sprintf("Bonjour %s,\n\n%s\n\nL'équipe Ecolight", message.Name, message.Message)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// Handle обработчик для очереди. Неразборчивые сообщения подтверждаются и пропускаются.
// Отказ SMTP-сервера с кодом 5xx помечается rabbitmq.ErrPermanent, остальные ошибки
// доставки возвращаются как есть для повторной попытки.
func (s *SenderService) Handle(body []byte) error {
	err := s.SendNotification(body)
	if errors.Is(err, ErrMalformedMessage) {
		s.log.Error("dropping malformed message", sl.Err(err))
		return nil
	}
	if isPermanentSMTP(err) {
		return fmt.Errorf("%w: %w", rabbitmq.ErrPermanent, err)
	}
	return err
}

// isPermanentSMTP сообщает, что сервер отверг письмо окончательно (код 5xx).
func isPermanentSMTP(err error) bool {
	var reply *textproto.Error
	return errors.As(err, &reply) && reply.Code >= 500 && reply.Code < 600
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	const op = "services.SenderService.sendEmail"
	from := s.transport.Sender()

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		_ = wc.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
