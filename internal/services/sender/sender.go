// Package sender отправляет письма-напоминания об истекающих арендах курсов.
// Сервис потребляет уведомления из RabbitMQ, рендерит HTML-письмо со списком
// истекающих аренд пользователя и отправляет его по SMTP.
package sender

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/lib/smtp"
	"github.com/study-on/course-store/internal/models"
)

const (
	fromAddress = "admin@study-on.ru"
	subject     = "Кончается аренда курсов."
)

var noticeTemplate = template.Must(template.New("rent_expiring").Parse(`<html>
<body>
<p>Здравствуйте!</p>
<p>Срок аренды следующих курсов скоро закончится:</p>
<ul>
{{range .Rentals}}  <li>{{.CourseTitle}} ({{.CourseCode}}) — до {{.ExpiresAt.Format "02.01.2006 15:04"}}</li>
{{end}}</ul>
<p>Пожалуйста, продлите аренду заранее.</p>
</body>
</html>`))

// SenderService отправляет письма об истекающих арендах.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendRentExpiringNotice обрабатывает одно сообщение из очереди:
// рендерит письмо и отправляет его пользователю.
func (s *SenderService) SendRentExpiringNotice(body []byte) error {
	var notice models.RentalNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if len(notice.Rentals) == 0 {
		return nil
	}

	var report bytes.Buffer
	if err := noticeTemplate.Execute(&report, notice); err != nil {
		return fmt.Errorf("failed to render notice: %w", err)
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromAddress),
		fmt.Sprintf("To: %s", notice.Email),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		report.String(),
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(fromAddress); err != nil {
		s.log.Error("failed to set mail sender", sl.Err(err))
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(notice.Email); err != nil {
		s.log.Error("failed to set recipient", sl.Err(err))
		return fmt.Errorf("failed to set recipient %s: %w", notice.Email, err)
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get write closer", sl.Err(err))
		return fmt.Errorf("failed to get write closer: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message", sl.Err(err))
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close write closer", sl.Err(err))
		return fmt.Errorf("failed to close write closer: %w", err)
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	s.log.Info("rent expiring email sent", slog.String("to", notice.Email))
	return nil
}
