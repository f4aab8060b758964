// Package mailer отправляет письма формы обратной связи.
package mailer

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/Pingu1337/QRx1/internal/model"
)

// Mailer отправляет автоответ отправителю и копию на служебный адрес.
// Вне production отправка отключена и превращается в запись в лог.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	copyTo  string
	enabled bool
	logger  *zap.Logger
}

// New создаёт почтовый сервис.
func New(host string, port int, user, secret, copyTo string, enabled bool, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(host, port, user, secret),
		from:    user,
		copyTo:  copyTo,
		enabled: enabled,
		logger:  logger,
	}
}

// Send обрабатывает сообщение формы: автоответ плюс копия.
func (m *Mailer) Send(msg model.ContactMessage) error {
	if !m.enabled {
		m.logger.Info("почтовый сервис отключён в режиме разработки")
		return nil
	}

	if err := m.sendAutoResponse(msg.Email); err != nil {
		return fmt.Errorf("send auto response: %w", err)
	}
	if err := m.sendCopy(msg); err != nil {
		return fmt.Errorf("send copy: %w", err)
	}
	return nil
}

func (m *Mailer) sendAutoResponse(to string) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", mail.FormatAddress(m.from, "QRx1"))
	mail.SetHeader("To", to)
	mail.SetHeader("Subject", "Advertisment on QRx1")
	mail.SetBody("text/html", `
        <body style="text-align:center;">
            <h1>Thank you for contacting us, we will get back to you as soon as possible.</h1>
            <p>This is an automated email, replies to this address will not reach us.</p>
        </body>`)

	if err := m.dialer.DialAndSend(mail); err != nil {
		return err
	}
	m.logger.Info("[mailBot]: автоответ отправлен", zap.String("to", to))
	return nil
}

func (m *Mailer) sendCopy(msg model.ContactMessage) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", mail.FormatAddress(m.from, "QRx1 [Admin]"))
	mail.SetHeader("To", m.copyTo)
	mail.SetHeader("Subject", "New message received | Advertisment on QRx1")
	mail.SetBody("text/html", fmt.Sprintf(`
        <body style="text-align:center;">
            <h2>New message received from <b>%s</b></h2>
            <div style="text-align:left; margin:auto; width: fit-content;">
                <p>Email: %s <br>Org: <b>%s</b></p>
                <hr/>
                <p>%s</p>
            </div>
        </body>`, msg.Org, msg.Email, msg.Org, msg.Msg))

	if err := m.dialer.DialAndSend(mail); err != nil {
		return err
	}
	m.logger.Info("[mailBot]: копия отправлена", zap.String("to", m.copyTo))
	return nil
}
