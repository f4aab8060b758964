package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/mailer"
	"github.com/Pingu1337/QRx1/internal/model"
)

// Вне production отправка выключена: Send ничего не шлёт и не падает.
func TestSendDisabledInDevelopment(t *testing.T) {
	m := mailer.New("smtp.zoho.eu", 465, "bot@qrx.test", "secret", "admin@qrx.test", false, zap.NewNop())

	err := m.Send(model.ContactMessage{
		Org:   "ACME",
		Email: "someone@example.com",
		Msg:   "hello",
	})
	assert.NoError(t, err)
}
