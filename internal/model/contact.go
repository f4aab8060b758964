package model

// ContactMessage представляет сообщение из формы обратной связи.
type ContactMessage struct {
	Org   string `json:"org"`
	Email string `json:"email"`
	Msg   string `json:"msg"`
}
