package model

import "time"

// LinkRecord представляет одноразовую короткую ссылку.
// Запись живёт до первого перехода, срабатывания мягкого таймаута
// или страховочного окна хранилища — что наступит раньше.
type LinkRecord struct {
	ID      uint      `json:"-"`
	Token   string    `json:"token"`
	Target  string    `json:"target"`
	Created time.Time `json:"created"`
}
