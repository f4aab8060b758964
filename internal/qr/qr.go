// Package qr отрисовывает QR-коды в JPEG поверх библиотеки go-qrcode.
package qr

import (
	"bytes"
	"fmt"
	"image/color"
	"image/jpeg"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Значения по умолчанию соответствуют публичному контракту /qr:
// уровень коррекции H, рамка включена, чёрный на #fefefe, 500px.
const (
	DefaultWidth   = 500
	DefaultDark    = "#000000"
	DefaultLight   = "#fefefe"
	DefaultQuality = 100
)

// Options управляет отрисовкой. Нулевые значения заменяются
// значениями по умолчанию.
type Options struct {
	// Width — ширина изображения в пикселях.
	Width int
	// Dark и Light — цвета переднего плана и фона, hex с '#' или без.
	Dark  string
	Light string
	// Quality — качество JPEG, 1..100.
	Quality int
	// Margin — рамка вокруг кода; отрицательное значение отключает её.
	Margin int
}

// Producer генерирует изображения QR-кодов.
type Producer struct{}

// NewProducer создаёт генератор QR-кодов.
func NewProducer() *Producer {
	return &Producer{}
}

// Render кодирует content в QR-код и возвращает JPEG-байты.
func (p *Producer) Render(content string, opts Options) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}

	code, err := qrcode.New(content, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	dark, err := parseHexColor(opts.Dark, DefaultDark)
	if err != nil {
		return nil, fmt.Errorf("dark color: %w", err)
	}
	light, err := parseHexColor(opts.Light, DefaultLight)
	if err != nil {
		return nil, fmt.Errorf("light color: %w", err)
	}
	code.ForegroundColor = dark
	code.BackgroundColor = light
	if opts.Margin < 0 {
		code.DisableBorder = true
	}

	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, code.Image(width), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// parseHexColor разбирает цвет вида "#rrggbb" или "rrggbb".
// Пустая строка означает цвет по умолчанию.
func parseHexColor(s, fallback string) (color.Color, error) {
	if s == "" {
		s = fallback
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return nil, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q", s)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}
