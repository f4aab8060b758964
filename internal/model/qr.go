package model

// QROptions — параметры отрисовки QR-кода, присланные клиентом.
// Нулевые значения означают "не задано": для них подставляются
// значения по умолчанию на стороне генератора.
type QROptions struct {
	Width   int     `json:"width"`
	Dark    string  `json:"dark"`
	Light   string  `json:"light"`
	Quality float64 `json:"quality"`
	Margin  int     `json:"margin"`
}

// QRRequest представляет тело запроса на генерацию QR-кода.
// Те же поля принимаются и через query-параметры.
type QRRequest struct {
	Data    string    `json:"data"`
	Timeout *int      `json:"timeout,omitempty"`
	Options QROptions `json:"options"`
}
