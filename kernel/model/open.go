package model

// OpenAction marks stock of a product as opened.
type OpenAction struct{}

func (a *OpenAction) Label() string {
	return "open"
}

func (a *OpenAction) Description() string {
	return "Mark units of a product as opened (defaults to 1)"
}

func (a *OpenAction) Path() string {
	return "open"
}

func (a *OpenAction) DefaultAmount() float64 {
	return 1
}

func (a *OpenAction) Payload(amount float64) map[string]any {
	return map[string]any{"amount": amount}
}

func init() {
	RegisterStockAction("open", func() StockAction { return &OpenAction{} })
}
