package model

// ConsumeAction removes stock for a product.
type ConsumeAction struct {
	Spoiled bool
}

func (a *ConsumeAction) Label() string {
	return "consume"
}

func (a *ConsumeAction) Description() string {
	return "Remove consumed units of a product from Grocy stock"
}

func (a *ConsumeAction) Path() string {
	return "consume"
}

func (a *ConsumeAction) DefaultAmount() float64 {
	return 0
}

func (a *ConsumeAction) Payload(amount float64) map[string]any {
	return map[string]any{
		"amount":           amount,
		"transaction_type": "consume",
		"spoiled":          a.Spoiled,
	}
}

func init() {
	RegisterStockAction("consume", func() StockAction { return &ConsumeAction{} })
}
