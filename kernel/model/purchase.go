package model

// PurchaseAction adds stock for a product.
type PurchaseAction struct{}

func (a *PurchaseAction) Label() string {
	return "purchase"
}

func (a *PurchaseAction) Description() string {
	return "Add purchased units of a product to Grocy stock"
}

func (a *PurchaseAction) Path() string {
	return "add"
}

func (a *PurchaseAction) DefaultAmount() float64 {
	return 0
}

func (a *PurchaseAction) Payload(amount float64) map[string]any {
	return map[string]any{
		"amount":           amount,
		"transaction_type": "purchase",
	}
}

func init() {
	RegisterStockAction("purchase", func() StockAction { return &PurchaseAction{} })
}
