package model

import (
	"fmt"
	"sort"
	"sync"
)

// StockAction describes a stock mutation exposed under
// /api/stock/products/by-barcode/{barcode}/{path}.
type StockAction interface {
	Label() string
	Description() string
	Path() string
	// DefaultAmount is used when the caller supplies no quantity; zero makes the quantity required
	DefaultAmount() float64
	Payload(amount float64) map[string]any
}

// ActionFactory creates a new instance of a StockAction
type ActionFactory func() StockAction

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ActionFactory)
)

// RegisterStockAction registers a factory for a given action name.
// e.g. RegisterStockAction("open", func() StockAction { return &OpenAction{} })
func RegisterStockAction(name string, factory ActionFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("RegisterStockAction called twice for " + name)
	}
	registry[name] = factory
}

// GetStockAction creates a new instance of the action by name.
func GetStockAction(name string) (StockAction, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownAction, name)
	}
	return factory(), nil
}

// StockActionNames lists the registered action names in sorted order.
func StockActionNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveAmount applies the action's default to a missing quantity and rejects
// non-positive ones.
func ResolveAmount(action StockAction, quantity *float64) (float64, error) {
	if quantity == nil {
		if def := action.DefaultAmount(); def > 0 {
			return def, nil
		}
		return 0, fmt.Errorf("%w for %s", ErrInvalidQuantity, action.Label())
	}
	if *quantity <= 0 {
		return 0, fmt.Errorf("%w for %s", ErrInvalidQuantity, action.Label())
	}
	return *quantity, nil
}
