package grocy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupBarcode_Found(t *testing.T) {
	fake := testutil.NewFakeGrocy(t, "key")
	fake.AddProduct("4006381333931", testutil.ProductDetails(7, "Milk", 2, "Pack", "Fridge"))

	result, err := NewClient(time.Second).LookupBarcode(context.Background(), fake.URL(), "key", "4006381333931")
	require.NoError(t, err)
	require.Equal(t, model.Found, result.Outcome)
	require.NotNil(t, result.Product)

	assert.Equal(t, model.Product{
		Id:          7,
		Barcode:     "4006381333931",
		Name:        "Milk",
		StockAmount: 2,
		Unit:        "Pack",
		Location:    "Fridge",
	}, *result.Product)
	assert.NotEmpty(t, result.Payload)
	assert.Equal(t, "key", fake.LastRequest().APIKey)
}

func TestLookupBarcode_MissingSubFieldsUseDefaults(t *testing.T) {
	fake := testutil.NewFakeGrocy(t, "key")
	fake.AddProduct("123", map[string]any{"product": map[string]any{"name": "Bread"}})

	result, err := NewClient(time.Second).LookupBarcode(context.Background(), fake.URL(), "key", "123")
	require.NoError(t, err)
	require.Equal(t, model.Found, result.Outcome)

	assert.Equal(t, "Bread", result.Product.Name)
	assert.Equal(t, 0.0, result.Product.StockAmount)
	assert.Equal(t, model.DefaultProductUnit, result.Product.Unit)
	assert.Equal(t, model.DefaultProductLocation, result.Product.Location)
}

func TestLookupBarcode_NotFoundAndUnauthorized(t *testing.T) {
	fake := testutil.NewFakeGrocy(t, "key")
	c := NewClient(time.Second)

	result, err := c.LookupBarcode(context.Background(), fake.URL(), "key", "000")
	require.NoError(t, err)
	assert.Equal(t, model.NotFound, result.Outcome)
	assert.Nil(t, result.Product)

	result, err = c.LookupBarcode(context.Background(), fake.URL(), "wrong", "000")
	require.NoError(t, err)
	assert.Equal(t, model.Unauthorized, result.Outcome)
	assert.Equal(t, http.StatusUnauthorized, result.Status)
}

func TestLookupBarcode_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	result, err := NewClient(time.Second).LookupBarcode(context.Background(), server.URL, "key", "1")
	require.NoError(t, err)
	assert.Equal(t, model.UpstreamError, result.Outcome)
	assert.Equal(t, http.StatusBadGateway, result.Status)
}

func TestLookupBarcode_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	result, err := NewClient(time.Second).LookupBarcode(context.Background(), url, "key", "1")
	require.NoError(t, err)
	assert.Equal(t, model.TransportError, result.Outcome)
	assert.Contains(t, result.Message, "execute request")
}

func TestPreconditions(t *testing.T) {
	c := NewClient(time.Second)

	_, err := c.LookupBarcode(context.Background(), "", "key", "1")
	assert.True(t, errors.Is(err, model.ErrBaseURLUnset))

	_, err = c.TestConnection(context.Background(), "http://grocy", " ")
	assert.True(t, errors.Is(err, model.ErrMissingCredential))

	_, err = c.LookupBarcode(context.Background(), "http://grocy", "key", "")
	assert.True(t, errors.Is(err, model.ErrMissingBarcode))

	_, err = c.ApplyAction(context.Background(), "http://grocy", "key", "1", &model.PurchaseAction{}, 0)
	assert.True(t, errors.Is(err, model.ErrInvalidQuantity))

	_, err = c.ApplyAction(context.Background(), "http://grocy", "key", "1", nil, 1)
	assert.True(t, errors.Is(err, model.ErrUnknownAction))
}

func applyNamed(t *testing.T, c *Client, baseURL, barcode, name string, amount float64) model.Result {
	t.Helper()
	action, err := model.GetStockAction(name)
	require.NoError(t, err)
	result, err := c.ApplyAction(context.Background(), baseURL, "key", barcode, action, amount)
	require.NoError(t, err)
	return result
}

func TestStockActions(t *testing.T) {
	fake := testutil.NewFakeGrocy(t, "key")
	fake.AddProduct("42", testutil.ProductDetails(1, "Coffee", 1, "Bag", "Pantry"))
	c := NewClient(time.Second)

	result := applyNamed(t, c, fake.URL(), "42", "purchase", 3)
	assert.Equal(t, model.Found, result.Outcome)
	last := fake.LastRequest()
	assert.Equal(t, "/api/stock/products/by-barcode/42/add", last.Path)
	assert.Equal(t, 3.0, last.Payload["amount"])
	assert.Equal(t, "purchase", last.Payload["transaction_type"])

	result = applyNamed(t, c, fake.URL(), "42", "consume", 1)
	assert.Equal(t, model.Found, result.Outcome)
	last = fake.LastRequest()
	assert.Equal(t, "/api/stock/products/by-barcode/42/consume", last.Path)
	assert.Equal(t, false, last.Payload["spoiled"])

	result = applyNamed(t, c, fake.URL(), "42", "open", 1)
	assert.Equal(t, model.Found, result.Outcome)
	last = fake.LastRequest()
	assert.Equal(t, "/api/stock/products/by-barcode/42/open", last.Path)
	assert.Equal(t, 1.0, last.Payload["amount"])

	result = applyNamed(t, c, fake.URL(), "unknown", "consume", 1)
	assert.Equal(t, model.NotFound, result.Outcome)
}

func TestApplyAction_UpstreamMessage(t *testing.T) {
	const body = `{"error_message":"Amount to be consumed cannot be > current stock amount"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	result := applyNamed(t, NewClient(time.Second), server.URL, "42", "consume", 5)
	assert.Equal(t, model.UpstreamError, result.Outcome)
	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Equal(t, "Amount to be consumed cannot be > current stock amount", result.Message)
	assert.JSONEq(t, body, string(result.Payload))
}

func TestTestConnection(t *testing.T) {
	fake := testutil.NewFakeGrocy(t, "key")
	c := NewClient(time.Second)

	result, err := c.TestConnection(context.Background(), fake.URL()+"/", "key")
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, "/api/system/info", fake.LastRequest().Path)

	result, err = c.TestConnection(context.Background(), fake.URL(), "bad")
	require.NoError(t, err)
	assert.Equal(t, model.Unauthorized, result.Outcome)
}
