package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/brewcart/internal/cart"
	"github.com/mkravets/brewcart/internal/catalog"
	catalogsvc "github.com/mkravets/brewcart/internal/catalog/service"
	"github.com/mkravets/brewcart/internal/checkout"
	"github.com/mkravets/brewcart/internal/orders"
)

type fakeGateway struct {
	approve bool
	reason  string
}

func (g *fakeGateway) Charge(_ context.Context, amount decimal.Decimal, _ checkout.Details) (*checkout.ChargeResult, error) {
	if !g.approve {
		return &checkout.ChargeResult{Approved: false, DeclineReason: g.reason}, nil
	}
	return &checkout.ChargeResult{Approved: true, Reference: "TXN-test"}, nil
}

func setupTestServer(t *testing.T, gateway checkout.Gateway) (http.Handler, *Server) {
	t.Helper()

	if gateway == nil {
		gateway = &fakeGateway{approve: true}
	}

	srv := NewServer(
		cart.NewService(nil),
		catalogsvc.NewService(catalog.NewStaticFetcher(catalog.DefaultEntries()), nil),
		nil,
		orders.NewMemoryStore(),
		gateway,
		checkout.DefaultPricing(),
		nil,
		30*time.Second,
	)
	return srv.Routes(), srv
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestListProducts(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := decode[[]catalog.Record](t, rec)
	assert.Len(t, entries, 5)
	assert.Equal(t, "Cappuccino", entries[0].Name)
}

func TestGetProduct(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/products/b1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Arabica Beans", decode[catalog.Record](t, rec).Name)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_AndGetCart(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{EntryID: "p1", VariantKey: "L"})
	require.Equal(t, http.StatusCreated, rec.Code)

	cartDTO := decode[CartDTO](t, rec)
	require.Len(t, cartDTO.Items, 1)
	assert.Equal(t, "5.04", cartDTO.Items[0].UnitPrice, "L size is base price times 1.2")
	assert.Equal(t, 1, cartDTO.ItemCount)

	// Same slot again bumps quantity instead of adding a row.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{EntryID: "p1", VariantKey: "L"})
	require.Equal(t, http.StatusCreated, rec.Code)
	cartDTO = decode[CartDTO](t, rec)
	require.Len(t, cartDTO.Items, 1)
	assert.Equal(t, 2, cartDTO.Items[0].Quantity)
	assert.Equal(t, "10.08", cartDTO.Total)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[CartDTO](t, rec).ItemCount)
}

func TestAddItem_UnknownEntry(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{EntryID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_InvalidBody(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{oops"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateQuantity(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	doJSON(t, h, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{EntryID: "b1"})

	rec := doJSON(t, h, http.MethodPut, "/api/v1/cart/items/b1",
		UpdateQuantityRequestDTO{Quantity: 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[CartDTO](t, rec).ItemCount)

	// Zero removes the slot.
	rec = doJSON(t, h, http.MethodPut, "/api/v1/cart/items/b1",
		UpdateQuantityRequestDTO{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CartDTO](t, rec).Items)

	// Positive quantity against a missing slot is an error.
	rec = doJSON(t, h, http.MethodPut, "/api/v1/cart/items/b1",
		UpdateQuantityRequestDTO{Quantity: 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveItem_AndClear(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	doJSON(t, h, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{EntryID: "p1", VariantKey: "M"})
	doJSON(t, h, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{EntryID: "b1"})

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/cart/items/p1?variant_key=M", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[CartDTO](t, rec).Items, 1)

	// Removing an absent slot is a silent no-op.
	rec = doJSON(t, h, http.MethodDelete, "/api/v1/cart/items/p1?variant_key=M", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.00", decode[CartDTO](t, rec).Total)
}

func fillCheckoutCart(t *testing.T, h http.Handler) {
	t.Helper()
	// Two medium cappuccinos plus a bag of beans: 8.40 + 5.20 = 13.60.
	doJSON(t, h, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{EntryID: "p1", VariantKey: "M"})
	doJSON(t, h, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{EntryID: "p1", VariantKey: "M"})
	doJSON(t, h, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{EntryID: "b1"})
}

func cardPayment() SubmitPaymentRequestDTO {
	return SubmitPaymentRequestDTO{
		Method:     "card",
		CardNumber: "4111111111111111",
		Expiry:     "12/27",
		CVV:        "123",
		HolderName: "Jo Brewer",
	}
}

func TestCheckout_EndToEnd(t *testing.T) {
	h, _ := setupTestServer(t, nil)
	fillCheckoutCart(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	review := decode[ReviewDTO](t, rec)
	assert.Equal(t, "13.60", review.Subtotal)
	assert.Equal(t, "2.99", review.ShippingFee)
	assert.Equal(t, "1.36", review.Tax)
	assert.Equal(t, "17.95", review.Total)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/payment", cardPayment())
	require.Equal(t, http.StatusCreated, rec.Code)

	order := decode[OrderDTO](t, rec)
	assert.Equal(t, "COMPLETED", order.Status)
	assert.Equal(t, "17.95", order.Total)
	assert.Len(t, order.Items, 2)

	// The cart is cleared only after the order is recorded.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, 0, decode[CartDTO](t, rec).ItemCount)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]OrderDTO](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckout_EmptyCart(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, rec).Code)
}

func TestCheckout_Declined(t *testing.T) {
	h, _ := setupTestServer(t, &fakeGateway{approve: false, reason: "insufficient funds"})
	fillCheckoutCart(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout/payment", cardPayment())
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "payment_declined", decode[ErrorResponse](t, rec).Code)

	// Cart and history are untouched after a decline.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, 3, decode[CartDTO](t, rec).ItemCount)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/orders", nil)
	assert.Empty(t, decode[[]OrderDTO](t, rec))
}

func TestCheckout_SubmitWithoutBegin(t *testing.T) {
	h, _ := setupTestServer(t, nil)
	fillCheckoutCart(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout/payment", cardPayment())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckout_MissingCardFields(t *testing.T) {
	h, _ := setupTestServer(t, nil)
	fillCheckoutCart(t, h)
	doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout/payment",
		SubmitPaymentRequestDTO{Method: "card", CardNumber: "4111111111111111"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_payment", decode[ErrorResponse](t, rec).Code)
}

func TestCheckout_Abandon(t *testing.T) {
	h, _ := setupTestServer(t, nil)
	fillCheckoutCart(t, h)
	doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Cart survives an abandoned checkout.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, 3, decode[CartDTO](t, rec).ItemCount)
}

func TestCheckout_NewFlowAfterSuccess(t *testing.T) {
	h, _ := setupTestServer(t, nil)
	fillCheckoutCart(t, h)

	doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout/payment", cardPayment())
	require.Equal(t, http.StatusCreated, rec.Code)

	// A second checkout starts over: the cart is empty again.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	fillCheckoutCart(t, h)
	rec = doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUsersHaveSeparateCarts(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		bytes.NewBufferString(`{"entry_id":"b1"}`))
	req.Header.Set("X-User-ID", "other")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// u1 still has an empty cart.
	rec2 := doJSON(t, h, http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, 0, decode[CartDTO](t, rec2).ItemCount)
}

func TestAdminOrders_StatusAndClear(t *testing.T) {
	h, _ := setupTestServer(t, nil)
	fillCheckoutCart(t, h)
	doJSON(t, h, http.MethodPost, "/api/v1/checkout", nil)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/checkout/payment", cardPayment())
	order := decode[OrderDTO](t, rec)

	// Completed is terminal, so any further transition is rejected.
	rec = doJSON(t, h, http.MethodPut, "/api/v1/admin/orders/"+order.ID+"/status",
		UpdateOrderStatusRequestDTO{Status: "CANCELLED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/admin/orders/"+order.ID+"/status",
		UpdateOrderStatusRequestDTO{Status: "SHIPPED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/admin/orders", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/orders", nil)
	assert.Empty(t, decode[[]OrderDTO](t, rec))
}

func TestAdminProducts_StoreNotConfigured(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/admin/products", catalog.Record{
		ID: "p9", Name: "Mocha", Kind: catalog.KindProduct,
	})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealth(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}
