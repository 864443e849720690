package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/receipt-relay/backend/internal/application/relay"
	"github.com/receipt-relay/backend/internal/infrastructure/telegram"
)

type fakeFetcher struct {
	payload []byte
	err     error
}

func (f *fakeFetcher) FetchLatestReceipt(ctx context.Context) ([]byte, error) {
	return f.payload, f.err
}

func setupAdminRouter(fetcher LatestReceiptFetcher, relayer Relayer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewAdminHandler(fetcher, relayer).RegisterRoutes(engine.Group(""))
	return engine
}

func TestAdminHandler_ResendLatestReceipt(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(`{"receipts":[{"receipt_number":"2-1042"}]}`)}
	relayer := &fakeRelayer{result: &relay.Result{
		Stage:         relay.StageCleaned,
		ReceiptNumber: "2-1042",
		Outcome:       &telegram.DeliveryOutcome{Delivered: true, StatusCode: 200},
	}}
	engine := setupAdminRouter(fetcher, relayer)

	req := httptest.NewRequest(http.MethodPost, "/admin/receipts/resend-latest", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"status":"ok","receipt":"2-1042","stage":"CLEANED","delivered":true}`,
		w.Body.String())
	assert.Equal(t, string(fetcher.payload), string(relayer.raw))
}

func TestAdminHandler_ResendLatestReceipt_FetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: assert.AnError}
	relayer := &fakeRelayer{}
	engine := setupAdminRouter(fetcher, relayer)

	req := httptest.NewRequest(http.MethodPost, "/admin/receipts/resend-latest", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, relayer.calls)
}

func TestAdminHandler_ResendLatestReceipt_UndeliveredReceipt(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(`{"receipts":[{}]}`)}
	relayer := &fakeRelayer{result: &relay.Result{
		Stage:         relay.StageCleaned,
		ReceiptNumber: "N/A",
		Outcome:       &telegram.DeliveryOutcome{Delivered: false, StatusCode: 400},
	}}
	engine := setupAdminRouter(fetcher, relayer)

	req := httptest.NewRequest(http.MethodPost, "/admin/receipts/resend-latest", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"delivered":false`)
}
