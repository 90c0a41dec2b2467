package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
)

const (
	RouteOrders = "/v1/orders"
	RouteOrder  = "/v1/orders/%s"
)

// HTTPClient реализация service.GatewayClient поверх HTTP API платежного шлюза.
// Аутентификация - basic auth парой ключей, как у Razorpay-совместимых шлюзов.
type HTTPClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, keyID, keySecret string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: http.DefaultClient,
	}
}

type orderResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	PaymentID string `json:"payment_id,omitempty"`
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateOrder создает заказ в шлюзе. Сумма - в минорных единицах валюты.
func (c *HTTPClient) CreateOrder(
	ctx context.Context,
	args service.GatewayOrderArgs,
) (*service.GatewayOrder, error) {
	payload, marshalErr := json.Marshal(createOrderRequest{
		Amount:   args.Amount,
		Currency: args.Currency,
		Receipt:  args.Receipt,
		Notes:    args.Notes,
	})
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal order request: %s", marshalErr.Error())
	}

	resp, err := c.do(ctx, "create order", http.MethodPost, c.baseURL+RouteOrders, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return convertOrderResponse(resp), nil
}

// FetchOrder возвращает текущее состояние заказа на стороне шлюза.
func (c *HTTPClient) FetchOrder(ctx context.Context, orderID string) (*service.GatewayOrder, error) {
	resp, err := c.do(ctx, "fetch order", http.MethodGet, c.baseURL+fmt.Sprintf(RouteOrder, orderID), nil)
	if err != nil {
		return nil, err
	}
	return convertOrderResponse(resp), nil
}

// do выполняет запрос к шлюзу. Сетевые ошибки и неожиданные статусы оборачиваются
// в *domain.GatewayError, по нему верхние слои отличают сбой внешнего вызова.
//
//nolint:nonamedreturns
func (c *HTTPClient) do(ctx context.Context, op, method, url string, body io.Reader) (response *orderResponse, err error) {
	req, reqErr := http.NewRequestWithContext(ctx, method, url, body)
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %s", reqErr.Error())
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, domain.NewGatewayError(op, 0, doErr)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		err = domain.NewGatewayError(op, resp.StatusCode, NewStatusCodeError(resp.StatusCode))
		return nil, err
	}

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		err = domain.NewGatewayError(op, resp.StatusCode, fmt.Errorf("read response: %s", readErr.Error()))
		return nil, err
	}

	if jsonErr := json.Unmarshal(respBody, &response); jsonErr != nil {
		err = domain.NewGatewayError(op, resp.StatusCode, fmt.Errorf("parse response: %s", jsonErr.Error()))
		return nil, err
	}

	return response, nil
}

func convertOrderResponse(resp *orderResponse) *service.GatewayOrder {
	return &service.GatewayOrder{
		OrderID:   resp.ID,
		Status:    service.GatewayOrderStatus(resp.Status),
		Amount:    resp.Amount,
		Currency:  resp.Currency,
		Receipt:   resp.Receipt,
		PaymentID: resp.PaymentID,
	}
}
