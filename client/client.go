// Package client fornece um cliente HTTP tipado para o serviço de
// pedidos, para uso por frontends e ferramentas internas.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Sentinelas reconstruídas a partir do status HTTP da resposta, para
// que chamadores usem errors.Is sem conhecer o transporte
var (
	ErrNotFound    = errors.New("resource not found")
	ErrInvalid     = errors.New("invalid request")
	ErrConflict    = errors.New("request conflicts with current state")
	ErrUnavailable = errors.New("service temporarily unavailable")
)

// APIError carrega a mensagem de erro retornada pelo serviço junto da
// sentinela correspondente ao status HTTP
type APIError struct {
	StatusCode int
	Message    string
	Available  int
	kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("orders service returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

type errorBody struct {
	Error     string `json:"error"`
	Available int    `json:"available"`
}

// Client é o cliente tipado do serviço de pedidos
type Client struct {
	http *resty.Client
}

// New cria uma nova instância de Client apontando para baseURL
func New(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")

	// Propaga o trace context nas chamadas de saída
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		carrier := propagation.HeaderCarrier(req.Header)
		otel.GetTextMapPropagator().Inject(req.Context(), carrier)
		return nil
	})

	return &Client{http: httpClient}
}

// SubmitOrder submete um pedido e retorna a resposta de aceite
func (c *Client) SubmitOrder(ctx context.Context, req CreateOrderRequest) (*SubmitOrderResponse, error) {
	var out SubmitOrderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	if resp.StatusCode() != http.StatusAccepted {
		return nil, apiError(resp)
	}
	return &out, nil
}

// UpdateOrderStatus aplica uma transição de status e retorna o pedido
// atualizado
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) (*Order, error) {
	var out Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(UpdateOrderStatusRequest{Status: status}).
		SetResult(&out).
		SetPathParam("id", orderID).
		Patch("/api/orders/{id}/status")
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp)
	}
	return &out, nil
}

// GetOrder busca um pedido pelo id
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var out Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetPathParam("id", orderID).
		Get("/api/orders/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp)
	}
	return &out, nil
}

// ListOrders lista todos os pedidos
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp)
	}
	return out, nil
}

// CreateCustomer cadastra um cliente
func (c *Client) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	var out Customer
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/customers")
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, apiError(resp)
	}
	return &out, nil
}

// ListCustomers lista todos os clientes
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/customers")
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp)
	}
	return out, nil
}

// CreateProduct cadastra um produto
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	var out Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/products")
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, apiError(resp)
	}
	return &out, nil
}

// GetProduct busca um produto pelo id
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var out Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetPathParam("id", productID).
		Get("/api/products/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp)
	}
	return &out, nil
}

// ListProducts lista todos os produtos
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/products")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp)
	}
	return out, nil
}

// Health verifica a saúde do serviço
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// apiError converte uma resposta de erro na sentinela correspondente,
// preservando a mensagem do serviço
func apiError(resp *resty.Response) error {
	var body errorBody
	message := resp.String()
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		message = body.Error
	}

	var kind error
	switch resp.StatusCode() {
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusBadRequest:
		kind = ErrInvalid
	case http.StatusConflict:
		kind = ErrConflict
	case http.StatusServiceUnavailable:
		kind = ErrUnavailable
	default:
		kind = ErrUnavailable
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    message,
		Available:  body.Available,
		kind:       kind,
	}
}
