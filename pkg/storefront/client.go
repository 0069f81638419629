package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"shop-demo/pkg/models"
	"shop-demo/pkg/tracing"
)

// Config configures the API client
type Config struct {
	Address    string
	HTTPClient *http.Client
	// Tracer is optional. When set, outgoing requests carry the trace context.
	Tracer tracing.Tracer
}

// Client talks to the shop API
type Client interface {
	Message(ctx context.Context) (string, error)
	Products(ctx context.Context) ([]models.Product, error)
	// Login reports rejected credentials through the response, not the error.
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
	PlaceOrder(ctx context.Context, token string, req models.OrderRequest) (models.OrderResponse, error)
}

// StatusError is returned for responses with an unexpected status code
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

type client struct {
	config *Config
}

func NewClient(config *Config) Client {
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	config.Address = strings.TrimSuffix(config.Address, "/")

	return &client{
		config: config,
	}
}

func (c client) Message(ctx context.Context) (string, error) {
	var out models.MessageResponse
	if err := c.do(ctx, http.MethodGet, "/api/message", "", nil, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c client) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c client) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", "", req, &out, http.StatusOK, http.StatusUnauthorized)
	return out, err
}

func (c client) PlaceOrder(ctx context.Context, token string, req models.OrderRequest) (models.OrderResponse, error) {
	var out models.OrderResponse
	err := c.do(ctx, http.MethodPost, "/api/orders", token, req, &out, http.StatusOK)
	return out, err
}

func (c client) do(ctx context.Context, method, path, token string, in, out any, accept ...int) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Address+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.config.Tracer != nil {
		c.config.Tracer.InjectHTTP(ctx, req.Header)
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if !slices.Contains(accept, resp.StatusCode) {
		return &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
