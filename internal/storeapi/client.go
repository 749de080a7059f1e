// Package storeapi is the client for the remote product, order and review REST API.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/normalize"
	"github.com/jafarshop/storefront/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept on ErrRemote
const maxErrorBody = 2048

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new store API client
func NewClient(cfg config.StoreAPIConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ReviewInput is the body accepted by the review endpoint
type ReviewInput struct {
	Rating   int    `json:"rating"`
	Text     string `json:"text"`
	UserName string `json:"user_name,omitempty"`
}

// ListProducts fetches the catalog. Both a bare array and a paginated
// {"results": [...]} envelope are accepted.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.do(ctx, "list products", http.MethodGet, "/products/", nil)
	if err != nil {
		return nil, err
	}

	records, err := decodeList(body, "results", "data", "products")
	if err != nil {
		return nil, &errors.ErrRemote{Op: "list products", Err: err}
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, normalize.Product(rec))
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	body, err := c.do(ctx, "get product", http.MethodGet, "/products/"+url.PathEscape(id)+"/", nil)
	if err != nil {
		return nil, notFoundAs(err, "product", id)
	}

	record, ok := normalize.ParseRecord(body)
	if !ok {
		return nil, &errors.ErrRemote{Op: "get product", Err: fmt.Errorf("unexpected response shape")}
	}
	product := normalize.Product(record)
	if product.ID == "" {
		product.ID = id
	}
	return &product, nil
}

// CreateOrder posts the flattened order payload and returns the created order as sent back.
func (c *Client) CreateOrder(ctx context.Context, payload map[string]any) (map[string]any, error) {
	body, err := c.do(ctx, "create order", http.MethodPost, "/orders/", payload)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	record, ok := normalize.ParseRecord(body)
	if !ok {
		c.logger.Warn("Order API returned a non-object body", zap.Int("bytes", len(body)))
		return map[string]any{}, nil
	}
	return record, nil
}

func (c *Client) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	body, err := c.do(ctx, "list reviews", http.MethodGet, reviewsPath(productID), nil)
	if err != nil {
		return nil, notFoundAs(err, "product", productID)
	}

	records, err := decodeList(body, "results", "data", "reviews")
	if err != nil {
		return nil, &errors.ErrRemote{Op: "list reviews", Err: err}
	}

	now := time.Now()
	reviews := make([]domain.Review, 0, len(records))
	for _, rec := range records {
		reviews = append(reviews, normalize.Review(rec, productID, now))
	}
	return reviews, nil
}

func (c *Client) SubmitReview(ctx context.Context, productID string, in ReviewInput) (*domain.Review, error) {
	body, err := c.do(ctx, "submit review", http.MethodPost, reviewsPath(productID), in)
	if err != nil {
		return nil, notFoundAs(err, "product", productID)
	}

	record, ok := normalize.ParseRecord(body)
	if !ok {
		record = normalize.Record{"rating": in.Rating, "text": in.Text}
	}
	review := normalize.Review(record, productID, time.Now())
	return &review, nil
}

func reviewsPath(productID string) string {
	return "/products/" + url.PathEscape(productID) + "/reviews/"
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Store API request failed", zap.String("op", op), zap.Error(err))
		return nil, &errors.ErrRemote{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.ErrRemote{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Store API returned an error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &errors.ErrRemote{Op: op, StatusCode: resp.StatusCode, Body: truncate(string(body))}
	}

	return body, nil
}

// decodeList accepts a bare JSON array or an object holding the array under one of keys.
func decodeList(body []byte, keys ...string) ([]normalize.Record, error) {
	if records, ok := normalize.ParseRecords(body); ok {
		return records, nil
	}
	envelope, ok := normalize.ParseRecord(body)
	if !ok {
		return nil, fmt.Errorf("unexpected response shape")
	}
	list, ok := envelope.List(keys...)
	if !ok {
		return nil, fmt.Errorf("response has none of %s", strings.Join(keys, ", "))
	}
	records := make([]normalize.Record, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			records = append(records, normalize.Record(m))
		}
	}
	return records, nil
}

func notFoundAs(err error, resource, id string) error {
	if remote, ok := err.(*errors.ErrRemote); ok && remote.StatusCode == http.StatusNotFound {
		return &errors.ErrNotFound{Resource: resource, ID: id}
	}
	return err
}

// truncate caps s at maxErrorBody bytes without splitting a UTF-8 sequence.
func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
