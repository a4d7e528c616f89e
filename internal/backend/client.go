// Package backend is the client for the clinic REST API. The API owns
// authentication, booking persistence, slot computation and catalog storage;
// the portal only consumes it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/metrics"

	"go.uber.org/zap"
)

// API is the subset of the clinic backend the portal depends on.
type API interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Profile(ctx context.Context, token string) (*entity.Patient, error)

	ListProducts(ctx context.Context) ([]entity.Product, error)
	ListPackages(ctx context.Context) ([]entity.ServicePackage, error)
	ListBookings(ctx context.Context, token string) ([]entity.Booking, error)
	ListMyBookings(ctx context.Context, token string) ([]entity.Booking, error)
	AvailableSlots(ctx context.Context, packageID, date string) ([]string, error)

	CreateBooking(ctx context.Context, token string, draft entity.BookingDraft) error
	UpdateBooking(ctx context.Context, token, id string, patch entity.BookingPatch) error

	CreateProduct(ctx context.Context, token string, input entity.ProductInput) error
	UpdateProduct(ctx context.Context, token, id string, input entity.ProductInput) error
	DeleteProduct(ctx context.Context, token, id string) error
	CreatePackage(ctx context.Context, token string, input entity.PackageInput) error
	UpdatePackage(ctx context.Context, token, id string, input entity.PackageInput) error
	DeletePackage(ctx context.Context, token, id string) error
}

// AuthResult is the body of a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	entity.Identity
}

type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
	Country     string `json:"country"`
	Gender      string `json:"gender"`
}

// APIError is a non-2xx answer from the backend. Message is the backend's own
// text and is meant to be shown to the user as is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.StatusCode)
	}
	return e.Message
}

// MessageOr returns the backend message of err when it carries one, fallback otherwise.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	metrics    *metrics.BackendMetrics
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func WithMetrics(m *metrics.BackendMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a backend client. baseURL includes the API prefix,
// e.g. "http://localhost:5000/api".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("client", "backend"))

	return c
}

// ==================== AUTH ====================

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}

	var result AuthResult
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	result.NormalizeID()
	return &result, nil
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", "", input, &result); err != nil {
		return nil, err
	}
	result.NormalizeID()
	return &result, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*entity.Patient, error) {
	var body struct {
		Patient *entity.Patient `json:"patient"`
	}
	if err := c.do(ctx, "profile", http.MethodGet, "/auth/profile", token, nil, &body); err != nil {
		return nil, err
	}
	if body.Patient == nil {
		return nil, errors.New("backend: profile response has no patient")
	}
	body.Patient.NormalizeID()
	return body.Patient, nil
}

// ==================== CATALOG ====================

func (c *Client) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	if err := c.do(ctx, "list_products", http.MethodGet, "/products", "", nil, &products); err != nil {
		return nil, err
	}
	for i := range products {
		products[i].NormalizeID()
	}
	return products, nil
}

func (c *Client) ListPackages(ctx context.Context) ([]entity.ServicePackage, error) {
	var packages []entity.ServicePackage
	if err := c.do(ctx, "list_packages", http.MethodGet, "/packages", "", nil, &packages); err != nil {
		return nil, err
	}
	for i := range packages {
		packages[i].NormalizeID()
	}
	return packages, nil
}

// ==================== BOOKINGS ====================

func (c *Client) ListBookings(ctx context.Context, token string) ([]entity.Booking, error) {
	return c.listBookings(ctx, "list_bookings", "/bookings", token)
}

func (c *Client) ListMyBookings(ctx context.Context, token string) ([]entity.Booking, error) {
	return c.listBookings(ctx, "list_my_bookings", "/bookings/mybookings", token)
}

// listBookings decodes each booking on its own so one record with an unknown
// status is dropped instead of failing the whole collection.
func (c *Client) listBookings(ctx context.Context, operation, path, token string) ([]entity.Booking, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, operation, http.MethodGet, path, token, nil, &raw); err != nil {
		return nil, err
	}

	bookings := make([]entity.Booking, 0, len(raw))
	for _, item := range raw {
		var booking entity.Booking
		if err := json.Unmarshal(item, &booking); err != nil {
			c.log.Warn("Dropping undecodable booking", zap.String("operation", operation), zap.Error(err))
			continue
		}
		booking.NormalizeID()
		if err := booking.Validate(); err != nil {
			c.log.Warn("Dropping invalid booking", zap.String("operation", operation), zap.Error(err))
			continue
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func (c *Client) AvailableSlots(ctx context.Context, packageID, date string) ([]string, error) {
	query := url.Values{}
	query.Set("packageId", packageID)
	query.Set("date", date)

	var slots []string
	if err := c.do(ctx, "available_slots", http.MethodGet, "/bookings/available-slots?"+query.Encode(), "", nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *Client) CreateBooking(ctx context.Context, token string, draft entity.BookingDraft) error {
	return c.do(ctx, "create_booking", http.MethodPost, "/bookings", token, draft, nil)
}

func (c *Client) UpdateBooking(ctx context.Context, token, id string, patch entity.BookingPatch) error {
	return c.do(ctx, "update_booking", http.MethodPut, "/bookings/"+url.PathEscape(id), token, patch, nil)
}

// ==================== ADMIN CATALOG ====================

func (c *Client) CreateProduct(ctx context.Context, token string, input entity.ProductInput) error {
	return c.do(ctx, "create_product", http.MethodPost, "/products", token, input, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, input entity.ProductInput) error {
	return c.do(ctx, "update_product", http.MethodPut, "/products/"+url.PathEscape(id), token, input, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete_product", http.MethodDelete, "/products/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) CreatePackage(ctx context.Context, token string, input entity.PackageInput) error {
	return c.do(ctx, "create_package", http.MethodPost, "/packages", token, input, nil)
}

func (c *Client) UpdatePackage(ctx context.Context, token, id string, input entity.PackageInput) error {
	return c.do(ctx, "update_package", http.MethodPut, "/packages/"+url.PathEscape(id), token, input, nil)
}

func (c *Client) DeletePackage(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete_package", http.MethodDelete, "/packages/"+url.PathEscape(id), token, nil, nil)
}

// ==================== TRANSPORT ====================

func (c *Client) do(ctx context.Context, operation, method, path, token string, body, out any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		c.metrics.ObserveRequest(operation, outcome, time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			outcome = "error"
			return fmt.Errorf("backend: encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("backend: create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("backend: %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		outcome = "rejected"
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var errBody struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &errBody) == nil {
			apiErr.Message = errBody.Message
		}

		c.log.Debug("Backend rejected request",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = "error"
		return fmt.Errorf("backend: decode %s response: %w", operation, err)
	}
	return nil
}
