package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"ticketon/internal/models"
)

// Integration tests run against a live API instance. They are skipped unless
// TICKETON_API_URL points at one, e.g.
//
//	TICKETON_API_URL=http://localhost:8080 go test ./tests/integration/...
//
// Credentials come from TICKETON_TEST_USER / TICKETON_TEST_PASSWORD and
// TICKETON_TEST_ADMIN / TICKETON_TEST_ADMIN_PASSWORD.

// TestClient provides authenticated helpers against a running API
type TestClient struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
}

func NewTestClient(baseURL, username, password string) *TestClient {
	return &TestClient{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RequireAPI skips the test when no live API is configured
func RequireAPI(t *testing.T) string {
	t.Helper()
	baseURL := os.Getenv("TICKETON_API_URL")
	if baseURL == "" {
		t.Skip("TICKETON_API_URL not set, skipping integration test")
	}
	return baseURL
}

func userCredentials() (string, string) {
	return os.Getenv("TICKETON_TEST_USER"), os.Getenv("TICKETON_TEST_PASSWORD")
}

func adminCredentials() (string, string) {
	return os.Getenv("TICKETON_TEST_ADMIN"), os.Getenv("TICKETON_TEST_ADMIN_PASSWORD")
}

// makeRequest makes an authenticated HTTP request and returns the response
func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func (c *TestClient) decodeOrFatal(t *testing.T, resp *http.Response, wantStatus int, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", wantStatus, resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
}

// HealthCheck verifies the API is up
func (c *TestClient) HealthCheck(t *testing.T) {
	resp := c.makeRequest(t, "GET", "/health", nil)
	c.decodeOrFatal(t, resp, http.StatusOK, nil)
}

// CreateEvent creates an event (admin credentials required)
func (c *TestClient) CreateEvent(t *testing.T, req *models.CreateEventRequest) *models.CreateEventResponse {
	resp := c.makeRequest(t, "POST", "/api/events", req)

	var created models.CreateEventResponse
	c.decodeOrFatal(t, resp, http.StatusCreated, &created)
	return &created
}

// GetEvent fetches one event by ID
func (c *TestClient) GetEvent(t *testing.T, eventID int64) *models.Event {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/events/%d", eventID), nil)

	var event models.Event
	c.decodeOrFatal(t, resp, http.StatusOK, &event)
	return &event
}

// ListEvents lists all events
func (c *TestClient) ListEvents(t *testing.T) models.ListEventsResponse {
	resp := c.makeRequest(t, "GET", "/api/events", nil)

	var events models.ListEventsResponse
	c.decodeOrFatal(t, resp, http.StatusOK, &events)
	return events
}

// CreateBooking books tickets for an event
func (c *TestClient) CreateBooking(t *testing.T, eventID, ticketsCount int64) *models.CreateBookingResponse {
	req := models.CreateBookingRequest{
		EventID:      eventID,
		TicketsCount: ticketsCount,
	}
	resp := c.makeRequest(t, "POST", "/api/bookings", req)

	var booking models.CreateBookingResponse
	c.decodeOrFatal(t, resp, http.StatusCreated, &booking)
	return &booking
}

// TryCreateBooking books tickets and returns the raw status code
func (c *TestClient) TryCreateBooking(t *testing.T, eventID, ticketsCount int64) int {
	req := models.CreateBookingRequest{
		EventID:      eventID,
		TicketsCount: ticketsCount,
	}
	resp := c.makeRequest(t, "POST", "/api/bookings", req)
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

// GetBooking fetches one booking by ID
func (c *TestClient) GetBooking(t *testing.T, bookingID int64) *models.Booking {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/bookings/%d", bookingID), nil)

	var booking models.Booking
	c.decodeOrFatal(t, resp, http.StatusOK, &booking)
	return &booking
}

// ListMyBookings lists the caller's bookings
func (c *TestClient) ListMyBookings(t *testing.T) []models.Booking {
	resp := c.makeRequest(t, "GET", "/api/bookings/my-bookings", nil)

	var bookings []models.Booking
	c.decodeOrFatal(t, resp, http.StatusOK, &bookings)
	return bookings
}

// CancelBooking cancels a booking and returns the updated record
func (c *TestClient) CancelBooking(t *testing.T, bookingID int64) *models.Booking {
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/bookings/%d/cancel", bookingID), nil)

	var booking models.Booking
	c.decodeOrFatal(t, resp, http.StatusOK, &booking)
	return &booking
}

// TryCancelBooking cancels a booking and returns the raw status code
func (c *TestClient) TryCancelBooking(t *testing.T, bookingID int64) int {
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/bookings/%d/cancel", bookingID), nil)
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

// GetTicket fetches one ticket by ID
func (c *TestClient) GetTicket(t *testing.T, ticketID int64) *models.Ticket {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/tickets/%d", ticketID), nil)

	var ticket models.Ticket
	c.decodeOrFatal(t, resp, http.StatusOK, &ticket)
	return &ticket
}
