package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"ticketon/internal/apperrors"
	"ticketon/internal/middleware"
	"ticketon/internal/models"
	"ticketon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB backs the services with in-memory state that preserves the same
// guarantees as the SQL layer: conditional inventory decrement and
// single-shot cancellation.
type fakeDB struct {
	mu            sync.Mutex
	events        map[int64]*models.Event
	bookings      map[int64]*models.Booking
	tickets       map[int64][]models.Ticket
	nextEventID   int64
	nextBookingID int64
	nextTicketID  int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		events:   make(map[int64]*models.Event),
		bookings: make(map[int64]*models.Booking),
		tickets:  make(map[int64][]models.Ticket),
	}
}

func (f *fakeDB) addEvent(price, available int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextEventID++
	f.events[f.nextEventID] = &models.Event{
		ID:               f.nextEventID,
		Title:            "Concert",
		Type:             "GENERAL",
		DatetimeStart:    time.Now().Add(48 * time.Hour),
		Price:            price,
		TotalTickets:     available,
		AvailableTickets: &available,
	}
	return f.nextEventID
}

func (f *fakeDB) Create(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextEventID++
	event.ID = f.nextEventID
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeDB) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

func (f *fakeDB) List(ctx context.Context, page, pageSize int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var events []models.Event
	for _, event := range f.events {
		events = append(events, *event)
	}
	return events, nil
}

func (f *fakeDB) Update(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeDB) CreateWithTickets(ctx context.Context, booking *models.Booking, tickets []models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[booking.EventID]
	if !ok {
		return errors.New("event does not exist")
	}
	if event.AvailableTickets == nil || *event.AvailableTickets < booking.TicketsCount {
		return apperrors.ErrInsufficientInventory
	}

	f.nextBookingID++
	booking.ID = f.nextBookingID
	booking.BookingTime = time.Now()
	for i := range tickets {
		f.nextTicketID++
		tickets[i].ID = f.nextTicketID
		tickets[i].BookingID = booking.ID
	}

	copied := *booking
	f.bookings[booking.ID] = &copied
	f.tickets[booking.ID] = append([]models.Ticket(nil), tickets...)
	*event.AvailableTickets -= booking.TicketsCount
	return nil
}

func (f *fakeDB) CancelWithRelease(ctx context.Context, bookingID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[bookingID]
	if !ok || (booking.Status != models.StatusConfirmed && booking.Status != models.StatusPending) {
		return apperrors.ErrConflict
	}

	booking.Status = models.StatusCancelled
	for i := range f.tickets[bookingID] {
		f.tickets[bookingID][i].Status = models.StatusCancelled
	}
	if event := f.events[booking.EventID]; event.AvailableTickets != nil {
		*event.AvailableTickets += booking.TicketsCount
	}
	return nil
}

func (f *fakeDB) getBooking(ctx context.Context, id int64) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeDB) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var bookings []models.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, *booking)
		}
	}
	return bookings, nil
}

func (f *fakeDB) GetAll(ctx context.Context) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var bookings []models.Booking
	for _, booking := range f.bookings {
		copied := *booking
		copied.Owner = &models.UserSummary{UserID: booking.UserID, Email: fmt.Sprintf("user%d@test.local", booking.UserID)}
		bookings = append(bookings, copied)
	}
	return bookings, nil
}

func (f *fakeDB) getTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tickets := range f.tickets {
		for _, ticket := range tickets {
			if ticket.ID == id {
				copied := ticket
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeDB) GetByBookingID(ctx context.Context, bookingID int64) ([]models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Ticket(nil), f.tickets[bookingID]...), nil
}

func (f *fakeDB) available(eventID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.events[eventID].AvailableTickets
}

type fakeBookings struct{ *fakeDB }

func (f fakeBookings) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	return f.getBooking(ctx, id)
}

type fakeTickets struct{ *fakeDB }

func (f fakeTickets) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	return f.getTicket(ctx, id)
}

// testAuth replaces BasicAuth in tests. The caller identifies itself through
// X-User-ID and X-Admin headers; requests without them stay anonymous.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.Next()
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.Next()
			return
		}
		isAdmin := c.GetHeader("X-Admin") == "1"
		c.Request = c.Request.WithContext(middleware.ContextWithUser(c.Request.Context(), userID, isAdmin))
		c.Next()
	}
}

func setupRouter(db *fakeDB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	services := &service.Services{
		Events:   service.NewEventService(db, nil),
		Bookings: service.NewBookingService(db, fakeBookings{db}, fakeTickets{db}, nil, nil),
		Tickets:  service.NewTicketService(fakeTickets{db}, fakeBookings{db}, db),
	}
	h := NewHandlers(services, nil)

	router := gin.New()
	api := router.Group("/api")
	api.Use(testAuth())

	events := api.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEvent)
		events.POST("", middleware.RequireAdmin(), h.CreateEvent)
		events.PUT("/:id", middleware.RequireAdmin(), h.UpdateEvent)
	}

	bookings := api.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", middleware.RequireAdmin(), h.ListAllBookings)
		bookings.GET("/my-bookings", h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/cancel", h.CancelBooking)
	}

	api.GET("/tickets/:id", h.GetTicket)

	return router
}

func doRequest(router *gin.Engine, method, path string, body any, userID int64, admin bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	}
	if admin {
		req.Header.Set("X-Admin", "1")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createBooking(t *testing.T, router *gin.Engine, userID, eventID, count int64) *models.CreateBookingResponse {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/bookings", gin.H{
		"event_id":      eventID,
		"tickets_count": count,
	}, userID, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func TestCreateBookingEndpoint(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(150, 5)
	router := setupRouter(db)

	resp := createBooking(t, router, 1, eventID, 2)

	assert.Equal(t, models.StatusConfirmed, resp.Booking.Status)
	assert.Equal(t, int64(300), resp.Booking.TotalPrice)
	require.Len(t, resp.Tickets, 2)
	assert.Equal(t, int64(150), resp.Tickets[0].Price)
	assert.Equal(t, int64(3), db.available(eventID))
}

func TestCreateBookingEndpointUnauthenticated(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(100, 5)
	router := setupRouter(db)

	w := doRequest(router, http.MethodPost, "/api/bookings", gin.H{
		"event_id":      eventID,
		"tickets_count": 1,
	}, 0, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBookingEndpointValidation(t *testing.T) {
	db := newFakeDB()
	db.addEvent(100, 5)
	router := setupRouter(db)

	// Missing tickets_count fails binding.
	w := doRequest(router, http.MethodPost, "/api/bookings", gin.H{"event_id": 1}, 1, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown event.
	w = doRequest(router, http.MethodPost, "/api/bookings", gin.H{
		"event_id":      999,
		"tickets_count": 1,
	}, 1, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBookingEndpointSoldOut(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(100, 1)
	router := setupRouter(db)

	createBooking(t, router, 1, eventID, 1)

	w := doRequest(router, http.MethodPost, "/api/bookings", gin.H{
		"event_id":      eventID,
		"tickets_count": 1,
	}, 2, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(0), db.available(eventID))
}

func TestCancelBookingEndpoint(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(100, 3)
	router := setupRouter(db)

	resp := createBooking(t, router, 1, eventID, 3)
	path := fmt.Sprintf("/api/bookings/%d/cancel", resp.Booking.ID)

	w := doRequest(router, http.MethodPatch, path, nil, 1, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cancelled models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(3), db.available(eventID))

	// Second cancellation conflicts and leaves inventory untouched.
	w = doRequest(router, http.MethodPatch, path, nil, 1, false)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(3), db.available(eventID))
}

func TestCancelBookingEndpointForbidden(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(100, 3)
	router := setupRouter(db)

	resp := createBooking(t, router, 1, eventID, 1)
	path := fmt.Sprintf("/api/bookings/%d/cancel", resp.Booking.ID)

	w := doRequest(router, http.MethodPatch, path, nil, 2, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins may cancel on behalf of users.
	w = doRequest(router, http.MethodPatch, path, nil, 2, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetBookingEndpoint(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(100, 3)
	router := setupRouter(db)

	resp := createBooking(t, router, 1, eventID, 2)
	path := fmt.Sprintf("/api/bookings/%d", resp.Booking.ID)

	w := doRequest(router, http.MethodGet, path, nil, 1, false)
	require.Equal(t, http.StatusOK, w.Code)

	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	require.NotNil(t, booking.Event)
	assert.Equal(t, eventID, booking.Event.ID)
	assert.Len(t, booking.Tickets, 2)

	w = doRequest(router, http.MethodGet, path, nil, 2, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodGet, path, nil, 2, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/bookings/9999", nil, 1, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListMyBookingsEndpoint(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(100, 10)
	router := setupRouter(db)

	createBooking(t, router, 1, eventID, 2)
	createBooking(t, router, 1, eventID, 1)
	createBooking(t, router, 2, eventID, 1)

	w := doRequest(router, http.MethodGet, "/api/bookings/my-bookings", nil, 1, false)
	require.Equal(t, http.StatusOK, w.Code)

	var bookings []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 2)
	for _, booking := range bookings {
		assert.Equal(t, int64(1), booking.UserID)
	}
}

func TestListAllBookingsEndpoint(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(100, 10)
	router := setupRouter(db)

	createBooking(t, router, 1, eventID, 1)
	createBooking(t, router, 2, eventID, 1)

	w := doRequest(router, http.MethodGet, "/api/bookings", nil, 1, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodGet, "/api/bookings", nil, 3, true)
	require.Equal(t, http.StatusOK, w.Code)

	var bookings []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 2)
	for _, booking := range bookings {
		assert.NotNil(t, booking.Owner)
	}
}

func TestGetTicketEndpoint(t *testing.T) {
	db := newFakeDB()
	eventID := db.addEvent(100, 3)
	router := setupRouter(db)

	resp := createBooking(t, router, 1, eventID, 1)
	path := fmt.Sprintf("/api/tickets/%d", resp.Tickets[0].ID)

	w := doRequest(router, http.MethodGet, path, nil, 1, false)
	require.Equal(t, http.StatusOK, w.Code)

	var ticket models.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Equal(t, resp.Tickets[0].TicketCode, ticket.TicketCode)
	require.NotNil(t, ticket.Booking)

	w = doRequest(router, http.MethodGet, path, nil, 2, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodGet, "/api/tickets/9999", nil, 1, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventEndpoints(t *testing.T) {
	db := newFakeDB()
	router := setupRouter(db)

	payload := gin.H{
		"title":          "Festival",
		"datetime_start": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"price":          250,
		"total_tickets":  100,
	}

	w := doRequest(router, http.MethodPost, "/api/events", payload, 1, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodPost, "/api/events", payload, 1, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.CreateEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doRequest(router, http.MethodGet, fmt.Sprintf("/api/events/%d", created.ID), nil, 1, false)
	require.Equal(t, http.StatusOK, w.Code)

	var event models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.Equal(t, "Festival", event.Title)
	require.NotNil(t, event.AvailableTickets)
	assert.Equal(t, int64(100), *event.AvailableTickets)

	w = doRequest(router, http.MethodGet, "/api/events/9999", nil, 1, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/events?pageSize=500", nil, 1, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/events", nil, 1, false)
	require.Equal(t, http.StatusOK, w.Code)

	var list models.ListEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
