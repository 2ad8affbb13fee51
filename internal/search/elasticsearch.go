package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ticketon/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Config struct {
	Enabled    bool
	URL        string
	Username   string
	Password   string
	Index      string
	MaxRetries int
}

// ElasticsearchClient maintains and queries the events search index
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config Config
}

func NewElasticsearchClient(cfg Config) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	if err := client.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	existsReq := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := existsReq.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":             map[string]string{"type": "text"},
				"description":       map[string]string{"type": "text"},
				"datetime_start":    map[string]string{"type": "date"},
				"price":             map[string]string{"type": "long"},
				"available_tickets": map[string]string{"type": "long"},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(body),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index %s: %s", c.config.Index, createRes.String())
	}

	return nil
}

type eventDocument struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	DatetimeStart    time.Time `json:"datetime_start"`
	Price            int64     `json:"price"`
	AvailableTickets *int64    `json:"available_tickets"`
}

// IndexEvent writes (or overwrites) the search document for an event
func (c *ElasticsearchClient) IndexEvent(ctx context.Context, event *models.Event) error {
	doc := eventDocument{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		DatetimeStart:    event.DatetimeStart,
		Price:            event.Price,
		AvailableTickets: event.AvailableTickets,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(event.ID, 10),
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index event %d: %w", event.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index event %d: %s", event.ID, res.String())
	}

	return nil
}

// SearchEvents runs a full-text query over title and description
func (c *ElasticsearchClient) SearchEvents(ctx context.Context, query string, page, pageSize int) ([]models.ListEventsResponseItem, error) {
	from := 0
	if page > 0 && pageSize > 0 {
		from = (page - 1) * pageSize
	}

	searchBody := map[string]interface{}{
		"from": from,
		"size": pageSize,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "description"},
			},
		},
	}

	body, err := json.Marshal(searchBody)
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search request failed: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source eventDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := make([]models.ListEventsResponseItem, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		items = append(items, models.ListEventsResponseItem{
			ID:               hit.Source.ID,
			Title:            hit.Source.Title,
			DatetimeStart:    hit.Source.DatetimeStart,
			Price:            hit.Source.Price,
			AvailableTickets: hit.Source.AvailableTickets,
		})
	}

	return items, nil
}
