package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr         string
	Password     string
	UsersHashKey string
	ListTTL      time.Duration
}

type ValkeyClient struct {
	client       *redis.Client
	usersHashKey string
	listTTL      time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:       rdb,
		usersHashKey: cfg.UsersHashKey,
		listTTL:      cfg.ListTTL,
	}, nil
}

// GetUserAuth looks up a pre-warmed auth entry. The hash value is either a
// bare user id or "<id>:1" for admins.
func (v *ValkeyClient) GetUserAuth(ctx context.Context, email, passwordHash string) (int64, bool, error) {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	value, err := v.client.HGet(ctx, v.usersHashKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, fmt.Errorf("user not found in cache")
		}
		return 0, false, fmt.Errorf("cache lookup error: %w", err)
	}

	idPart, adminPart, _ := strings.Cut(value, ":")
	userID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, adminPart == "1", nil
}

func eventsListKey(page, pageSize int) string {
	return fmt.Sprintf("events:list:p%d:s%d", page, pageSize)
}

// GetEventsListRaw returns the cached events list page as raw JSON, avoiding
// an unmarshal/marshal round trip on the hot path.
func (v *ValkeyClient) GetEventsListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	data, err := v.client.Get(ctx, eventsListKey(page, pageSize)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("cache miss")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

func (v *ValkeyClient) SetEventsList(ctx context.Context, page, pageSize int, response interface{}) {
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	v.client.Set(ctx, eventsListKey(page, pageSize), data, v.listTTL)
}

// InvalidateEventsList drops every cached list page, called after event writes
func (v *ValkeyClient) InvalidateEventsList(ctx context.Context) {
	iter := v.client.Scan(ctx, 0, "events:list:*", 100).Iterator()
	for iter.Next(ctx) {
		v.client.Del(ctx, iter.Val())
	}
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
