package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Nil 键不存在
var Nil = redis.Nil

// Config Redis 配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr 返回 host:port
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// operationRecorder 记录依赖调用结果（由 metrics.ArenaMetrics 实现）
type operationRecorder interface {
	RecordDependency(dependency, operation string, err error)
}

// Client Redis 客户端封装
type Client struct {
	*redis.Client
	recorder operationRecorder
}

// NewClient 创建 Redis 客户端并测试连接
func NewClient(cfg Config, recorder operationRecorder) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	return Wrap(rdb, recorder), nil
}

// Wrap 包装已有的 go-redis 客户端
func Wrap(rdb *redis.Client, recorder operationRecorder) *Client {
	return &Client{Client: rdb, recorder: recorder}
}

func (c *Client) record(op string, err error) {
	if c.recorder == nil {
		return
	}
	if errors.Is(err, redis.Nil) {
		err = nil
	}
	c.recorder.RecordDependency("redis", op, err)
}

// SetWithTTL 设置键值对，带过期时间
func (c *Client) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	err := c.Set(ctx, key, value, ttl).Err()
	c.record("SET", err)
	return err
}

// GetString 获取字符串值，键不存在时返回 Nil
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	result, err := c.Get(ctx, key).Result()
	c.record("GET", err)
	return result, err
}

// DeleteKey 删除键
func (c *Client) DeleteKey(ctx context.Context, keys ...string) error {
	err := c.Del(ctx, keys...).Err()
	c.record("DEL", err)
	return err
}

// Healthy 连接是否可用
func (c *Client) Healthy(ctx context.Context) bool {
	return c.Ping(ctx).Err() == nil
}
