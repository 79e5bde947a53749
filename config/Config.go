package config

import (
	"time"

	"github.com/mohitkumar/bookflow/analytics"
	"github.com/mohitkumar/bookflow/model"
)

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type Config struct {
	RedisConfig      RedisStorageConfig
	HttpPort         int
	PluginId         string
	StorageType      StorageType
	BookConfig       model.BookConfig
	BorrowLimit      int
	LockTimeout      time.Duration
	ReminderInterval time.Duration
	NotifyCapacity   int
	Users            map[string]string
	AnalyticsConfig  analytics.DataCollectorConfig
	LogLevel         string
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}

// Default returns a configuration with every limit unresolved.
func Default() Config {
	return Config{
		HttpPort:         8080,
		PluginId:         "bookflow",
		StorageType:      STORAGE_TYPE_INMEM,
		BookConfig:       model.BookConfig{ExpireDays: -1, MaxRenewTimes: -1},
		BorrowLimit:      -1,
		LockTimeout:      10 * time.Second,
		ReminderInterval: time.Hour,
		NotifyCapacity:   256,
		LogLevel:         "info",
	}
}

// DisplayName returns the configured display name of user, or user itself.
func (c Config) DisplayName(user string) string {
	if name, ok := c.Users[user]; ok && name != "" {
		return name
	}
	return user
}
