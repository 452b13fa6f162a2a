package repository

import (
	"time"

	applogger "MacroCast/pkg/logger"
)

// StoreOption configures the persistent forecast stores.
type StoreOption func(*storeConfig)

type storeConfig struct {
	now func() time.Time
	log *applogger.Logger
}

func defaultStoreConfig() *storeConfig {
	return &storeConfig{
		now: time.Now,
		log: applogger.Nop(),
	}
}

// WithStoreClock replaces time.Now for expiry decisions.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

func WithStoreLogger(l *applogger.Logger) StoreOption {
	return func(c *storeConfig) {
		if l != nil {
			c.log = l
		}
	}
}
