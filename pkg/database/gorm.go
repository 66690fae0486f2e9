package database

import (
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type options struct {
	logLevel     logger.LogLevel
	maxOpenConns int
	maxIdleConns int
	connLifetime time.Duration
}

type Option func(*options)

// WithLogLevel accepts silent, error, warn or info. Unknown values keep the default.
func WithLogLevel(level string) Option {
	return func(o *options) {
		switch strings.ToLower(level) {
		case "silent":
			o.logLevel = logger.Silent
		case "error":
			o.logLevel = logger.Error
		case "warn":
			o.logLevel = logger.Warn
		case "info":
			o.logLevel = logger.Info
		}
	}
}

func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
			if o.maxIdleConns > n {
				o.maxIdleConns = n
			}
		}
	}
}

func newGormLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			// slot values carry user copy, keep them out of the SQL log
			ParameterizedQueries: true,
			Colorful:             false,
		},
	)
}

// NewGormDBFromDSN opens the postgres database holding durable slots and the
// stage event log.
func NewGormDBFromDSN(dsn string, opts ...Option) (*gorm.DB, error) {
	o := options{
		logLevel:     logger.Warn,
		maxOpenConns: 20,
		maxIdleConns: 5,
		connLifetime: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(o.logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.maxOpenConns)
	sqlDB.SetMaxIdleConns(o.maxIdleConns)
	sqlDB.SetConnMaxLifetime(o.connLifetime)

	return db, nil
}
