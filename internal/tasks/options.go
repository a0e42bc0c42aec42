package tasks

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskflow/internal/logging"
)

// NewID returns a fresh time-ordered UUID string.
func NewID() (string, error) {
	v7, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIDGeneration, err)
	}
	return v7.String(), nil
}

type options struct {
	logger log.FieldLogger
	now    func() time.Time
	newID  func() (string, error)
}

// Option customizes a Repository, CategoryRegistry or SettingsProvider.
type Option func(*options)

// WithLogger sets the logger used to report swallowed persistence failures.
func WithLogger(logger log.FieldLogger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(component string, opts []Option) options {
	o := options{now: time.Now, newID: NewID}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.Component(o.logger, component)
	return o
}
