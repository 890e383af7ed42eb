// Package media picks the decorative background, video loop and ambient
// audio for a weather reading.
//
// Resolution is a pure classify-then-lookup step: the condition text is
// mapped to a Category, the observation instant to a TimeBucket, and the
// pair is looked up in an immutable Table with a fixed fallback chain.
// A Resolver holds no mutable state and is safe for concurrent use.
package media

import (
	"fmt"
	"time"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the clock used when a reading has no observation time.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// Resolver resolves readings against a validated table.
type Resolver struct {
	table Table
	now   func() time.Time
}

// NewResolver validates table and returns a resolver over it.
func NewResolver(table Table, opts ...Option) (*Resolver, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		table: table.clone(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// MustNewResolver is like NewResolver but panics on an invalid table.
func MustNewResolver(table Table, opts ...Option) *Resolver {
	r, err := NewResolver(table, opts...)
	if err != nil {
		panic(fmt.Sprintf("media: %v", err))
	}
	return r
}

// Resolve returns the media set for a reading. It never fails: unknown
// conditions resolve as clear and missing scenes fall back to the default row.
func (r *Resolver) Resolve(reading Reading) Set {
	at := reading.ObservedAt
	if at.IsZero() {
		at = r.now()
	}
	return r.ResolveInBucket(reading.Condition, BucketFor(at, reading.Sunrise, reading.Sunset))
}

// ResolveInBucket resolves a condition for a bucket chosen by the caller,
// for readings that carry no usable sun times.
func (r *Resolver) ResolveInBucket(condition string, bucket TimeBucket) Set {
	cat := Classify(condition)
	visual := r.visual(cat, bucket)

	return Set{
		Background: visual.Background,
		Video:      visual.Video,
		Audio:      r.audio(cat),
		Category:   cat,
		Bucket:     bucket,
	}
}

// visual looks up (cat, bucket), then (default, bucket), then (default, day).
func (r *Resolver) visual(cat Category, bucket TimeBucket) Visual {
	if v, ok := r.table.Visuals[cat][bucket]; ok {
		return v
	}
	if v, ok := r.table.Visuals[DefaultCategory][bucket]; ok {
		return v
	}
	return r.table.Visuals[DefaultCategory][BucketDay]
}

func (r *Resolver) audio(cat Category) string {
	if a, ok := r.table.Audio[cat]; ok {
		return a
	}
	return r.table.Audio[DefaultCategory]
}

// Table returns a copy of the resolver's table.
func (r *Resolver) Table() Table {
	return r.table.clone()
}

var defaultResolver = MustNewResolver(DefaultTable())

// Default returns the resolver over DefaultTable.
func Default() *Resolver {
	return defaultResolver
}

// Resolve resolves a reading against DefaultTable.
func Resolve(reading Reading) Set {
	return defaultResolver.Resolve(reading)
}
