package domain

import (
	"context"
	"time"
)

// Span times one stage of an analysis run
type Span struct {
	Name      string `json:"name" msgpack:"name"`
	ElapsedMs *int64 `json:"elapsedMs" msgpack:"elapsedMs"`
	Err       string `json:"error,omitempty" msgpack:"error,omitempty"`

	startTs time.Time
}

func NewSpan(name string) (*Span, func()) {
	s := &Span{
		Name:    name,
		startTs: time.Now(),
	}
	return s, s.End
}

func (s *Span) End() {
	if s.ElapsedMs == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.ElapsedMs = &t
	}
}

// Fail ends the span and records why the stage did not complete
func (s *Span) Fail(err error) {
	s.End()
	if err != nil {
		s.Err = err.Error()
	}
}

// Profile is the ordered list of stages of one run. not thread safe
type Profile struct {
	Spans   []*Span `json:"spans" msgpack:"spans"`
	TotalMs *int64  `json:"totalMs" msgpack:"totalMs"`

	startTs time.Time
}

func NewProfile() (*Profile, func()) {
	p := &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}
	return p, p.End
}

func (p *Profile) End() {
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	if p.TotalMs == nil {
		t := time.Since(p.startTs).Milliseconds()
		p.TotalMs = &t
	}
}

// StartNewSpan ends the previous span and begins a new one
func (p *Profile) StartNewSpan(name string) (*Span, func()) {
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	s, end := NewSpan(name)
	p.Spans = append(p.Spans, s)
	return s, end
}

type profileContextKey struct{}

func NewProfileContext(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, profileContextKey{}, p)
}

// ProfileFromContext returns the run's profile, or a fresh one when the
// context carries none
func ProfileFromContext(ctx context.Context) *Profile {
	if p, ok := ctx.Value(profileContextKey{}).(*Profile); ok && p != nil {
		return p
	}
	p, _ := NewProfile()
	return p
}
