package submission

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"meal-survey/internal/catalog"
	"meal-survey/internal/selection"

	"go.uber.org/zap"
)

// Status is the lifecycle of a survey run's submission.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSubmitted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "SUBMITTING"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusFailed:
		return "FAILED"
	}
	return "IDLE"
}

// Ack is the backend's acknowledgement, kept opaque.
type Ack = json.RawMessage

// Transport delivers a payload to the survey backend.
type Transport interface {
	Create(ctx context.Context, p Payload) (Ack, error)
}

// Source is the survey state a submission is assembled from.
type Source interface {
	IsTerminal() bool
	Plan() catalog.PlanCategory
	Selections() selection.Reader
}

// Attempt describes one call to the backend, successful or not.
type Attempt struct {
	Payload Payload
	Status  Status
	Err     error
	Latency time.Duration
	At      time.Time
}

// Recorder stores submission attempts.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}

// Record is the display-only result of a successful submission.
type Record struct {
	Payload     Payload
	Ack         Ack
	SubmittedAt time.Time
}

// Submitter guards a single survey run's submission so that only one
// request is in flight and an acknowledged survey is not sent twice.
type Submitter struct {
	transport Transport
	assembler *Assembler
	recorder  Recorder
	log       *zap.Logger

	mu     sync.Mutex
	status Status
	last   *Record
}

// NewSubmitter creates a Submitter. transport may be nil when the backend is
// not configured, in which case every Submit fails with ErrNotConfigured.
// recorder may be nil.
func NewSubmitter(transport Transport, assembler *Assembler, recorder Recorder, log *zap.Logger) *Submitter {
	if assembler == nil {
		assembler = NewAssembler(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{
		transport: transport,
		assembler: assembler,
		recorder:  recorder,
		log:       log,
	}
}

// Status returns the current submission status.
func (s *Submitter) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Last returns the acknowledged record, or nil.
func (s *Submitter) Last() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Reset forgets a previous submission so the run can be submitted again.
// It has no effect while a request is in flight.
func (s *Submitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitting {
		return
	}
	s.status = StatusIdle
	s.last = nil
}

// Submit assembles a payload from src and sends it. On failure the payload is
// discarded and a later call assembles a new one with a new survey id.
func (s *Submitter) Submit(ctx context.Context, src Source, userID string) (*Record, error) {
	if s.transport == nil {
		return nil, ErrNotConfigured
	}
	if !src.IsTerminal() {
		return nil, ErrNotTerminal
	}
	claim, err := s.Begin()
	if err != nil {
		return nil, err
	}
	return claim.Send(ctx, src, userID)
}

// Claim is a submitter moved to StatusSubmitting by Begin. Exactly one Send
// must follow.
type Claim struct {
	s    *Submitter
	prev Status
}

// Begin moves the submitter to StatusSubmitting without sending anything, so
// callers can claim it under their own lock and send after releasing it.
func (s *Submitter) Begin() (*Claim, error) {
	if s.transport == nil {
		return nil, ErrNotConfigured
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status {
	case StatusSubmitting:
		return nil, ErrInFlight
	case StatusSubmitted:
		return nil, ErrAlreadySubmitted
	}
	prev := s.status
	s.status = StatusSubmitting
	return &Claim{s: s, prev: prev}, nil
}

// Send assembles a payload from src and delivers it. An unfinished src
// releases the claim and returns ErrNotTerminal.
func (c *Claim) Send(ctx context.Context, src Source, userID string) (*Record, error) {
	s := c.s
	if !src.IsTerminal() {
		s.mu.Lock()
		s.status = c.prev
		s.mu.Unlock()
		return nil, ErrNotTerminal
	}

	payload := s.assembler.Assemble(src.Plan(), src.Selections(), userID)
	log := s.log.With(zap.String("survey_id", payload.SurveyID), zap.String("user_id", userID))

	start := time.Now()
	ack, err := s.transport.Create(ctx, payload)
	latency := time.Since(start)

	attempt := Attempt{Payload: payload, Err: err, Latency: latency, At: start.UTC()}

	s.mu.Lock()
	var rec *Record
	if err != nil {
		s.status = StatusFailed
		attempt.Status = StatusFailed
	} else {
		rec = &Record{Payload: payload, Ack: ack, SubmittedAt: time.Now().UTC()}
		s.status = StatusSubmitted
		s.last = rec
		attempt.Status = StatusSubmitted
	}
	s.mu.Unlock()

	s.record(ctx, attempt, log)

	if err != nil {
		log.Warn("survey submission failed", zap.Duration("latency", latency), zap.Error(err))
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Err: err}
		}
		return nil, err
	}
	log.Info("survey submitted", zap.Duration("latency", latency), zap.String("plan", payload.PlanName()))
	return rec, nil
}

func (s *Submitter) record(ctx context.Context, a Attempt, log *zap.Logger) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordAttempt(ctx, a); err != nil {
		log.Warn("failed to record submission attempt", zap.Error(err))
	}
}
