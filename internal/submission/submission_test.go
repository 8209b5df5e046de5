package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"meal-survey/internal/catalog"
	"meal-survey/internal/selection"
	"meal-survey/internal/wizard"
)

type fakeTransport struct {
	mu       sync.Mutex
	payloads []Payload
	err      error
	block    chan struct{}
	started  chan struct{}
}

func (f *fakeTransport) Create(ctx context.Context, p Payload) (Ack, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return nil, f.err
	}
	return Ack(`{"ok":true}`), nil
}

type fakeRecorder struct {
	attempts []Attempt
	err      error
}

func (f *fakeRecorder) RecordAttempt(ctx context.Context, a Attempt) error {
	f.attempts = append(f.attempts, a)
	return f.err
}

// completedRun walks a survey to its final step with the given choices.
func completedRun(t *testing.T, plan catalog.PlanCategory, picks map[catalog.Slot][]catalog.OrdinalKey) *wizard.Controller {
	t.Helper()
	c := wizard.New(wizard.WithPlanStep, nil)
	if err := c.ChoosePlan(plan); err != nil {
		t.Fatalf("ChoosePlan failed: %v", err)
	}
	c.Advance()
	for {
		slot, _ := c.Step().Slot()
		for _, k := range picks[slot] {
			if err := c.Toggle(k, true); err != nil {
				t.Fatalf("Toggle %s/%d failed: %v", slot, k, err)
			}
		}
		if !c.Advance() {
			break
		}
	}
	return c
}

func TestAssemble(t *testing.T) {
	t.Run("SortedBreakfastLabels", func(t *testing.T) {
		s := selection.NewStore()
		_ = s.Toggle(catalog.SlotBreakfast, 2, true)
		_ = s.Toggle(catalog.SlotBreakfast, 0, true)

		p := NewAssembler(nil).Assemble(catalog.PlanUnset, s, "u1")
		want := []string{"Monday: Poha", "Wednesday: Besan Chilla"}
		if len(p.Answers.Breakfast) != len(want) {
			t.Fatalf("Expected %v, got %v", want, p.Answers.Breakfast)
		}
		for i := range want {
			if p.Answers.Breakfast[i] != want[i] {
				t.Errorf("Expected %v, got %v", want, p.Answers.Breakfast)
			}
		}
		if p.Plan != nil {
			t.Errorf("Expected nil plan, got %q", *p.Plan)
		}
	})

	t.Run("EmptySlotsMarshalAsLists", func(t *testing.T) {
		p := NewAssembler(nil).Assemble(catalog.PlanStandardVeg, selection.NewStore(), "u1")
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var decoded map[string]any
		_ = json.Unmarshal(data, &decoded)
		answers := decoded["answers"].(map[string]any)
		for _, slot := range []string{"breakfast", "lunch", "dinner"} {
			list, ok := answers[slot].([]any)
			if !ok || len(list) != 0 {
				t.Errorf("Expected empty list for %s, got %v", slot, answers[slot])
			}
		}
		if decoded["subscriptionType"] != "Standard Veg" {
			t.Errorf("Unexpected subscriptionType %v", decoded["subscriptionType"])
		}
		if decoded["firebaseUid"] != "u1" {
			t.Errorf("Unexpected firebaseUid %v", decoded["firebaseUid"])
		}
	})

	t.Run("UnsetPlanIsNull", func(t *testing.T) {
		p := NewAssembler(nil).Assemble(catalog.PlanUnset, selection.NewStore(), "u1")
		data, _ := json.Marshal(p)
		var decoded map[string]any
		_ = json.Unmarshal(data, &decoded)
		if v, ok := decoded["subscriptionType"]; !ok || v != nil {
			t.Errorf("Expected subscriptionType null, got %v", v)
		}
	})

	t.Run("FreshIDs", func(t *testing.T) {
		a := NewAssembler(nil)
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			id := a.Assemble(catalog.PlanUnset, selection.NewStore(), "u1").SurveyID
			if id == "" || seen[id] {
				t.Fatalf("Survey id %q empty or reused", id)
			}
			seen[id] = true
		}
	})
}

func TestSubmitEndToEnd(t *testing.T) {
	run := completedRun(t, catalog.PlanStandardVeg, map[catalog.Slot][]catalog.OrdinalKey{
		catalog.SlotBreakfast: {0, 4},
		catalog.SlotLunch:     {1},
		catalog.SlotDinner:    {6},
	})

	transport := &fakeTransport{}
	recorder := &fakeRecorder{}
	s := NewSubmitter(transport, nil, recorder, nil)

	rec, err := s.Submit(context.Background(), run, "u123")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	p := rec.Payload
	if p.PlanName() != "Standard Veg" {
		t.Errorf("Expected plan 'Standard Veg', got %q", p.PlanName())
	}
	if p.UserID != "u123" || p.SurveyID == "" {
		t.Errorf("Unexpected ids: user=%q survey=%q", p.UserID, p.SurveyID)
	}
	wantBreakfast := []string{"Monday: Poha", "Friday: Aloo Paratha"}
	if fmt.Sprint(p.Answers.Breakfast) != fmt.Sprint(wantBreakfast) {
		t.Errorf("Expected breakfast %v, got %v", wantBreakfast, p.Answers.Breakfast)
	}
	if fmt.Sprint(p.Answers.Lunch) != "[Tuesday: Rajma Combo]" {
		t.Errorf("Unexpected lunch %v", p.Answers.Lunch)
	}
	if fmt.Sprint(p.Answers.Dinner) != "[Sunday: Mixed Veg Curry]" {
		t.Errorf("Unexpected dinner %v", p.Answers.Dinner)
	}
	if string(rec.Ack) != `{"ok":true}` {
		t.Errorf("Unexpected ack %s", rec.Ack)
	}
	if s.Status() != StatusSubmitted || s.Last() != rec {
		t.Errorf("Expected submitted state, got %s", s.Status())
	}
	if len(recorder.attempts) != 1 || recorder.attempts[0].Status != StatusSubmitted {
		t.Errorf("Expected one recorded success, got %+v", recorder.attempts)
	}

	if _, err := s.Submit(context.Background(), run, "u123"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("Expected ErrAlreadySubmitted, got %v", err)
	}
	if len(transport.payloads) != 1 {
		t.Errorf("Expected one request, got %d", len(transport.payloads))
	}

	s.Reset()
	second, err := s.Submit(context.Background(), run, "u123")
	if err != nil {
		t.Fatalf("Submit after Reset failed: %v", err)
	}
	if second.Payload.SurveyID == p.SurveyID {
		t.Error("Survey id reused after Reset")
	}
}

func TestSubmitRetryAfterTransportError(t *testing.T) {
	run := completedRun(t, catalog.PlanHighProteinNonVeg, map[catalog.Slot][]catalog.OrdinalKey{
		catalog.SlotLunch: {2, 5},
	})
	transport := &fakeTransport{err: &TransportError{StatusCode: 502, Body: "bad gateway"}}
	recorder := &fakeRecorder{err: errors.New("disk full")}
	s := NewSubmitter(transport, nil, recorder, nil)

	_, err := s.Submit(context.Background(), run, "u9")
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != 502 {
		t.Fatalf("Expected TransportError 502, got %v", err)
	}
	if s.Status() != StatusFailed || s.Last() != nil {
		t.Errorf("Expected failed state without record, got %s", s.Status())
	}
	if !run.IsTerminal() {
		t.Error("Failure moved the survey off its final step")
	}

	transport.err = nil
	rec, err := s.Submit(context.Background(), run, "u9")
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}

	first := transport.payloads[0]
	if rec.Payload.SurveyID == first.SurveyID {
		t.Error("Retry reused the failed survey id")
	}
	if fmt.Sprint(rec.Payload.Answers) != fmt.Sprint(first.Answers) || rec.Payload.PlanName() != first.PlanName() {
		t.Errorf("Retry changed answers: %+v vs %+v", rec.Payload.Answers, first.Answers)
	}
	if len(recorder.attempts) != 2 {
		t.Errorf("Expected 2 recorded attempts, got %d", len(recorder.attempts))
	}
}

func TestSubmitWrapsNetworkErrors(t *testing.T) {
	run := completedRun(t, catalog.PlanStandardVeg, nil)
	s := NewSubmitter(&fakeTransport{err: errors.New("connection refused")}, nil, nil, nil)

	_, err := s.Submit(context.Background(), run, "u1")
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != 0 {
		t.Fatalf("Expected network TransportError, got %v", err)
	}
}

func TestSubmitGuards(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		run := completedRun(t, catalog.PlanStandardVeg, nil)
		s := NewSubmitter(nil, nil, nil, nil)
		if _, err := s.Submit(context.Background(), run, "u1"); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Expected ErrNotConfigured, got %v", err)
		}
		if s.Status() != StatusIdle {
			t.Errorf("Expected idle, got %s", s.Status())
		}
	})

	t.Run("NotTerminal", func(t *testing.T) {
		transport := &fakeTransport{}
		s := NewSubmitter(transport, nil, nil, nil)
		run := wizard.New(wizard.WithPlanStep, nil)
		if _, err := s.Submit(context.Background(), run, "u1"); !errors.Is(err, ErrNotTerminal) {
			t.Errorf("Expected ErrNotTerminal, got %v", err)
		}
		if len(transport.payloads) != 0 {
			t.Error("Transport called for a non-terminal survey")
		}
	})

	t.Run("InFlight", func(t *testing.T) {
		run := completedRun(t, catalog.PlanStandardVeg, nil)
		transport := &fakeTransport{block: make(chan struct{}), started: make(chan struct{})}
		s := NewSubmitter(transport, nil, nil, nil)

		done := make(chan error, 1)
		go func() {
			_, err := s.Submit(context.Background(), run, "u1")
			done <- err
		}()
		<-transport.started

		if s.Status() != StatusSubmitting {
			t.Errorf("Expected submitting, got %s", s.Status())
		}
		if _, err := s.Submit(context.Background(), run, "u1"); !errors.Is(err, ErrInFlight) {
			t.Errorf("Expected ErrInFlight, got %v", err)
		}
		s.Reset()
		if s.Status() != StatusSubmitting {
			t.Error("Reset interrupted an in-flight submission")
		}

		close(transport.block)
		if err := <-done; err != nil {
			t.Fatalf("First submission failed: %v", err)
		}
		if len(transport.payloads) != 1 {
			t.Errorf("Expected a single request, got %d", len(transport.payloads))
		}
	})
}

func TestBegin(t *testing.T) {
	t.Run("ClaimsBeforeSending", func(t *testing.T) {
		transport := &fakeTransport{}
		s := NewSubmitter(transport, nil, nil, nil)

		claim, err := s.Begin()
		if err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		if s.Status() != StatusSubmitting {
			t.Errorf("Expected submitting after Begin, got %s", s.Status())
		}
		if _, err := s.Begin(); !errors.Is(err, ErrInFlight) {
			t.Errorf("Expected ErrInFlight from a second Begin, got %v", err)
		}
		s.Reset()
		if s.Status() != StatusSubmitting {
			t.Error("Reset released a claimed submitter")
		}
		if len(transport.payloads) != 0 {
			t.Errorf("Begin sent %d requests", len(transport.payloads))
		}

		rec, err := claim.Send(context.Background(), completedRun(t, catalog.PlanStandardVeg, nil), "u1")
		if err != nil || rec == nil {
			t.Fatalf("Send failed: %v", err)
		}
		if _, err := s.Begin(); !errors.Is(err, ErrAlreadySubmitted) {
			t.Errorf("Expected ErrAlreadySubmitted, got %v", err)
		}
	})

	t.Run("NotTerminalReleasesClaim", func(t *testing.T) {
		transport := &fakeTransport{err: &TransportError{StatusCode: 500}}
		s := NewSubmitter(transport, nil, nil, nil)
		_, _ = s.Submit(context.Background(), completedRun(t, catalog.PlanStandardVeg, nil), "u1")

		claim, err := s.Begin()
		if err != nil {
			t.Fatalf("Begin after a failure: %v", err)
		}
		if _, err := claim.Send(context.Background(), wizard.New(wizard.WithPlanStep, nil), "u1"); !errors.Is(err, ErrNotTerminal) {
			t.Errorf("Expected ErrNotTerminal, got %v", err)
		}
		if s.Status() != StatusFailed {
			t.Errorf("Expected the previous status back, got %s", s.Status())
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		if _, err := NewSubmitter(nil, nil, nil, nil).Begin(); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Expected ErrNotConfigured, got %v", err)
		}
	})
}

func TestTransportErrorMessage(t *testing.T) {
	cases := []struct {
		err  *TransportError
		want string
	}{
		{&TransportError{Err: errors.New("timeout")}, "survey api request failed: timeout"},
		{&TransportError{StatusCode: 500}, "survey api error: status 500"},
		{&TransportError{StatusCode: 400, Body: "nope"}, "survey api error: status 400, body: nope"},
	}
	for _, tc := range cases {
		if tc.err.Error() != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, tc.err.Error())
		}
	}
}
