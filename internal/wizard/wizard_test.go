package wizard

import (
	"errors"
	"testing"

	"meal-survey/internal/catalog"
)

func TestNew(t *testing.T) {
	t.Run("WithPlanStep", func(t *testing.T) {
		c := New(WithPlanStep, nil)
		if c.Len() != 4 {
			t.Fatalf("Expected 4 steps, got %d", c.Len())
		}
		if c.Step() != StepPlan {
			t.Errorf("Expected first step %q, got %q", StepPlan, c.Step())
		}
		if c.Index() != 0 || c.Plan() != catalog.PlanUnset {
			t.Errorf("Unexpected initial state: index=%d plan=%q", c.Index(), c.Plan())
		}
		if c.Menu() != nil {
			t.Error("Expected no menu on the plan step")
		}
	})

	t.Run("WithoutPlanStep", func(t *testing.T) {
		c := New(WithoutPlanStep, nil)
		steps := c.Steps()
		if len(steps) != 3 || steps[0] != StepBreakfast || steps[2] != StepDinner {
			t.Errorf("Unexpected steps %v", steps)
		}
		if err := c.ChoosePlan(catalog.PlanStandardVeg); !errors.Is(err, ErrNoPlanStep) {
			t.Errorf("Expected ErrNoPlanStep, got %v", err)
		}
	})

	t.Run("VariantFor", func(t *testing.T) {
		if VariantFor(true) != WithPlanStep || VariantFor(false) != WithoutPlanStep {
			t.Error("VariantFor mapped the switch incorrectly")
		}
	})
}

func TestAdvance(t *testing.T) {
	t.Run("RefusedWithoutPlan", func(t *testing.T) {
		c := New(WithPlanStep, nil)
		for i := 0; i < 3; i++ {
			if c.Advance() {
				t.Fatal("Advance succeeded without a plan")
			}
			if c.Index() != 0 {
				t.Fatalf("Refused advance moved index to %d", c.Index())
			}
		}
	})

	t.Run("IncrementsByOne", func(t *testing.T) {
		c := New(WithPlanStep, nil)
		if err := c.ChoosePlan(catalog.PlanStandardVeg); err != nil {
			t.Fatalf("ChoosePlan failed: %v", err)
		}
		for want := 1; want < c.Len(); want++ {
			if !c.Advance() {
				t.Fatalf("Advance refused at index %d", c.Index())
			}
			if c.Index() != want {
				t.Fatalf("Expected index %d, got %d", want, c.Index())
			}
		}
		if !c.IsTerminal() {
			t.Error("Expected terminal state on the last step")
		}
		if c.Advance() {
			t.Error("Advance succeeded past the last step")
		}
		if c.Index() != c.Len()-1 {
			t.Errorf("Index moved past the end: %d", c.Index())
		}
	})
}

func TestRetreat(t *testing.T) {
	c := New(WithPlanStep, nil)
	if c.Retreat() {
		t.Fatal("Retreat succeeded at index 0")
	}

	_ = c.ChoosePlan(catalog.PlanStandardNonVeg)
	c.Advance()
	c.Advance()
	before := c.Index()

	if !c.Retreat() {
		t.Fatal("Retreat refused")
	}
	if !c.Advance() {
		t.Fatal("Advance refused after retreat")
	}
	if c.Index() != before {
		t.Errorf("Round trip ended at %d, expected %d", c.Index(), before)
	}
}

func TestChoosePlan(t *testing.T) {
	t.Run("Unknown", func(t *testing.T) {
		c := New(WithPlanStep, nil)
		if err := c.ChoosePlan(catalog.PlanCategory("Keto")); !errors.Is(err, catalog.ErrUnknownPlan) {
			t.Errorf("Expected ErrUnknownPlan, got %v", err)
		}
	})

	t.Run("LockedAfterPlanStep", func(t *testing.T) {
		c := New(WithPlanStep, nil)
		_ = c.ChoosePlan(catalog.PlanStandardVeg)
		c.Advance()
		if err := c.ChoosePlan(catalog.PlanHighProteinVeg); !errors.Is(err, ErrPlanLocked) {
			t.Errorf("Expected ErrPlanLocked, got %v", err)
		}
		if c.Plan() != catalog.PlanStandardVeg {
			t.Errorf("Plan changed to %q", c.Plan())
		}
	})

	t.Run("ChangeClearsLunchAndDinner", func(t *testing.T) {
		c := New(WithPlanStep, nil)
		_ = c.ChoosePlan(catalog.PlanStandardVeg)
		c.Advance()
		_ = c.Toggle(0, true)
		c.Advance()
		_ = c.Toggle(1, true)
		c.Advance()
		_ = c.Toggle(2, true)

		for c.Retreat() {
		}
		if err := c.ChoosePlan(catalog.PlanStandardNonVeg); err != nil {
			t.Fatalf("ChoosePlan failed: %v", err)
		}
		if c.Count(catalog.SlotBreakfast) != 1 {
			t.Error("Plan change dropped breakfast selections")
		}
		if c.Count(catalog.SlotLunch) != 0 || c.Count(catalog.SlotDinner) != 0 {
			t.Error("Plan change kept lunch or dinner selections")
		}
	})

	t.Run("SamePlanKeepsSelections", func(t *testing.T) {
		c := New(WithPlanStep, nil)
		_ = c.ChoosePlan(catalog.PlanStandardVeg)
		c.Advance()
		c.Advance()
		_ = c.Toggle(3, true)
		c.Retreat()
		c.Retreat()
		_ = c.ChoosePlan(catalog.PlanStandardVeg)
		if c.Count(catalog.SlotLunch) != 1 {
			t.Error("Re-choosing the same plan cleared lunch")
		}
	})
}

func TestToggle(t *testing.T) {
	c := New(WithPlanStep, nil)
	if err := c.Toggle(0, true); !errors.Is(err, ErrNotASlotStep) {
		t.Errorf("Expected ErrNotASlotStep on plan step, got %v", err)
	}

	_ = c.ChoosePlan(catalog.PlanHighProteinVeg)
	c.Advance()

	if err := c.Toggle(7, true); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("Expected ErrUnknownOption, got %v", err)
	}
	if err := c.Toggle(6, true); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !c.Selections().IsSelected(catalog.SlotBreakfast, 6) {
		t.Error("Expected breakfast option 6 to be selected")
	}

	c.Advance()
	menu := c.Menu()
	if menu[0].Name != catalog.Resolve(catalog.SlotLunch, catalog.PlanHighProteinVeg)[0].Name {
		t.Errorf("Lunch menu does not follow the chosen plan: %q", menu[0].Name)
	}
}

func TestWithoutPlanStepUsesDefaultMenus(t *testing.T) {
	c := New(WithoutPlanStep, nil)
	c.Advance()
	if c.Step() != StepLunch {
		t.Fatalf("Expected lunch, got %q", c.Step())
	}
	if c.Menu()[0].Name != catalog.Resolve(catalog.SlotLunch, catalog.DefaultPlan)[0].Name {
		t.Error("Expected the default plan's lunch menu")
	}
}

func TestRestart(t *testing.T) {
	c := New(WithPlanStep, nil)
	_ = c.ChoosePlan(catalog.PlanStandardVeg)
	c.Advance()
	_ = c.Toggle(1, true)
	c.Advance()

	c.Restart()
	if c.Index() != 0 || c.Plan() != catalog.PlanUnset || c.Count(catalog.SlotBreakfast) != 0 {
		t.Errorf("Restart left state behind: index=%d plan=%q", c.Index(), c.Plan())
	}
}

func TestSnapshot(t *testing.T) {
	c := New(WithoutPlanStep, nil)
	_ = c.Toggle(3, true)
	c.Advance()
	c.Advance()

	snap := c.Snapshot()
	c.Retreat()
	c.Retreat()
	_ = c.Toggle(3, false)

	if !snap.IsTerminal() {
		t.Error("Snapshot lost the terminal flag")
	}
	if !snap.Selections().IsSelected(catalog.SlotBreakfast, 3) {
		t.Error("Snapshot followed a later toggle")
	}
	if snap.Plan() != catalog.PlanUnset {
		t.Errorf("Unexpected plan %q", snap.Plan())
	}
}
