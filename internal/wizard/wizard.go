package wizard

import (
	"errors"
	"fmt"

	"meal-survey/internal/catalog"
	"meal-survey/internal/selection"
)

// Variant decides whether the survey opens with a plan-selection step.
type Variant int

const (
	WithPlanStep Variant = iota
	WithoutPlanStep
)

// VariantFor maps the deployment's plan-step switch to a Variant.
func VariantFor(planStep bool) Variant {
	if planStep {
		return WithPlanStep
	}
	return WithoutPlanStep
}

func (v Variant) String() string {
	if v == WithoutPlanStep {
		return "without-plan-step"
	}
	return "with-plan-step"
}

// Step is a single screen of the survey.
type Step string

const (
	StepPlan      Step = "plan"
	StepBreakfast Step = "breakfast"
	StepLunch     Step = "lunch"
	StepDinner    Step = "dinner"
)

// Slot returns the meal slot asked on this step, if any.
func (s Step) Slot() (catalog.Slot, bool) {
	switch s {
	case StepBreakfast:
		return catalog.SlotBreakfast, true
	case StepLunch:
		return catalog.SlotLunch, true
	case StepDinner:
		return catalog.SlotDinner, true
	}
	return "", false
}

var (
	ErrNoPlanStep    = errors.New("survey has no plan step")
	ErrPlanLocked    = errors.New("plan can only be chosen on the plan step")
	ErrNotASlotStep  = errors.New("current step has no meal options")
	ErrUnknownOption = errors.New("option not on current menu")
)

// MenuResolver resolves the options for a slot under a plan.
type MenuResolver interface {
	Resolve(slot catalog.Slot, plan catalog.PlanCategory) []catalog.MenuOption
}

// Controller owns the step index, the chosen plan and the selections of one
// survey run. It is not safe for concurrent use.
type Controller struct {
	variant    Variant
	steps      []Step
	index      int
	plan       catalog.PlanCategory
	selections *selection.Store
	menus      MenuResolver
}

// New creates a controller at the first step with nothing chosen.
// A nil resolver uses the built-in catalog.
func New(variant Variant, menus MenuResolver) *Controller {
	if menus == nil {
		menus = catalog.Default
	}
	steps := []Step{StepBreakfast, StepLunch, StepDinner}
	if variant == WithPlanStep {
		steps = append([]Step{StepPlan}, steps...)
	}
	return &Controller{
		variant:    variant,
		steps:      steps,
		selections: selection.NewStore(),
		menus:      menus,
	}
}

func (c *Controller) Variant() Variant { return c.variant }

// Steps returns a copy of the step sequence.
func (c *Controller) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

func (c *Controller) Len() int   { return len(c.steps) }
func (c *Controller) Index() int { return c.index }
func (c *Controller) Step() Step { return c.steps[c.index] }

// IsTerminal reports whether the run is on its last step, the only one from
// which it may be submitted.
func (c *Controller) IsTerminal() bool { return c.index == len(c.steps)-1 }

func (c *Controller) Plan() catalog.PlanCategory { return c.plan }

func (c *Controller) Selections() selection.Reader { return c.selections }

func (c *Controller) Count(slot catalog.Slot) int { return c.selections.Count(slot) }

// Menu returns the options of the current step, or nil on the plan step.
func (c *Controller) Menu() []catalog.MenuOption {
	slot, ok := c.Step().Slot()
	if !ok {
		return nil
	}
	return c.menus.Resolve(slot, c.plan)
}

// Advance moves to the next step. It is refused on the last step and on the
// plan step until a plan has been chosen.
func (c *Controller) Advance() bool {
	if c.index >= len(c.steps)-1 {
		return false
	}
	if c.Step() == StepPlan && c.plan == catalog.PlanUnset {
		return false
	}
	c.index++
	return true
}

// Retreat moves to the previous step without re-validating it.
func (c *Controller) Retreat() bool {
	if c.index == 0 {
		return false
	}
	c.index--
	return true
}

// ChoosePlan records the plan. Switching to a different plan drops lunch and
// dinner selections since their keys refer to the previous plan's menus.
func (c *Controller) ChoosePlan(p catalog.PlanCategory) error {
	if c.variant == WithoutPlanStep {
		return ErrNoPlanStep
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownPlan, p)
	}
	if c.Step() != StepPlan {
		return ErrPlanLocked
	}
	if c.plan != catalog.PlanUnset && c.plan != p {
		c.selections.Clear(catalog.SlotLunch, catalog.SlotDinner)
	}
	c.plan = p
	return nil
}

// Toggle selects or deselects an option of the current step's menu.
func (c *Controller) Toggle(key catalog.OrdinalKey, selected bool) error {
	slot, ok := c.Step().Slot()
	if !ok {
		return ErrNotASlotStep
	}
	if key < 0 || int(key) >= len(c.menus.Resolve(slot, c.plan)) {
		return fmt.Errorf("%w: %s option %d", ErrUnknownOption, slot, key)
	}
	return c.selections.Toggle(slot, key, selected)
}

// Snapshot is a frozen copy of the state a submission is assembled from.
type Snapshot struct {
	terminal   bool
	plan       catalog.PlanCategory
	selections *selection.Store
}

func (s Snapshot) IsTerminal() bool             { return s.terminal }
func (s Snapshot) Plan() catalog.PlanCategory   { return s.plan }
func (s Snapshot) Selections() selection.Reader { return s.selections }

// Snapshot copies the current plan and selections so they can be read while
// the controller keeps changing.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		terminal:   c.IsTerminal(),
		plan:       c.plan,
		selections: c.selections.Clone(),
	}
}

// Restart returns the run to its initial state.
func (c *Controller) Restart() {
	c.index = 0
	c.plan = catalog.PlanUnset
	c.selections.Reset()
}
