package submission

import (
	"sort"

	"meal-survey/internal/catalog"
	"meal-survey/internal/selection"

	"github.com/google/uuid"
)

// Answers holds the "Day: Dish" labels chosen for each slot. Empty slots are
// sent as empty lists.
type Answers struct {
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
}

func (a *Answers) set(slot catalog.Slot, labels []string) {
	switch slot {
	case catalog.SlotBreakfast:
		a.Breakfast = labels
	case catalog.SlotLunch:
		a.Lunch = labels
	case catalog.SlotDinner:
		a.Dinner = labels
	}
}

// For returns the labels recorded for slot.
func (a Answers) For(slot catalog.Slot) []string {
	switch slot {
	case catalog.SlotBreakfast:
		return a.Breakfast
	case catalog.SlotLunch:
		return a.Lunch
	case catalog.SlotDinner:
		return a.Dinner
	}
	return nil
}

// Payload is the body posted to the survey backend. It is not modified after
// assembly.
type Payload struct {
	SurveyID string                `json:"surveyId"`
	UserID   string                `json:"firebaseUid"`
	Plan     *catalog.PlanCategory `json:"subscriptionType"`
	Answers  Answers               `json:"answers"`
}

// PlanName returns the plan as a string, empty when unset.
func (p Payload) PlanName() string {
	if p.Plan == nil {
		return ""
	}
	return string(*p.Plan)
}

// MenuResolver resolves the options for a slot under a plan.
type MenuResolver interface {
	Resolve(slot catalog.Slot, plan catalog.PlanCategory) []catalog.MenuOption
}

// Assembler turns selections into a Payload.
type Assembler struct {
	menus MenuResolver
	newID func() string
}

// NewAssembler creates an Assembler. A nil resolver uses the built-in catalog.
func NewAssembler(menus MenuResolver) *Assembler {
	if menus == nil {
		menus = catalog.Default
	}
	return &Assembler{menus: menus, newID: uuid.NewString}
}

// Assemble builds a payload with a fresh survey id. Selected keys are emitted
// in ascending key order; keys missing from the current menu are skipped.
func (a *Assembler) Assemble(plan catalog.PlanCategory, selections selection.Reader, userID string) Payload {
	p := Payload{
		SurveyID: a.newID(),
		UserID:   userID,
	}
	if plan != catalog.PlanUnset {
		chosen := plan
		p.Plan = &chosen
	}

	for _, slot := range catalog.Slots() {
		menu := a.menus.Resolve(slot, plan)
		labels := make([]string, 0, selections.Count(slot))
		keys := selections.SelectedKeys(slot)
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, key := range keys {
			if key < 0 || int(key) >= len(menu) {
				continue
			}
			labels = append(labels, menu[key].Label())
		}
		p.Answers.set(slot, labels)
	}
	return p
}
