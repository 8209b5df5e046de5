package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// PlanCategory is the subscription plan chosen at the start of the survey.
// The zero value means no plan has been chosen.
type PlanCategory string

const (
	PlanUnset             PlanCategory = ""
	PlanStandardVeg       PlanCategory = "Standard Veg"
	PlanStandardNonVeg    PlanCategory = "Standard Non-Veg"
	PlanHighProteinVeg    PlanCategory = "High-Protein Veg"
	PlanHighProteinNonVeg PlanCategory = "High-Protein Non-Veg"
)

// DefaultPlan is used for lunch and dinner menus when no plan is chosen.
const DefaultPlan = PlanStandardVeg

// Slot is a meal question of the survey.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
)

var (
	ErrUnknownPlan = errors.New("unknown plan category")
	ErrUnknownSlot = errors.New("unknown meal slot")
)

// OrdinalKey identifies an option by its position in the slot's fixed menu.
type OrdinalKey int

// MenuOption is a single selectable dish.
type MenuOption struct {
	Key         OrdinalKey `json:"key"`
	Day         string     `json:"day"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

// Label renders the option the way it is submitted: "Monday: Poha".
func (o MenuOption) Label() string {
	return o.Day + ": " + o.Name
}

// Section holds the heading shown above a slot's options.
type Section struct {
	Title    string
	Subtitle string
}

// Plans returns the selectable plan categories in display order.
func Plans() []PlanCategory {
	return []PlanCategory{PlanStandardVeg, PlanStandardNonVeg, PlanHighProteinVeg, PlanHighProteinNonVeg}
}

// Slots returns the meal slots in survey order.
func Slots() []Slot {
	return []Slot{SlotBreakfast, SlotLunch, SlotDinner}
}

// Valid reports whether p is one of the known categories.
func (p PlanCategory) Valid() bool {
	for _, known := range Plans() {
		if p == known {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known slots.
func (s Slot) Valid() bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner:
		return true
	}
	return false
}

// ParsePlan matches a plan name case-insensitively.
func ParsePlan(name string) (PlanCategory, error) {
	trimmed := strings.TrimSpace(name)
	for _, p := range Plans() {
		if strings.EqualFold(string(p), trimmed) {
			return p, nil
		}
	}
	return PlanUnset, fmt.Errorf("%w: %q", ErrUnknownPlan, name)
}

// ParseSlot matches a slot name case-insensitively.
func ParseSlot(name string) (Slot, error) {
	s := Slot(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	return s, nil
}

// Resolver returns the menu for a slot under a plan.
type Resolver struct {
	breakfast []MenuOption
	byPlan    map[Slot]map[PlanCategory][]MenuOption
	fallback  PlanCategory
}

// Default is the resolver backed by the built-in weekly menus.
var Default = NewResolver()

// NewResolver builds a resolver over the built-in menus.
func NewResolver() *Resolver {
	return &Resolver{
		breakfast: build(breakfastMenu),
		byPlan: map[Slot]map[PlanCategory][]MenuOption{
			SlotLunch:  buildAll(lunchMenus),
			SlotDinner: buildAll(dinnerMenus),
		},
		fallback: DefaultPlan,
	}
}

// Resolve returns the ordered options for slot. Breakfast ignores plan; an
// unset or unknown plan falls back to DefaultPlan for lunch and dinner.
// The returned slice is a copy and may be modified by the caller.
func (r *Resolver) Resolve(slot Slot, plan PlanCategory) []MenuOption {
	var src []MenuOption
	switch slot {
	case SlotBreakfast:
		src = r.breakfast
	case SlotLunch, SlotDinner:
		menus := r.byPlan[slot]
		opts, ok := menus[plan]
		if !ok {
			opts = menus[r.fallback]
		}
		src = opts
	default:
		return nil
	}
	out := make([]MenuOption, len(src))
	copy(out, src)
	return out
}

// Lookup finds a single option by key.
func (r *Resolver) Lookup(slot Slot, plan PlanCategory, key OrdinalKey) (MenuOption, bool) {
	opts := r.Resolve(slot, plan)
	if key < 0 || int(key) >= len(opts) {
		return MenuOption{}, false
	}
	return opts[key], true
}

// SectionFor returns the heading for slot.
func SectionFor(slot Slot) Section {
	return sections[slot]
}

// Resolve is a shorthand for Default.Resolve.
func Resolve(slot Slot, plan PlanCategory) []MenuOption {
	return Default.Resolve(slot, plan)
}

func build(dishes [7]dish) []MenuOption {
	opts := make([]MenuOption, len(dishes))
	for i, d := range dishes {
		opts[i] = MenuOption{
			Key:         OrdinalKey(i),
			Day:         weekdays[i],
			Name:        d.name,
			Description: d.description,
		}
	}
	return opts
}

func buildAll(menus map[PlanCategory][7]dish) map[PlanCategory][]MenuOption {
	out := make(map[PlanCategory][]MenuOption, len(menus))
	for plan, dishes := range menus {
		out[plan] = build(dishes)
	}
	return out
}
