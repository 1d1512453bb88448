package recipe

import (
	"errors"
	"sort"
)

// ErrStepOutOfRange is returned for a step index outside the instructions.
var ErrStepOutOfRange = errors.New("step index out of range")

// StepView is one instruction as shown in kitchen mode.
type StepView struct {
	Index   int    `json:"index"`
	Number  int    `json:"number"`
	Total   int    `json:"total"`
	Text    string `json:"text"`
	IsFirst bool   `json:"isFirst"`
	IsLast  bool   `json:"isLast"`
}

// Kitchen tracks progress through a recipe's instructions. In kitchen mode
// only the current step can be completed; in list mode any step toggles.
type Kitchen struct {
	steps     []string
	current   int
	completed map[int]bool
}

// NewKitchen starts at the first step with nothing completed.
func NewKitchen(r *Recipe) *Kitchen {
	return &Kitchen{steps: r.Instructions, completed: make(map[int]bool)}
}

// KitchenState is the progress a client carries between kitchen requests.
type KitchenState struct {
	Current   int   `json:"current"`
	Completed []int `json:"completed"`
}

// RestoreKitchen resumes a Kitchen from state. Indexes outside the
// instructions are ErrStepOutOfRange.
func RestoreKitchen(r *Recipe, state KitchenState) (*Kitchen, error) {
	k := NewKitchen(r)
	if len(k.steps) == 0 {
		return k, nil
	}
	if state.Current < 0 || state.Current >= len(k.steps) {
		return nil, ErrStepOutOfRange
	}
	k.current = state.Current
	for _, i := range state.Completed {
		if i < 0 || i >= len(k.steps) {
			return nil, ErrStepOutOfRange
		}
		k.completed[i] = true
	}
	return k, nil
}

// State returns the progress to hand back to the client.
func (k *Kitchen) State() KitchenState {
	return KitchenState{Current: k.current, Completed: k.Completed()}
}

// Step returns the view for index i.
func (k *Kitchen) Step(i int) (StepView, error) {
	if i < 0 || i >= len(k.steps) {
		return StepView{}, ErrStepOutOfRange
	}
	return StepView{
		Index:   i,
		Number:  i + 1,
		Total:   len(k.steps),
		Text:    k.steps[i],
		IsFirst: i == 0,
		IsLast:  i == len(k.steps)-1,
	}, nil
}

// Current returns the view for the current step.
func (k *Kitchen) Current() (StepView, error) {
	return k.Step(k.current)
}

// Next advances to the following step; it stays put on the last one.
func (k *Kitchen) Next() {
	if k.current < len(k.steps)-1 {
		k.current++
	}
}

// Prev moves back one step; it stays put on the first one.
func (k *Kitchen) Prev() {
	if k.current > 0 {
		k.current--
	}
}

// Complete marks step i done if it is the current step.
func (k *Kitchen) Complete(i int) bool {
	if i != k.current || i < 0 || i >= len(k.steps) {
		return false
	}
	k.completed[i] = true
	return true
}

// Toggle flips the completion of any step.
func (k *Kitchen) Toggle(i int) error {
	if i < 0 || i >= len(k.steps) {
		return ErrStepOutOfRange
	}
	if k.completed[i] {
		delete(k.completed, i)
	} else {
		k.completed[i] = true
	}
	return nil
}

// Completed returns the completed step indexes in order.
func (k *Kitchen) Completed() []int {
	out := make([]int, 0, len(k.completed))
	for i := range k.completed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Done reports whether every step is completed.
func (k *Kitchen) Done() bool {
	return len(k.steps) > 0 && len(k.completed) == len(k.steps)
}

// Reset clears progress and returns to the first step.
func (k *Kitchen) Reset() {
	k.current = 0
	k.completed = make(map[int]bool)
}
