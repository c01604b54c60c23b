package schedule

// Constant always recommends the same fixed action.
// Useful as the MUST_RESEED underlayer in tests and as a
// never-reseed placeholder for callers that manage reseeding
// themselves.
type Constant struct {
	sticky
	action Action
}

// NewConstant builds a Constant schedule that always reads as
// action (subject to the sticky MUST_RESEED rule).
func NewConstant(action Action) *Constant {
	return &Constant{action: action}
}

func (c *Constant) Read() Action {
	return c.apply(c.action)
}

func (c *Constant) NotifyReseed() {
	c.clear()
}
