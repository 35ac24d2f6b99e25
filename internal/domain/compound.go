package domain

// Field is one typed component of a compound entity schema.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"` // declared sort or compound name
}

// Compound is a record type built from sorts and other compounds, plus
// invariants: proof obligations over the fields that every instance must
// witness (e.g. a Line requires two Points and a proof they are distinct).
// No instance exists without all witnesses, so a compound value can never
// be in an invalid state.
type Compound struct {
	Name       string      `json:"name"`
	Fields     []Field     `json:"fields"`
	Invariants []Statement `json:"invariants,omitempty"`
}

// FieldType returns the declared type of the named field.
func (c *Compound) FieldType(name string) (string, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// ValidateInvariants checks that every invariant statement ranges only over
// the compound's own fields. An invariant mentioning anything else is
// rejected with ErrInvalidInvariant naming the stray variable.
func (c *Compound) ValidateInvariants() error {
	fields := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		fields[f.Name] = struct{}{}
	}

	for i := range c.Invariants {
		inv := &c.Invariants[i]
		for _, v := range inv.Vars {
			if _, ok := fields[v.Name]; !ok {
				return NewError(ErrInvalidInvariant, c.Name,
					"invariant %d binds %q, which is not a field", i, v.Name)
			}
		}
		for _, atom := range inv.Atoms() {
			for _, arg := range atom.Args {
				if _, ok := fields[arg]; !ok {
					return NewError(ErrInvalidInvariant, c.Name,
						"invariant %d references %q, which is not a field", i, arg)
				}
			}
		}
	}
	return nil
}
