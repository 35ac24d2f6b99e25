package domain

import "fmt"

// ProofStep is one citation in a structured derivation. A Deferred step is
// an explicit forward assumption: it may name a declaration that has not
// been registered yet, and flags the theorem until repaired. A plain step
// must resolve against the registry at registration time.
type ProofStep struct {
	Cites    string `json:"cites"`
	Deferred bool   `json:"deferred,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Proof is an ordered derivation citing previously registered
// declarations. Incomplete marks an admitted proof: the theorem is still
// registered, but flagged and excluded from verified exports.
type Proof struct {
	Steps      []ProofStep `json:"steps"`
	Incomplete bool        `json:"incomplete,omitempty"`
}

// Citations returns the de-duplicated resolved (non-deferred) citation
// names in step order.
func (p *Proof) Citations() []string {
	return p.collect(false)
}

// DeferredCitations returns the de-duplicated deferred citation names in
// step order.
func (p *Proof) DeferredCitations() []string {
	return p.collect(true)
}

func (p *Proof) collect(deferred bool) []string {
	var out []string
	seen := make(map[string]struct{}, len(p.Steps))
	for _, step := range p.Steps {
		if step.Deferred != deferred {
			continue
		}
		if _, dup := seen[step.Cites]; dup {
			continue
		}
		seen[step.Cites] = struct{}{}
		out = append(out, step.Cites)
	}
	return out
}

// HasGaps reports whether the proof is admitted or leans on deferred
// citations.
func (p *Proof) HasGaps() bool {
	if p.Incomplete {
		return true
	}
	for _, step := range p.Steps {
		if step.Deferred {
			return true
		}
	}
	return false
}

// Validate checks the proof's internal structure. Every step must name a
// citation; an empty derivation is only acceptable when explicitly
// admitted.
func (p *Proof) Validate() error {
	if len(p.Steps) == 0 && !p.Incomplete {
		return fmt.Errorf("proof has no steps and is not marked incomplete")
	}
	for i, step := range p.Steps {
		if step.Cites == "" {
			return fmt.Errorf("proof step %d cites nothing", i)
		}
	}
	return nil
}
