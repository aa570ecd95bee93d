package crm

import (
	"time"

	"realtorcrm/internal/domain/lead"
)

// Collection is an immutable, ordered set of leads. Every change returns a
// new Collection; the receiver is never modified.
type Collection struct {
	leads []lead.Lead
}

func NewCollection(leads []lead.Lead) Collection {
	return Collection{leads: append([]lead.Lead(nil), leads...)}
}

func (c Collection) Len() int { return len(c.leads) }

// Leads returns a copy safe for the caller to reorder.
func (c Collection) Leads() []lead.Lead {
	return append([]lead.Lead{}, c.leads...)
}

func (c Collection) Find(id string) (lead.Lead, bool) {
	for _, l := range c.leads {
		if l.ID == id {
			return l, true
		}
	}
	return lead.Lead{}, false
}

func (c Collection) Prepend(l lead.Lead) Collection {
	out := make([]lead.Lead, 0, len(c.leads)+1)
	out = append(out, l)
	out = append(out, c.leads...)
	return Collection{leads: out}
}

// Replace swaps the lead with the same id. ok is false when it is absent.
func (c Collection) Replace(l lead.Lead) (Collection, bool) {
	for i, cur := range c.leads {
		if cur.ID == l.ID {
			out := append([]lead.Lead(nil), c.leads...)
			out[i] = l
			return Collection{leads: out}, true
		}
	}
	return c, false
}

func (c Collection) Remove(id string) Collection {
	out := make([]lead.Lead, 0, len(c.leads))
	for _, l := range c.leads {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return Collection{leads: out}
}

// WithStage moves one lead to stage and stamps its last activity.
func (c Collection) WithStage(id string, stage lead.FunnelStage, at time.Time) (Collection, bool) {
	l, ok := c.Find(id)
	if !ok {
		return c, false
	}
	l = l.Clone()
	l.FunnelStage = stage
	l.LastActivityDate = &at
	return c.Replace(l)
}
