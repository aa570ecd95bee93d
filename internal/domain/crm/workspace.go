package crm

import (
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"realtorcrm/internal/domain/lead"
)

// Identity is the authenticated user a workspace belongs to.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// DisplayName falls back to the capitalized local part of the email.
func (i Identity) DisplayName() string {
	if strings.TrimSpace(i.Name) != "" {
		return i.Name
	}
	local, _, _ := strings.Cut(i.Email, "@")
	if local == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}

// Workspace is the per-session state: who is signed in and the local lead
// collection. The collection is swapped as a whole under the lock; readers
// get an immutable value.
type Workspace struct {
	mu         sync.RWMutex
	identity   Identity
	leads      Collection
	loaded     bool
	generation uint64

	// pending holds the unconfirmed stage changes per lead, oldest first.
	pending map[string][]*pendingStage
}

// pendingStage is one optimistic stage change waiting for the store. base is
// the lead as it should look if this change is refused.
type pendingStage struct {
	base  lead.Lead
	stage lead.FunnelStage
}

func NewWorkspace(id Identity) *Workspace {
	return &Workspace{identity: id}
}

func (w *Workspace) Identity() Identity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.identity
}

// setIdentity refreshes the display profile. The user id never changes.
func (w *Workspace) setIdentity(id Identity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id.ID == w.identity.ID {
		w.identity = id
	}
}

func (w *Workspace) Snapshot() Collection {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.leads
}

// Loaded reports whether a full fetch has completed at least once.
func (w *Workspace) Loaded() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loaded
}

// Generation changes on every authoritative reload.
func (w *Workspace) Generation() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.generation
}

// apply runs fn on the current collection and returns the generation it ran in.
func (w *Workspace) apply(fn func(Collection) Collection) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.leads = fn(w.leads)
	return w.generation
}

// beginStage shows stage on the lead right away and queues the change behind
// any earlier unconfirmed ones for the same lead. prev is the lead as it was
// displayed before the change.
func (w *Workspace) beginStage(id string, stage lead.FunnelStage, at time.Time) (p *pendingStage, prev lead.Lead, gen uint64, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, ok = w.leads.Find(id)
	if !ok {
		return nil, lead.Lead{}, w.generation, false
	}
	w.leads, _ = w.leads.WithStage(id, stage, at)
	p = &pendingStage{base: prev, stage: stage}
	if w.pending == nil {
		w.pending = make(map[string][]*pendingStage)
	}
	w.pending[id] = append(w.pending[id], p)
	return p, prev, w.generation, true
}

// settleStage resolves a change queued by beginStage. committed is the stored
// record on success and nil on failure. Only the newest change in a lead's
// queue writes to the collection; an older one hands its outcome to the next
// change as that change's base. It reports whether a refused change was
// rolled back in the collection.
func (w *Workspace) settleStage(gen uint64, id string, p *pendingStage, committed *lead.Lead) (rolledBack bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen {
		return false
	}
	queue := w.pending[id]
	idx := -1
	for i, q := range queue {
		if q == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	outcome := p.base
	if committed != nil {
		outcome = *committed
	}
	if idx < len(queue)-1 {
		queue[idx+1].base = outcome
	} else if cur, found := w.leads.Find(id); found && (committed != nil || cur.FunnelStage == p.stage) {
		// a refused change yields to a full update that landed meanwhile
		w.leads, _ = w.leads.Replace(outcome)
		rolledBack = committed == nil
	}

	queue = append(queue[:idx], queue[idx+1:]...)
	if len(queue) == 0 {
		delete(w.pending, id)
	} else {
		w.pending[id] = queue
	}
	return rolledBack
}

func (w *Workspace) replaceAll(c Collection) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.leads = c
	w.loaded = true
	w.pending = nil
	w.generation++
	return w.generation
}
