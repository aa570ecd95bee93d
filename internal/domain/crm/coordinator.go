package crm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"realtorcrm/internal/domain/activity"
	"realtorcrm/internal/domain/analytics"
	"realtorcrm/internal/domain/lead"
	"realtorcrm/internal/observability"
	"realtorcrm/internal/pkg/logging"
)

// LeadStore is the remote lead table. Implementations scope every call to
// ownerID and report a foreign id the same way as a missing one.
type LeadStore interface {
	List(ctx context.Context, ownerID string) ([]lead.Lead, error)
	Insert(ctx context.Context, ownerID string, l lead.Lead) (lead.Lead, error)
	Update(ctx context.Context, ownerID, id string, patch lead.Patch) (lead.Lead, int64, error)
	Delete(ctx context.Context, ownerID, id string) (lead.DeleteOutcome, error)
}

type ActivityStore interface {
	List(ctx context.Context, ownerID, leadID string) ([]activity.Activity, error)
	Insert(ctx context.Context, ownerID string, a activity.Activity) (activity.Activity, error)
}

// ChangeListener is told whenever a workspace collection changes.
type ChangeListener interface {
	LeadsChanged(ws *Workspace)
}

// ActivityPublisher forwards stored activities to other systems.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, a activity.Activity) error
}

// Coordinator runs lead mutations against the store and keeps the caller's
// workspace in step with it.
type Coordinator struct {
	leads      LeadStore
	activities ActivityStore
	listener   ChangeListener
	publisher  ActivityPublisher
	log        *zap.Logger
	now        func() time.Time
}

// NewCoordinator wires the stores. listener and publisher may be nil.
func NewCoordinator(leads LeadStore, activities ActivityStore, listener ChangeListener, publisher ActivityPublisher, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		leads:      leads,
		activities: activities,
		listener:   listener,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// Create inserts a lead built from in over the defaults and prepends the
// stored record. Nothing changes locally when the insert fails.
func (c *Coordinator) Create(ctx context.Context, ws *Workspace, in lead.LeadInput) (lead.Lead, error) {
	in.StripProtected()
	in.Normalize()
	if err := in.Validate(); err != nil {
		return lead.Lead{}, c.fail(OpCreate, err)
	}

	l := in.ApplyTo(lead.Defaults())
	if l.FullName == "" {
		return lead.Lead{}, c.fail(OpCreate, lead.ErrFullNameRequired)
	}

	owner := ws.Identity().ID
	created, err := c.leads.Insert(ctx, owner, l)
	if err != nil {
		return lead.Lead{}, c.fail(OpCreate, err)
	}

	ws.apply(func(col Collection) Collection { return col.Prepend(created) })
	c.recordActivity(ctx, owner, activity.LeadCreated(created))
	c.changed(ws)
	observability.RecordMutation(OpCreate, observability.OutcomeSuccess)
	return created, nil
}

// Update writes the present fields of in. A stage change records an
// activity the same way TransitionStage does.
func (c *Coordinator) Update(ctx context.Context, ws *Workspace, id string, in lead.LeadInput) (lead.Lead, error) {
	in.StripProtected()
	in.Normalize()
	if err := in.Validate(); err != nil {
		return lead.Lead{}, c.fail(OpUpdate, err)
	}

	owner := ws.Identity().ID
	prev, known := ws.Snapshot().Find(id)
	patch := in.Patch()

	updated, rows, err := c.leads.Update(ctx, owner, id, patch)
	if err != nil {
		return lead.Lead{}, c.fail(OpUpdate, err)
	}
	if rows == 0 {
		return lead.Lead{}, c.fail(OpUpdate, ErrSilentRejection)
	}

	ws.apply(func(col Collection) Collection {
		next, _ := col.Replace(updated)
		return next
	})
	if stage, ok := patch.Stage(); ok && known && prev.FunnelStage != stage {
		c.recordActivity(ctx, owner, activity.StageChanged(id, prev.FunnelStage, stage))
	}
	c.changed(ws)
	observability.RecordMutation(OpUpdate, observability.OutcomeSuccess)
	return updated, nil
}

// TransitionStage moves a lead optimistically: the workspace shows the new
// stage before the store answers and is put back if the store refuses.
func (c *Coordinator) TransitionStage(ctx context.Context, ws *Workspace, id string, stage lead.FunnelStage) (lead.Lead, error) {
	if !stage.Valid() {
		return lead.Lead{}, c.fail(OpTransition, &lead.EnumError{Field: "funnel_stage", Value: string(stage)})
	}

	at := c.now().UTC()
	pending, prev, gen, ok := ws.beginStage(id, stage, at)
	if !ok {
		return lead.Lead{}, c.fail(OpTransition, ErrLeadNotLoaded)
	}
	c.changed(ws)

	owner := ws.Identity().ID
	updated, rows, err := c.leads.Update(ctx, owner, id, lead.StagePatch(stage, at))
	if err == nil && rows == 0 {
		err = ErrSilentRejection
	}
	if err != nil {
		if ws.settleStage(gen, id, pending, nil) {
			observability.RecordRollback()
			c.changed(ws)
		}
		return lead.Lead{}, c.fail(OpTransition, err)
	}

	ws.settleStage(gen, id, pending, &updated)
	c.recordActivity(ctx, owner, activity.StageChanged(id, prev.FunnelStage, stage))
	c.changed(ws)
	observability.RecordMutation(OpTransition, observability.OutcomeSuccess)
	return updated, nil
}

// Delete removes a lead after the store confirms it. Leads owned by someone
// else are refused without calling the store.
func (c *Coordinator) Delete(ctx context.Context, ws *Workspace, id string) error {
	owner := ws.Identity().ID
	if l, ok := ws.Snapshot().Find(id); ok && l.UserID != owner {
		return c.fail(OpDelete, ErrNotPermitted)
	}

	outcome, err := c.leads.Delete(ctx, owner, id)
	if err != nil {
		return c.fail(OpDelete, err)
	}
	if !outcome.IsConfirmed() {
		return c.fail(OpDelete, ErrSilentRejection)
	}

	ws.apply(func(col Collection) Collection { return col.Remove(id) })
	c.changed(ws)
	observability.RecordMutation(OpDelete, observability.OutcomeSuccess)
	return nil
}

// Refresh replaces the whole collection with the store's view. Optimistic
// changes still in flight can no longer roll back over it.
func (c *Coordinator) Refresh(ctx context.Context, ws *Workspace) (Collection, error) {
	leads, err := c.leads.List(ctx, ws.Identity().ID)
	if err != nil {
		return Collection{}, c.fail(OpRefresh, err)
	}

	col := NewCollection(leads)
	ws.replaceAll(col)
	c.changed(ws)
	return col, nil
}

// Leads returns the workspace collection, loading it on first use.
func (c *Coordinator) Leads(ctx context.Context, ws *Workspace) (Collection, error) {
	if ws.Loaded() {
		return ws.Snapshot(), nil
	}
	return c.Refresh(ctx, ws)
}

// Activities lists the audit trail of one lead, newest first.
func (c *Coordinator) Activities(ctx context.Context, ws *Workspace, leadID string) ([]activity.Activity, error) {
	items, err := c.activities.List(ctx, ws.Identity().ID, leadID)
	if err != nil {
		return nil, c.fail(OpActivities, err)
	}
	return items, nil
}

// Dashboard computes the analytics for the workspace as it is now.
func (c *Coordinator) Dashboard(ctx context.Context, ws *Workspace) (analytics.Dashboard, error) {
	col, err := c.Leads(ctx, ws)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	return analytics.Compute(col.Leads(), c.now()), nil
}

// recordActivity never fails the surrounding operation.
func (c *Coordinator) recordActivity(ctx context.Context, owner string, a activity.Activity) {
	stored, err := c.activities.Insert(ctx, owner, a)
	if err != nil {
		observability.RecordActivityFailure()
		c.log.Warn("failed to record activity",
			zap.String("lead_id", a.RealtorID),
			zap.String("type", string(a.ActivityType)),
			logging.Err(err),
		)
		return
	}

	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishActivity(ctx, stored); err != nil {
		c.log.Warn("failed to publish activity",
			zap.String("activity_id", stored.ID),
			logging.Err(err),
		)
	}
}

func (c *Coordinator) changed(ws *Workspace) {
	if c.listener != nil {
		c.listener.LeadsChanged(ws)
	}
}

func (c *Coordinator) fail(op string, err error) *MutationError {
	me := newMutationError(op, err)

	outcome := observability.OutcomeFailed
	if me.Kind != KindTransient && me.Kind != KindSessionExpired {
		outcome = observability.OutcomeRejected
	}
	observability.RecordMutation(op, outcome)

	if me.Kind == KindTransient || me.Kind == KindSessionExpired {
		c.log.Error("lead operation failed",
			zap.String("op", op),
			zap.Stringer("kind", me.Kind),
			logging.Err(err),
		)
	} else {
		c.log.Info("lead operation refused",
			zap.String("op", op),
			zap.Stringer("kind", me.Kind),
			logging.Err(err),
		)
	}
	return me
}
