package crm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"realtorcrm/internal/domain/activity"
	"realtorcrm/internal/domain/lead"
	"realtorcrm/internal/pkg/dberr"
)

/* ==================== MOCKS ==================== */

type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) List(ctx context.Context, ownerID string) ([]lead.Lead, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lead.Lead), args.Error(1)
}

func (m *MockLeadStore) Insert(ctx context.Context, ownerID string, l lead.Lead) (lead.Lead, error) {
	args := m.Called(ctx, ownerID, l)
	return args.Get(0).(lead.Lead), args.Error(1)
}

func (m *MockLeadStore) Update(ctx context.Context, ownerID, id string, patch lead.Patch) (lead.Lead, int64, error) {
	args := m.Called(ctx, ownerID, id, patch)
	return args.Get(0).(lead.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadStore) Delete(ctx context.Context, ownerID, id string) (lead.DeleteOutcome, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(lead.DeleteOutcome), args.Error(1)
}

type MockActivityStore struct {
	mock.Mock
}

func (m *MockActivityStore) List(ctx context.Context, ownerID, leadID string) ([]activity.Activity, error) {
	args := m.Called(ctx, ownerID, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.Activity), args.Error(1)
}

func (m *MockActivityStore) Insert(ctx context.Context, ownerID string, a activity.Activity) (activity.Activity, error) {
	args := m.Called(ctx, ownerID, a)
	return args.Get(0).(activity.Activity), args.Error(1)
}

type recordingListener struct {
	mu    sync.Mutex
	calls int
}

func (l *recordingListener) LeadsChanged(*Workspace) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishActivity(ctx context.Context, a activity.Activity) error {
	return m.Called(ctx, a).Error(0)
}

/* ==================== HELPERS ==================== */

var fixedNow = time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

type fixture struct {
	leads      *MockLeadStore
	activities *MockActivityStore
	listener   *recordingListener
	coord      *Coordinator
	ws         *Workspace
}

func newFixture(t *testing.T, seed ...lead.Lead) *fixture {
	t.Helper()
	f := &fixture{
		leads:      new(MockLeadStore),
		activities: new(MockActivityStore),
		listener:   &recordingListener{},
	}
	f.coord = NewCoordinator(f.leads, f.activities, f.listener, nil, zap.NewNop())
	f.coord.now = func() time.Time { return fixedNow }
	f.ws = NewWorkspace(Identity{ID: "u1", Email: "ana@kw.com"})
	f.ws.replaceAll(NewCollection(seed))
	return f
}

func stageOf(t *testing.T, ws *Workspace, id string) lead.FunnelStage {
	t.Helper()
	l, ok := ws.Snapshot().Find(id)
	require.True(t, ok, "lead %s missing", id)
	return l.FunnelStage
}

func activityOfType(typ activity.Type) interface{} {
	return mock.MatchedBy(func(a activity.Activity) bool { return a.ActivityType == typ })
}

/* ==================== CREATE ==================== */

func TestCreate_PrependsCanonicalRecordAndLogsActivity(t *testing.T) {
	f := newFixture(t, newLead("old", "u1", "Old", lead.StageProspect))

	in := lead.LeadInput{
		FullName:      lead.Value("Ana Ruiz"),
		PainPointTags: lead.Value(lead.Tags{"Leads", " ", "Cierre "}),
	}

	f.leads.On("Insert", mock.Anything, "u1", mock.MatchedBy(func(l lead.Lead) bool {
		return l.FullName == "Ana Ruiz" &&
			l.FunnelStage == lead.StageProspect &&
			l.TeamSize == lead.TeamIndividual &&
			assert.ObjectsAreEqual([]string{"Leads", "Cierre"}, l.PainPointTags)
	})).Return(newLead("new", "u1", "Ana Ruiz", lead.StageProspect), nil)
	f.activities.On("Insert", mock.Anything, "u1", mock.MatchedBy(func(a activity.Activity) bool {
		return a.RealtorID == "new" && a.ActivityType == activity.TypeLeadCreated
	})).Return(activity.Activity{ID: "act"}, nil)

	created, err := f.coord.Create(context.Background(), f.ws, in)

	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	leads := f.ws.Snapshot().Leads()
	require.Len(t, leads, 2)
	assert.Equal(t, "new", leads[0].ID)
	assert.Equal(t, 1, f.listener.calls)
	f.leads.AssertExpectations(t)
	f.activities.AssertExpectations(t)
}

func TestCreate_StoreFailureLeavesCollectionUntouched(t *testing.T) {
	f := newFixture(t, newLead("old", "u1", "Old", lead.StageProspect))

	f.leads.On("Insert", mock.Anything, "u1", mock.Anything).
		Return(lead.Lead{}, &dberr.StoreError{
			Code:    dberr.CodeUniqueViolation,
			Message: "duplicate key value violates unique constraint",
			Details: "Key (email)=(a@b.com) already exists.",
		})

	_, err := f.coord.Create(context.Background(), f.ws, lead.LeadInput{FullName: lead.Value("Ana")})

	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindRejected, me.Kind)
	assert.Equal(t, "Error al guardar: Error de duplicado: Key (email)=(a@b.com) already exists.", me.Message)
	assert.Equal(t, 1, f.ws.Snapshot().Len())
	f.activities.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_RequiresFullName(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.Create(context.Background(), f.ws, lead.LeadInput{Agency: lead.Value("KW")})

	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindValidation, me.Kind)
	f.leads.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_ActivityFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t)

	f.leads.On("Insert", mock.Anything, "u1", mock.Anything).
		Return(newLead("new", "u1", "Ana", lead.StageProspect), nil)
	f.activities.On("Insert", mock.Anything, "u1", mock.Anything).
		Return(activity.Activity{}, errors.New("activities table locked"))

	_, err := f.coord.Create(context.Background(), f.ws, lead.LeadInput{FullName: lead.Value("Ana")})

	require.NoError(t, err)
	assert.Equal(t, 1, f.ws.Snapshot().Len())
}

func TestCreate_PublishesStoredActivity(t *testing.T) {
	f := newFixture(t)
	pub := new(MockPublisher)
	f.coord.publisher = pub

	f.leads.On("Insert", mock.Anything, "u1", mock.Anything).
		Return(newLead("new", "u1", "Ana", lead.StageProspect), nil)
	f.activities.On("Insert", mock.Anything, "u1", mock.Anything).
		Return(activity.Activity{ID: "act-1", RealtorID: "new"}, nil)
	pub.On("PublishActivity", mock.Anything, mock.MatchedBy(func(a activity.Activity) bool { return a.ID == "act-1" })).
		Return(errors.New("broker down"))

	_, err := f.coord.Create(context.Background(), f.ws, lead.LeadInput{FullName: lead.Value("Ana")})

	require.NoError(t, err)
	pub.AssertExpectations(t)
}

/* ==================== UPDATE ==================== */

func TestUpdate_ReplacesWithCanonicalAndRecordsStageChange(t *testing.T) {
	f := newFixture(t, newLead("a", "u1", "Ana", lead.StageProspect))

	canonical := newLead("a", "u1", "Ana María", lead.StageQualified)
	f.leads.On("Update", mock.Anything, "u1", "a", mock.MatchedBy(func(p lead.Patch) bool {
		_, hasID := p["id"]
		_, hasOwner := p["user_id"]
		return !hasID && !hasOwner && p["full_name"] == "Ana María"
	})).Return(canonical, int64(1), nil)
	f.activities.On("Insert", mock.Anything, "u1", mock.MatchedBy(func(a activity.Activity) bool {
		return a.ActivityType == activity.TypeStageChanged &&
			a.Details == "La etapa cambió de 'Prospect' a 'Qualified'."
	})).Return(activity.Activity{}, nil)

	in := lead.LeadInput{
		ID:          lead.Value("hijack"),
		UserID:      lead.Value("u2"),
		FullName:    lead.Value("Ana María"),
		FunnelStage: lead.Value(lead.StageQualified),
	}
	got, err := f.coord.Update(context.Background(), f.ws, "a", in)

	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.FullName)
	l, _ := f.ws.Snapshot().Find("a")
	assert.Equal(t, canonical, l)
	f.activities.AssertExpectations(t)
}

func TestUpdate_SameStageRecordsNoActivity(t *testing.T) {
	f := newFixture(t, newLead("a", "u1", "Ana", lead.StageProspect))

	f.leads.On("Update", mock.Anything, "u1", "a", mock.Anything).
		Return(newLead("a", "u1", "Ana", lead.StageProspect), int64(1), nil)

	_, err := f.coord.Update(context.Background(), f.ws, "a", lead.LeadInput{FunnelStage: lead.Value(lead.StageProspect)})

	require.NoError(t, err)
	f.activities.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_ZeroRowsIsSilentRejection(t *testing.T) {
	f := newFixture(t, newLead("a", "u1", "Ana", lead.StageProspect))

	f.leads.On("Update", mock.Anything, "u1", "a", mock.Anything).Return(lead.Lead{}, int64(0), nil)

	_, err := f.coord.Update(context.Background(), f.ws, "a", lead.LeadInput{FullName: lead.Value("X")})

	assert.ErrorIs(t, err, ErrSilentRejection)
	l, _ := f.ws.Snapshot().Find("a")
	assert.Equal(t, "Ana", l.FullName)
}

/* ==================== TRANSITION ==================== */

func TestTransitionStage_OptimisticThenCanonical(t *testing.T) {
	f := newFixture(t, newLead("x", "u1", "Xavi", lead.StageProspect))

	f.leads.On("Update", mock.Anything, "u1", "x", lead.StagePatch(lead.StageQualified, fixedNow)).
		Run(func(mock.Arguments) {
			// the local view already shows the new stage
			assert.Equal(t, lead.StageQualified, stageOf(t, f.ws, "x"))
		}).
		Return(newLead("x", "u1", "Xavi", lead.StageQualified), int64(1), nil)
	f.activities.On("Insert", mock.Anything, "u1", activityOfType(activity.TypeStageChanged)).
		Return(activity.Activity{}, nil)

	got, err := f.coord.TransitionStage(context.Background(), f.ws, "x", lead.StageQualified)

	require.NoError(t, err)
	assert.Equal(t, lead.StageQualified, got.FunnelStage)
	assert.Equal(t, lead.StageQualified, stageOf(t, f.ws, "x"))
	f.activities.AssertExpectations(t)
}

func TestTransitionStage_FailureRollsBackWithoutActivity(t *testing.T) {
	f := newFixture(t, newLead("x", "u1", "Xavi", lead.StageProspect))

	f.leads.On("Update", mock.Anything, "u1", "x", mock.Anything).
		Return(lead.Lead{}, int64(0), errors.New("network unreachable"))

	_, err := f.coord.TransitionStage(context.Background(), f.ws, "x", lead.StageQualified)

	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindTransient, me.Kind)
	assert.Equal(t, "Error al actualizar: network unreachable", me.Message)
	assert.Equal(t, lead.StageProspect, stageOf(t, f.ws, "x"))
	l, _ := f.ws.Snapshot().Find("x")
	assert.Nil(t, l.LastActivityDate)
	f.activities.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionStage_ZeroRowsRollsBack(t *testing.T) {
	f := newFixture(t, newLead("x", "u1", "Xavi", lead.StageContacted))

	f.leads.On("Update", mock.Anything, "u1", "x", mock.Anything).Return(lead.Lead{}, int64(0), nil)

	_, err := f.coord.TransitionStage(context.Background(), f.ws, "x", lead.StageWon)

	assert.ErrorIs(t, err, ErrSilentRejection)
	assert.Equal(t, lead.StageContacted, stageOf(t, f.ws, "x"))
}

func TestTransitionStage_UnknownLeadOrStage(t *testing.T) {
	f := newFixture(t, newLead("x", "u1", "Xavi", lead.StageProspect))

	_, err := f.coord.TransitionStage(context.Background(), f.ws, "missing", lead.StageWon)
	assert.ErrorIs(t, err, ErrLeadNotLoaded)

	_, err = f.coord.TransitionStage(context.Background(), f.ws, "x", lead.FunnelStage("Closed"))
	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindValidation, me.Kind)

	f.leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionStage_AnyToAny(t *testing.T) {
	f := newFixture(t, newLead("x", "u1", "Xavi", lead.StageWon))

	f.leads.On("Update", mock.Anything, "u1", "x", mock.Anything).
		Return(newLead("x", "u1", "Xavi", lead.StageNurturing), int64(1), nil)
	f.activities.On("Insert", mock.Anything, "u1", mock.Anything).Return(activity.Activity{}, nil)

	_, err := f.coord.TransitionStage(context.Background(), f.ws, "x", lead.StageNurturing)

	require.NoError(t, err)
	assert.Equal(t, lead.StageNurturing, stageOf(t, f.ws, "x"))
}

func TestTransitionStage_ConcurrentRollbackTouchesOnlyItsLead(t *testing.T) {
	f := newFixture(t,
		newLead("a", "u1", "Ana", lead.StageProspect),
		newLead("b", "u1", "Bruno", lead.StageProspect),
	)

	release := make(chan struct{})
	f.leads.On("Update", mock.Anything, "u1", "a", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(lead.Lead{}, int64(0), errors.New("timeout"))
	f.leads.On("Update", mock.Anything, "u1", "b", mock.Anything).
		Return(newLead("b", "u1", "Bruno", lead.StageContacted), int64(1), nil)
	f.activities.On("Insert", mock.Anything, "u1", mock.Anything).Return(activity.Activity{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.coord.TransitionStage(context.Background(), f.ws, "a", lead.StageQualified)
		done <- err
	}()

	require.Eventually(t, func() bool { return stageOf(t, f.ws, "a") == lead.StageQualified }, time.Second, 5*time.Millisecond)

	_, err := f.coord.TransitionStage(context.Background(), f.ws, "b", lead.StageContacted)
	require.NoError(t, err)

	close(release)
	assert.Error(t, <-done)

	assert.Equal(t, lead.StageProspect, stageOf(t, f.ws, "a"))
	assert.Equal(t, lead.StageContacted, stageOf(t, f.ws, "b"))
}

// Two overlapping moves of the same lead, both refused by the store: the
// lead must end on the stage the store still holds.
func TestTransitionStage_SameLeadDoubleFailureRestoresCommittedStage(t *testing.T) {
	tests := []struct {
		name       string
		failsFirst lead.FunnelStage
	}{
		{name: "older refused first", failsFirst: lead.StageQualified},
		{name: "newer refused first", failsFirst: lead.StageWon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, newLead("a", "u1", "Ana", lead.StageProspect))

			release := map[lead.FunnelStage]chan struct{}{
				lead.StageQualified: make(chan struct{}),
				lead.StageWon:       make(chan struct{}),
			}
			for stage, ch := range release {
				ch := ch
				f.leads.On("Update", mock.Anything, "u1", "a", lead.StagePatch(stage, fixedNow)).
					Run(func(mock.Arguments) { <-ch }).
					Return(lead.Lead{}, int64(0), errors.New("timeout"))
			}

			done := map[lead.FunnelStage]chan error{
				lead.StageQualified: make(chan error, 1),
				lead.StageWon:       make(chan error, 1),
			}
			move := func(stage lead.FunnelStage) {
				go func() {
					_, err := f.coord.TransitionStage(context.Background(), f.ws, "a", stage)
					done[stage] <- err
				}()
				require.Eventually(t, func() bool { return stageOf(t, f.ws, "a") == stage }, time.Second, 5*time.Millisecond)
			}
			move(lead.StageQualified)
			move(lead.StageWon)

			failsLast := lead.StageWon
			if tt.failsFirst == lead.StageWon {
				failsLast = lead.StageQualified
			}
			close(release[tt.failsFirst])
			assert.Error(t, <-done[tt.failsFirst])
			close(release[failsLast])
			assert.Error(t, <-done[failsLast])

			assert.Equal(t, lead.StageProspect, stageOf(t, f.ws, "a"))
			f.activities.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTransitionStage_SameLeadOlderFailureNewerSuccess(t *testing.T) {
	f := newFixture(t, newLead("a", "u1", "Ana", lead.StageProspect))

	release := make(chan struct{})
	f.leads.On("Update", mock.Anything, "u1", "a", lead.StagePatch(lead.StageQualified, fixedNow)).
		Run(func(mock.Arguments) { <-release }).
		Return(lead.Lead{}, int64(0), errors.New("timeout"))
	f.leads.On("Update", mock.Anything, "u1", "a", lead.StagePatch(lead.StageWon, fixedNow)).
		Return(newLead("a", "u1", "Ana", lead.StageWon), int64(1), nil)
	f.activities.On("Insert", mock.Anything, "u1", mock.Anything).Return(activity.Activity{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.coord.TransitionStage(context.Background(), f.ws, "a", lead.StageQualified)
		done <- err
	}()
	require.Eventually(t, func() bool { return stageOf(t, f.ws, "a") == lead.StageQualified }, time.Second, 5*time.Millisecond)

	_, err := f.coord.TransitionStage(context.Background(), f.ws, "a", lead.StageWon)
	require.NoError(t, err)

	close(release)
	assert.Error(t, <-done)
	assert.Equal(t, lead.StageWon, stageOf(t, f.ws, "a"))
}

func TestTransitionStage_RefreshDiscardsLateRollback(t *testing.T) {
	f := newFixture(t, newLead("a", "u1", "Ana", lead.StageProspect))

	release := make(chan struct{})
	f.leads.On("Update", mock.Anything, "u1", "a", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(lead.Lead{}, int64(0), errors.New("timeout"))
	f.leads.On("List", mock.Anything, "u1").
		Return([]lead.Lead{newLead("a", "u1", "Ana", lead.StageNegotiation)}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.coord.TransitionStage(context.Background(), f.ws, "a", lead.StageQualified)
		done <- err
	}()
	require.Eventually(t, func() bool { return stageOf(t, f.ws, "a") == lead.StageQualified }, time.Second, 5*time.Millisecond)

	_, err := f.coord.Refresh(context.Background(), f.ws)
	require.NoError(t, err)

	close(release)
	assert.Error(t, <-done)
	assert.Equal(t, lead.StageNegotiation, stageOf(t, f.ws, "a"))
}

/* ==================== DELETE ==================== */

func TestDelete_ForeignOwnerNeverReachesStore(t *testing.T) {
	f := newFixture(t, newLead("x", "someone-else", "Xavi", lead.StageProspect))

	err := f.coord.Delete(context.Background(), f.ws, "x")

	assert.ErrorIs(t, err, ErrNotPermitted)
	f.leads.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1, f.ws.Snapshot().Len())
}

func TestDelete_ZeroAffectedKeepsLead(t *testing.T) {
	f := newFixture(t, newLead("x", "u1", "Xavi", lead.StageProspect))

	f.leads.On("Delete", mock.Anything, "u1", "x").Return(lead.NotFound, nil)

	err := f.coord.Delete(context.Background(), f.ws, "x")

	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindSilentRejection, me.Kind)
	_, ok := f.ws.Snapshot().Find("x")
	assert.True(t, ok)
}

func TestDelete_ConfirmedRemovesLead(t *testing.T) {
	f := newFixture(t, newLead("x", "u1", "Xavi", lead.StageProspect), newLead("y", "u1", "Yago", lead.StageProspect))

	f.leads.On("Delete", mock.Anything, "u1", "x").Return(lead.Confirmed(1), nil)

	require.NoError(t, f.coord.Delete(context.Background(), f.ws, "x"))

	_, ok := f.ws.Snapshot().Find("x")
	assert.False(t, ok)
	assert.Equal(t, 1, f.ws.Snapshot().Len())
}

func TestDelete_StoreError(t *testing.T) {
	f := newFixture(t, newLead("x", "u1", "Xavi", lead.StageProspect))

	f.leads.On("Delete", mock.Anything, "u1", "x").
		Return(lead.NotFound, &dberr.StoreError{Message: "permission denied for table realtors"})

	err := f.coord.Delete(context.Background(), f.ws, "x")

	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindRejected, me.Kind)
	assert.Equal(t, 1, f.ws.Snapshot().Len())
}

/* ==================== REFRESH ==================== */

func TestRefresh_ReplacesCollection(t *testing.T) {
	f := newFixture(t, newLead("stale", "u1", "Stale", lead.StageProspect))
	gen := f.ws.Generation()

	f.leads.On("List", mock.Anything, "u1").
		Return([]lead.Lead{newLead("a", "u1", "Ana", lead.StageWon)}, nil)

	col, err := f.coord.Refresh(context.Background(), f.ws)

	require.NoError(t, err)
	assert.Equal(t, 1, col.Len())
	_, ok := f.ws.Snapshot().Find("stale")
	assert.False(t, ok)
	assert.Greater(t, f.ws.Generation(), gen)
}

func TestRefresh_AuthExpired(t *testing.T) {
	f := newFixture(t, newLead("a", "u1", "Ana", lead.StageProspect))

	f.leads.On("List", mock.Anything, "u1").Return(nil, &dberr.StoreError{Code: "PGRST301", Message: "JWT expired"})

	_, err := f.coord.Refresh(context.Background(), f.ws)

	assert.ErrorIs(t, err, ErrSessionExpired)
	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindSessionExpired, me.Kind)
}

func TestRefresh_TransientKeepsCollection(t *testing.T) {
	f := newFixture(t, newLead("a", "u1", "Ana", lead.StageProspect))

	f.leads.On("List", mock.Anything, "u1").Return(nil, errors.New("connection reset"))

	_, err := f.coord.Refresh(context.Background(), f.ws)

	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindTransient, me.Kind)
	assert.Equal(t, 1, f.ws.Snapshot().Len())
}

func TestLeads_LoadsOnce(t *testing.T) {
	f := newFixture(t)
	ws := NewWorkspace(Identity{ID: "u2"})

	f.leads.On("List", mock.Anything, "u2").Return([]lead.Lead{newLead("a", "u2", "Ana", lead.StageProspect)}, nil).Once()

	for i := 0; i < 2; i++ {
		col, err := f.coord.Leads(context.Background(), ws)
		require.NoError(t, err)
		assert.Equal(t, 1, col.Len())
	}
	f.leads.AssertNumberOfCalls(t, "List", 1)
}

func TestDashboard_UsesWorkspaceCollection(t *testing.T) {
	v := 1200.0
	won := newLead("w", "u1", "Won", lead.StageWon)
	won.PotentialContractValue = &v
	f := newFixture(t, won)

	d, err := f.coord.Dashboard(context.Background(), f.ws)

	require.NoError(t, err)
	assert.InDelta(t, 100.0, d.RecurringRevenue, 1e-9)
	assert.Equal(t, 1, d.LeadCount)
}
