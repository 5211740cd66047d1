package cases

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/feed"
	"github.com/linesmerrill/casetrack-api/models"
	"github.com/linesmerrill/casetrack-api/notify"
)

type statusEvent struct {
	caseID string
	status models.Status
	note   string
}

type recordingNotifier struct {
	mu          sync.Mutex
	transitions []statusEvent
	escalations []string
	err         error
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, c models.Case, s models.Status, note string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transitions = append(n.transitions, statusEvent{caseID: c.ID, status: s, note: note})
	return n.err
}

func (n *recordingNotifier) NotifyEscalation(_ context.Context, c models.Case) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.escalations = append(n.escalations, c.ID)
	return n.err
}

type countingPublisher struct {
	mu    sync.Mutex
	count int
}

func (p *countingPublisher) Publish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
}

func (p *countingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

var testNow = time.Date(2026, 4, 20, 8, 15, 0, 0, time.UTC)

func newTestService() (*Service, *recordingNotifier, *countingPublisher) {
	notifier := &recordingNotifier{}
	changes := &countingPublisher{}
	s := NewService(databases.NewMemoryCaseDatabase(), notifier, changes)
	s.Now = func() time.Time { return testNow }
	return s, notifier, changes
}

func createTheft(t *testing.T, s *Service, victimID string) models.Case {
	t.Helper()
	c, err := s.Create(context.Background(), CreateInput{
		VictimID: victimID,
		Type:     "Theft",
		Province: "Gauteng",
		City:     "Johannesburg",
		Location: "Corner of Main and 5th",
	})
	require.NoError(t, err)
	return c
}

func TestService_Create(t *testing.T) {
	s, notifier, changes := newTestService()

	c := createTheft(t, s, "victim-1")

	assert.NotEmpty(t, c.ID)
	assert.Regexp(t, regexp.MustCompile(`^CT-2026-\d{6}$`), c.CaseNumber)
	assert.Equal(t, models.StatusSubmitted, c.Status)
	assert.Equal(t, 10, c.Progress)
	assert.Equal(t, models.LabelInProgress, c.StatusLabel)
	assert.Equal(t, models.PriorityMedium, c.Priority)
	assert.Equal(t, "Gauteng Central SAPS", c.StationName)
	assert.Equal(t, testNow, c.SubmittedDate)
	assert.Equal(t, testNow, c.LastUpdate)

	require.Len(t, c.Updates, 1)
	assert.Equal(t, models.StatusSubmitted, c.Updates[0].Stage)
	assert.Equal(t, "Case Submitted", c.Updates[0].Title)
	assert.Equal(t, createdDescription, c.Updates[0].Description)
	assert.Equal(t, "victim-1", c.Updates[0].CreatedBy)

	assert.Empty(t, notifier.transitions)
	assert.Equal(t, 1, changes.Count())

	stored, err := s.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.CaseNumber, stored.CaseNumber)
}

func TestService_CreateUsesIncidentDate(t *testing.T) {
	s, _, _ := newTestService()
	incident := time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC)

	c, err := s.Create(context.Background(), CreateInput{VictimID: "v", Type: "Assault", IncidentDate: incident})
	require.NoError(t, err)
	assert.Equal(t, incident, c.SubmittedDate)
	assert.Equal(t, testNow, c.CreatedAt)
	assert.Empty(t, c.StationName)
}

func TestService_CreateRequiresType(t *testing.T) {
	s, _, changes := newTestService()

	_, err := s.Create(context.Background(), CreateInput{VictimID: "v", Type: "  "})
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	assert.Zero(t, changes.Count())
}

func TestService_CreateRegeneratesTakenNumbers(t *testing.T) {
	s, _, _ := newTestService()
	candidates := []string{"CT-2026-000001", "CT-2026-000001", "CT-2026-000002"}
	next := 0
	s.numbers = func(time.Time) string {
		n := candidates[next]
		next++
		return n
	}

	first := createTheft(t, s, "v1")
	second := createTheft(t, s, "v2")

	assert.Equal(t, "CT-2026-000001", first.CaseNumber)
	assert.Equal(t, "CT-2026-000002", second.CaseNumber)
	assert.Equal(t, 3, next)
}

func TestService_CreateGivesUpAfterBoundedAttempts(t *testing.T) {
	s, _, _ := newTestService()
	s.numbers = func(time.Time) string { return "CT-2026-424242" }

	createTheft(t, s, "v1")
	_, err := s.Create(context.Background(), CreateInput{VictimID: "v2", Type: "Theft"})
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestService_CaseNumbersAreUnique(t *testing.T) {
	s, _, _ := newTestService()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		c := createTheft(t, s, fmt.Sprintf("victim-%d", i))
		assert.False(t, seen[c.CaseNumber], "duplicate case number %s", c.CaseNumber)
		seen[c.CaseNumber] = true
	}
}

func TestService_GetUnknown(t *testing.T) {
	s, _, _ := newTestService()
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestService_TransitionToCompleted(t *testing.T) {
	ctx := context.Background()
	s, notifier, changes := newTestService()
	c := createTheft(t, s, "victim-1")

	_, err := s.Transition(ctx, c.ID, models.StatusInvestigation, "", "officer-1")
	require.NoError(t, err)

	done, err := s.Transition(ctx, c.ID, models.StatusCompleted, "Resolved.", "officer-1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, models.LabelCompleted, done.StatusLabel)
	require.Len(t, done.Updates, 3)
	last := done.Updates[2]
	assert.Equal(t, "Case Resolved", last.Title)
	assert.Equal(t, "Resolved.", last.Description)
	assert.Equal(t, models.StatusCompleted, last.Stage)
	assert.Equal(t, "officer-1", last.CreatedBy)

	assert.Equal(t, "Case has been updated to Investigation Started", done.Updates[1].Description)

	require.Len(t, notifier.transitions, 2)
	assert.Equal(t, statusEvent{caseID: c.ID, status: models.StatusCompleted, note: "Resolved."}, notifier.transitions[1])
	assert.Equal(t, 3, changes.Count())
}

func TestService_TransitionUnknownCase(t *testing.T) {
	s, notifier, changes := newTestService()

	_, err := s.Transition(context.Background(), "missing", models.StatusCompleted, "note", "officer-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, notifier.transitions)
	assert.Zero(t, changes.Count())
}

func TestService_TransitionInvalidStatus(t *testing.T) {
	s, notifier, _ := newTestService()
	c := createTheft(t, s, "victim-1")

	_, err := s.Transition(context.Background(), c.ID, models.Status("archived"), "note", "officer-1")
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	assert.Empty(t, notifier.transitions)

	stored, err := s.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Updates, 1)
}

func TestService_TransitionSameAndBackward(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()
	c := createTheft(t, s, "victim-1")

	_, err := s.Transition(ctx, c.ID, models.StatusSubmitted, "still waiting", "officer-1")
	require.NoError(t, err)
	_, err = s.Transition(ctx, c.ID, models.StatusResolution, "", "officer-1")
	require.NoError(t, err)
	back, err := s.Transition(ctx, c.ID, models.StatusUnderReview, "reopened", "officer-1")
	require.NoError(t, err)

	assert.Equal(t, 35, back.Progress)
	assert.Len(t, back.Updates, 4)
}

func TestService_TransitionNotifierFailureKeepsChange(t *testing.T) {
	s, notifier, _ := newTestService()
	notifier.err = errors.New("store unavailable")
	c := createTheft(t, s, "victim-1")

	updated, err := s.Transition(context.Background(), c.ID, models.StatusUnderReview, "", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, updated.Status)
}

func TestService_EscalateTwice(t *testing.T) {
	ctx := context.Background()
	s, notifier, _ := newTestService()
	c := createTheft(t, s, "victim-1")

	_, err := s.Escalate(ctx, c.ID, "admin-1")
	require.NoError(t, err)
	escalated, err := s.Escalate(ctx, c.ID, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, models.PriorityHigh, escalated.Priority)
	assert.Equal(t, models.StatusSubmitted, escalated.Status)
	require.Len(t, escalated.Updates, 3)
	for _, u := range escalated.Updates[1:] {
		assert.Equal(t, escalatedTitle, u.Title)
		assert.Equal(t, escalatedDescription, u.Description)
		assert.Equal(t, models.StatusSubmitted, u.Stage)
	}
	assert.Len(t, notifier.escalations, 2)
}

func TestService_EscalateUnknownCase(t *testing.T) {
	s, notifier, _ := newTestService()
	_, err := s.Escalate(context.Background(), "missing", "admin-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, notifier.escalations)
}

func TestService_FlagStalled(t *testing.T) {
	ctx := context.Background()
	s, _, changes := newTestService()
	c := createTheft(t, s, "victim-1")

	stalled, err := s.FlagStalled(ctx, c.ID, true)
	require.NoError(t, err)
	assert.True(t, stalled.Stalled)
	assert.Equal(t, models.LabelOverdue, stalled.StatusLabel)
	assert.Len(t, stalled.Updates, 1)

	moved, err := s.Transition(ctx, c.ID, models.StatusUnderReview, "", "officer-1")
	require.NoError(t, err)
	assert.False(t, moved.Stalled)
	assert.Equal(t, models.LabelInProgress, moved.StatusLabel)

	_, err = s.FlagStalled(ctx, c.ID, true)
	require.NoError(t, err)
	escalated, err := s.Escalate(ctx, c.ID, "admin-1")
	require.NoError(t, err)
	assert.False(t, escalated.Stalled)
	assert.Equal(t, 5, changes.Count())
}

func TestService_FlagStalledCompletedCase(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()
	c := createTheft(t, s, "victim-1")
	_, err := s.Transition(ctx, c.ID, models.StatusCompleted, "", "officer-1")
	require.NoError(t, err)

	flagged, err := s.FlagStalled(ctx, c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.LabelCompleted, flagged.StatusLabel)
}

func TestService_Assign(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()
	c := createTheft(t, s, "victim-1")

	assigned, err := s.Assign(ctx, c.ID, "officer-7")
	require.NoError(t, err)
	assert.Equal(t, "officer-7", assigned.OfficerID)
	assert.Len(t, assigned.Updates, 1)

	_, err = s.Assign(ctx, c.ID, " ")
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	_, err = s.Assign(ctx, "missing", "officer-7")
	assert.ErrorIs(t, err, models.ErrNotFound)

	mine, err := s.List(ctx, Filter{OfficerID: "officer-7"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, c.ID, mine[0].ID)
}

func TestService_ListByVictim(t *testing.T) {
	s, _, _ := newTestService()
	mine := createTheft(t, s, "victim-1")
	createTheft(t, s, "victim-2")

	cases, err := s.ListByVictim(context.Background(), "victim-1")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, mine.ID, cases[0].ID)

	for _, blank := range []string{"", "   "} {
		cases, err = s.ListByVictim(context.Background(), blank)
		require.NoError(t, err)
		assert.Empty(t, cases)
		assert.NotNil(t, cases)
	}
}

func TestService_ListFilters(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	theft := createTheft(t, s, "v1")
	assault, err := s.Create(ctx, CreateInput{VictimID: "v2", Type: "Assault"})
	require.NoError(t, err)
	fraud, err := s.Create(ctx, CreateInput{VictimID: "v3", Type: "Fraud"})
	require.NoError(t, err)

	_, err = s.Transition(ctx, assault.ID, models.StatusCompleted, "", "officer-1")
	require.NoError(t, err)
	_, err = s.FlagStalled(ctx, fraud.ID, true)
	require.NoError(t, err)

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byType, err := s.List(ctx, Filter{Query: "THEFT"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, theft.ID, byType[0].ID)

	byNumber, err := s.List(ctx, Filter{Query: fraud.CaseNumber})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, fraud.ID, byNumber[0].ID)

	completed, err := s.List(ctx, Filter{Label: "completed"})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, assault.ID, completed[0].ID)

	overdue, err := s.List(ctx, Filter{Label: "overdue"})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, fraud.ID, overdue[0].ID)

	_, err = s.List(ctx, Filter{Label: "archived"})
	assert.ErrorIs(t, err, models.ErrValidationFailed)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	a := createTheft(t, s, "v1")
	b := createTheft(t, s, "v2")
	c, err := s.Create(ctx, CreateInput{VictimID: "v3", Type: "Fraud", Province: "Western Cape"})
	require.NoError(t, err)
	createTheft(t, s, "v4")

	_, err = s.Transition(ctx, a.ID, models.StatusCompleted, "", "o")
	require.NoError(t, err)
	_, err = s.FlagStalled(ctx, b.ID, true)
	require.NoError(t, err)
	_, err = s.Escalate(ctx, c.ID, "admin")
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 2, stats.InProgress)
	assert.Equal(t, 1, stats.Escalated)
	assert.Equal(t, 25, stats.ResolutionRate)
	assert.Equal(t, 3, stats.ByType["Theft"])
	assert.Equal(t, 1, stats.ByStatus[models.StatusCompleted])
	assert.Equal(t, 3, stats.ByStation["Gauteng Central SAPS"])
	assert.Equal(t, 1, stats.ByStation["Western Cape Central SAPS"])
}

func TestService_ConcurrentTransitionsKeepEveryEntry(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()
	c := createTheft(t, s, "victim-1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := models.Statuses[i%len(models.Statuses)]
			_, err := s.Transition(ctx, c.ID, status, "", "officer-1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Updates, 21)
	assert.Equal(t, stored.Updates[20].Stage, stored.Status)
	assert.Equal(t, models.ProgressOf(stored.Status), stored.Progress)
	assert.Zero(t, s.locks.size())
}

func TestScenario_VictimFollowsCaseThroughInvestigation(t *testing.T) {
	ctx := context.Background()
	caseChanges := feed.New()
	notificationChanges := feed.New()
	dispatcher := notify.NewDispatcher(databases.NewMemoryNotificationDatabase(), notificationChanges)
	s := NewService(databases.NewMemoryCaseDatabase(), dispatcher, caseChanges)

	caseEvents := 0
	unsubscribe := caseChanges.Subscribe(func() { caseEvents++ })
	defer unsubscribe()

	c, err := s.Create(ctx, CreateInput{VictimID: "V1", Type: "Theft", Province: "Gauteng", City: "Pretoria"})
	require.NoError(t, err)
	assert.Regexp(t, `^CT-\d{4}-\d{6}$`, c.CaseNumber)

	_, err = s.Transition(ctx, c.ID, models.StatusUnderReview, "", "officer-1")
	require.NoError(t, err)
	c, err = s.Transition(ctx, c.ID, models.StatusInvestigation, "Detective assigned", "officer-1")
	require.NoError(t, err)

	assert.Equal(t, 60, c.Progress)
	assert.Equal(t, models.LabelInProgress, c.StatusLabel)
	assert.Len(t, c.Updates, 3)
	assert.Equal(t, 3, caseEvents)

	unread, err := dispatcher.UnreadCount(ctx, "V1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	list, err := dispatcher.ListForUser(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		assert.Equal(t, c.CaseNumber, n.CaseNumber)
		assert.Equal(t, models.NotificationInfo, n.Type)
	}
}
