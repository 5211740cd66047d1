// Package cases owns the lifecycle of tracked cases: creation, status
// transitions, escalation and the timeline every change appends to.
package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/models"
)

const (
	createdDescription   = "Your case has been successfully submitted and assigned a case number."
	escalatedTitle       = "Case Escalated"
	escalatedDescription = "This case has been escalated for priority handling by administration."
)

// Repository is the set of case operations used by the HTTP layer
type Repository interface {
	Create(ctx context.Context, in CreateInput) (models.Case, error)
	Get(ctx context.Context, id string) (models.Case, error)
	ListByVictim(ctx context.Context, victimID string) ([]models.Case, error)
	List(ctx context.Context, f Filter) ([]models.Case, error)
	Transition(ctx context.Context, caseID string, newStatus models.Status, note, actingUserID string) (models.Case, error)
	Escalate(ctx context.Context, caseID, actingUserID string) (models.Case, error)
	Assign(ctx context.Context, caseID, officerID string) (models.Case, error)
	FlagStalled(ctx context.Context, caseID string, stalled bool) (models.Case, error)
	Stats(ctx context.Context) (models.CaseStats, error)
}

// Notifier is told about case events that concern the victim
type Notifier interface {
	NotifyStatusChange(ctx context.Context, c models.Case, newStatus models.Status, note string) error
	NotifyEscalation(ctx context.Context, c models.Case) error
}

// Publisher announces that the set of cases changed
type Publisher interface {
	Publish()
}

// CreateInput holds the values a victim submits for a new case
type CreateInput struct {
	VictimID     string
	Type         string
	Description  string
	Province     string
	City         string
	Location     string
	Anonymous    bool
	IncidentDate time.Time
}

// Filter narrows the dashboard listing. Empty fields match everything.
type Filter struct {
	// Query matches the case number or type, ignoring case
	Query string
	// Label is a label slug: completed, in-progress or overdue
	Label     string
	OfficerID string
}

// Service implements Repository on top of a CaseDatabase
type Service struct {
	DB       databases.CaseDatabase
	Notifier Notifier
	Changes  Publisher
	Now      func() time.Time

	locks   *keyedMutex
	numbers NumberGenerator
}

// NewService creates a case service. notifier and changes may be nil.
func NewService(db databases.CaseDatabase, notifier Notifier, changes Publisher) *Service {
	return &Service{
		DB:       db,
		Notifier: notifier,
		Changes:  changes,
		Now:      time.Now,
		locks:    newKeyedMutex(),
		numbers:  RandomNumber,
	}
}

// Create stores a new submitted case with its first timeline entry
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Case, error) {
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		return models.Case{}, &models.ValidationError{Field: "type", Message: "is required"}
	}

	now := s.now()
	submitted := now
	if !in.IncidentDate.IsZero() {
		submitted = in.IncidentDate
	}

	c := models.Case{
		ID:            uuid.NewString(),
		Type:          in.Type,
		Description:   in.Description,
		Province:      in.Province,
		City:          in.City,
		Location:      in.Location,
		StationName:   StationFor(in.Province),
		Anonymous:     in.Anonymous,
		VictimID:      in.VictimID,
		Priority:      models.PriorityMedium,
		SubmittedDate: submitted,
		LastUpdate:    now,
		CreatedAt:     now,
	}
	c.SetStatus(models.StatusSubmitted)
	c.Updates = []models.CaseUpdate{{
		ID:          uuid.NewString(),
		Date:        now,
		Title:       models.TitleOf(models.StatusSubmitted),
		Description: createdDescription,
		Stage:       models.StatusSubmitted,
		CreatedBy:   in.VictimID,
	}}

	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		c.CaseNumber = s.numbers(now)
		err = s.DB.InsertOne(ctx, c)
		if !errors.Is(err, models.ErrDuplicate) {
			break
		}
		zap.S().Debugf("case number %s already taken, regenerating", c.CaseNumber)
	}
	if err != nil {
		return models.Case{}, fmt.Errorf("failed to create case: %w", err)
	}

	zap.S().Infow("case created", "caseId", c.ID, "caseNumber", c.CaseNumber, "victimId", c.VictimID)
	s.publish()
	return c, nil
}

// Get returns the case with the given id
func (s *Service) Get(ctx context.Context, id string) (models.Case, error) {
	c, err := s.DB.FindOne(ctx, id)
	if err != nil {
		return models.Case{}, err
	}
	return *c, nil
}

// ListByVictim returns the cases owned by victimID, newest first. A blank
// victimID owns nothing.
func (s *Service) ListByVictim(ctx context.Context, victimID string) ([]models.Case, error) {
	if strings.TrimSpace(victimID) == "" {
		return []models.Case{}, nil
	}
	return s.DB.Find(ctx, databases.CaseFilter{VictimID: victimID})
}

// List returns the cases matching f, newest first
func (s *Service) List(ctx context.Context, f Filter) ([]models.Case, error) {
	label := strings.ToLower(strings.TrimSpace(f.Label))
	if label != "" && !validLabelSlug(label) {
		return nil, &models.ValidationError{Field: "label", Message: fmt.Sprintf("unknown label %q", f.Label)}
	}

	all, err := s.DB.Find(ctx, databases.CaseFilter{OfficerID: f.OfficerID})
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Case, 0, len(all))
	for _, c := range all {
		if label != "" && c.StatusLabel.LabelSlug() != label {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(c.CaseNumber), query) &&
			!strings.Contains(strings.ToLower(c.Type), query) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Transition moves a case to newStatus and appends a timeline entry.
// Moving to the current or an earlier stage is allowed.
func (s *Service) Transition(ctx context.Context, caseID string, newStatus models.Status, note, actingUserID string) (models.Case, error) {
	if !newStatus.Valid() {
		return models.Case{}, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}

	updated, err := s.mutate(ctx, caseID, func(c *models.Case, now time.Time) *models.CaseUpdate {
		c.SetStatus(newStatus)
		c.LastUpdate = now
		return &models.CaseUpdate{
			ID:          uuid.NewString(),
			Date:        now,
			Title:       models.TitleOf(newStatus),
			Description: models.DescriptionFor(newStatus, note),
			Stage:       newStatus,
			CreatedBy:   actingUserID,
		}
	})
	if err != nil {
		return models.Case{}, err
	}

	zap.S().Infow("case status changed",
		"caseId", updated.ID,
		"caseNumber", updated.CaseNumber,
		"status", updated.Status,
		"actingUserId", actingUserID,
	)
	if s.Notifier != nil {
		if err := s.Notifier.NotifyStatusChange(ctx, updated, newStatus, note); err != nil {
			zap.S().Errorw("failed to notify status change", "caseId", updated.ID, "error", err)
		}
	}
	return updated, nil
}

// Escalate raises a case to high priority and appends a timeline entry
func (s *Service) Escalate(ctx context.Context, caseID, actingUserID string) (models.Case, error) {
	updated, err := s.mutate(ctx, caseID, func(c *models.Case, now time.Time) *models.CaseUpdate {
		c.Priority = models.PriorityHigh
		c.SetStalled(false)
		c.LastUpdate = now
		return &models.CaseUpdate{
			ID:          uuid.NewString(),
			Date:        now,
			Title:       escalatedTitle,
			Description: escalatedDescription,
			Stage:       c.Status,
			CreatedBy:   actingUserID,
		}
	})
	if err != nil {
		return models.Case{}, err
	}

	zap.S().Infow("case escalated", "caseId", updated.ID, "caseNumber", updated.CaseNumber, "actingUserId", actingUserID)
	if s.Notifier != nil {
		if err := s.Notifier.NotifyEscalation(ctx, updated); err != nil {
			zap.S().Errorw("failed to notify escalation", "caseId", updated.ID, "error", err)
		}
	}
	return updated, nil
}

// Assign sets the investigating officer of a case
func (s *Service) Assign(ctx context.Context, caseID, officerID string) (models.Case, error) {
	officerID = strings.TrimSpace(officerID)
	if officerID == "" {
		return models.Case{}, &models.ValidationError{Field: "officerId", Message: "is required"}
	}
	return s.mutate(ctx, caseID, func(c *models.Case, now time.Time) *models.CaseUpdate {
		c.OfficerID = officerID
		c.LastUpdate = now
		return nil
	})
}

// FlagStalled marks a case as overdue, or clears the mark
func (s *Service) FlagStalled(ctx context.Context, caseID string, stalled bool) (models.Case, error) {
	return s.mutate(ctx, caseID, func(c *models.Case, now time.Time) *models.CaseUpdate {
		c.SetStalled(stalled)
		c.LastUpdate = now
		return nil
	})
}

// Stats summarises every case
func (s *Service) Stats(ctx context.Context) (models.CaseStats, error) {
	all, err := s.DB.Find(ctx, databases.CaseFilter{})
	if err != nil {
		return models.CaseStats{}, err
	}
	return Summarise(all), nil
}

// mutate applies change to the current state of a case while holding the
// case lock, then writes the changed fields and the returned timeline entry
// in one store call.
func (s *Service) mutate(ctx context.Context, caseID string, change func(c *models.Case, now time.Time) *models.CaseUpdate) (models.Case, error) {
	unlock := s.locks.Lock(caseID)
	defer unlock()

	current, err := s.DB.FindOne(ctx, caseID)
	if err != nil {
		return models.Case{}, err
	}

	appended := change(current, s.now())
	updated, err := s.DB.Apply(ctx, caseID, current.Fields(), appended)
	if err != nil {
		return models.Case{}, err
	}

	s.publish()
	return *updated, nil
}

func (s *Service) publish() {
	if s.Changes != nil {
		s.Changes.Publish()
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// StationFor returns the police station a case in province is routed to
func StationFor(province string) string {
	province = strings.TrimSpace(province)
	if province == "" {
		return ""
	}
	return province + " Central SAPS"
}

func validLabelSlug(slug string) bool {
	switch slug {
	case models.LabelCompleted.LabelSlug(), models.LabelInProgress.LabelSlug(), models.LabelOverdue.LabelSlug():
		return true
	}
	return false
}
