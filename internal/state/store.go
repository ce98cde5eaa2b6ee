// Package state owns the registry collections. All mutations go through a
// Store, which rewrites the full snapshot to its persister afterwards and
// publishes an activity event. Readers get deep copies.
package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/activity"
	"github.com/agentmatrix-dev/agentmatrix/internal/metrics"
	"github.com/agentmatrix-dev/agentmatrix/internal/validation"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

var (
	// ErrNotFound is returned when no item has the requested id.
	ErrNotFound = errors.New("item not found")
	// ErrForbidden is returned when the user's role does not allow the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid is returned for malformed mutation input.
	ErrInvalid = errors.New("invalid input")
)

// Persister receives the full registry after every mutation.
type Persister interface {
	Save(ctx context.Context, snap models.Snapshot) error
}

// Notifier receives activity events, including user-facing errors.
type Notifier interface {
	Publish(event activity.Event) activity.Event
}

// Store is the application state: the agent and MCP server collections.
type Store struct {
	mu         sync.RWMutex
	agents     []*models.Item
	mcpServers []*models.Item

	persist Persister
	notify  Notifier
	logger  zerolog.Logger

	now   func() time.Time
	newID func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for audit records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how ids are assigned to new items.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a Store holding a copy of initial. persist and notify may be nil.
func New(initial models.Snapshot, persist Persister, notify Notifier, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		agents:     models.CloneItems(initial.Agents),
		mcpServers: models.CloneItems(initial.MCPServers),
		persist:    persist,
		notify:     notify,
		logger:     logger.With().Str("component", "state").Logger(),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	if s.agents == nil {
		s.agents = []*models.Item{}
	}
	if s.mcpServers == nil {
		s.mcpServers = []*models.Item{}
	}
	for _, o := range opts {
		o(s)
	}
	s.updateGauges()
	return s
}

// Snapshot returns a deep copy of both collections.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Snapshot{
		Agents:     models.CloneItems(s.agents),
		MCPServers: models.CloneItems(s.mcpServers),
	}
}

// Get returns a copy of the item with id and the collection it belongs to.
func (s *Store) Get(id string) (*models.Item, models.Kind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, kind, _ := s.find(id)
	if it == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return it.Clone(), kind, nil
}

// Register validates and adds a new item. Validation failures are returned
// as validation.Errors holding every violation.
func (s *Store) Register(ctx context.Context, kind models.Kind, draft *models.Item, user User) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := append(append([]*models.Item{}, s.agents...), s.mcpServers...)
	if err := validation.ValidateRegistration(draft, existing); err != nil {
		metrics.Registrations.WithLabelValues(string(kind), "invalid").Inc()
		s.publish(activity.Event{Type: activity.TypeError, Kind: string(kind), User: user.Name, Message: err.Error()})
		return nil, err
	}

	it := draft.Clone()
	it.Name = strings.TrimSpace(it.Name)
	if it.Status == "" {
		it.Status = models.StatusUnknown
	}
	added := s.insertLocked(kind, it, user, "Registered")
	metrics.Registrations.WithLabelValues(string(kind), "ok").Inc()
	s.commitLocked(ctx, activity.Event{Type: activity.TypeRegistered, Message: "registered " + kind.Label()}, added, kind, user)
	return added.Clone(), nil
}

// Add inserts an item without registration checks. It is used for items
// produced by the builder and by text classification.
func (s *Store) Add(ctx context.Context, kind models.Kind, item *models.Item, user User) (*models.Item, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: item is required", ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	added := s.insertLocked(kind, item.Clone(), user, "Created")
	s.commitLocked(ctx, activity.Event{Type: activity.TypeRegistered, Message: "created " + kind.Label()}, added, kind, user)
	return added.Clone(), nil
}

func (s *Store) insertLocked(kind models.Kind, it *models.Item, user User, action string) *models.Item {
	if it.ID == "" || s.idTakenLocked(it.ID) {
		it.ID = s.newID()
	}
	if it.GovernanceStatus == "" {
		it.GovernanceStatus = models.GovernancePending
	}
	it.AuditLogs = append(it.AuditLogs, s.audit(action, user))
	if kind == models.KindAgent {
		s.agents = append(s.agents, it)
	} else {
		s.mcpServers = append(s.mcpServers, it)
	}
	return it
}

func (s *Store) idTakenLocked(id string) bool {
	it, _, _ := s.find(id)
	return it != nil
}

// Unregister removes an item. Only admins may unregister.
func (s *Store) Unregister(ctx context.Context, id string, user User) error {
	if !user.CanGovern() {
		return fmt.Errorf("%w: only admins can unregister items", ErrForbidden)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	it, kind, idx := s.find(id)
	if it == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if kind == models.KindAgent {
		s.agents = append(s.agents[:idx], s.agents[idx+1:]...)
	} else {
		s.mcpServers = append(s.mcpServers[:idx], s.mcpServers[idx+1:]...)
	}
	s.commitLocked(ctx, activity.Event{Type: activity.TypeUnregistered, Message: "unregistered " + kind.Label()}, it, kind, user)
	return nil
}

// Approve marks an item approved. Only admins may decide.
func (s *Store) Approve(ctx context.Context, id string, user User) (*models.Item, error) {
	return s.decide(ctx, id, user, models.GovernanceApproved)
}

// Reject marks an item rejected. Only admins may decide.
func (s *Store) Reject(ctx context.Context, id string, user User) (*models.Item, error) {
	return s.decide(ctx, id, user, models.GovernanceRejected)
}

func (s *Store) decide(ctx context.Context, id string, user User, status models.GovernanceStatus) (*models.Item, error) {
	if !user.CanGovern() {
		return nil, fmt.Errorf("%w: only admins can change governance status", ErrForbidden)
	}
	eventType := activity.TypeApproved
	action := "Approved"
	if status == models.GovernanceRejected {
		eventType = activity.TypeRejected
		action = "Rejected"
	}
	it, err := s.mutate(ctx, id, user, activity.Event{Type: eventType, Message: "governance status set to " + string(status)},
		func(it *models.Item) error {
			it.GovernanceStatus = status
			it.AuditLogs = append(it.AuditLogs, s.audit(action, user))
			return nil
		})
	if err == nil {
		metrics.GovernanceDecisions.WithLabelValues(string(status)).Inc()
	}
	return it, err
}

// SetVisibility sets the item's visibility.
func (s *Store) SetVisibility(ctx context.Context, id string, v models.Visibility, user User) (*models.Item, error) {
	if v != models.VisibilityPublic && v != models.VisibilityPrivate {
		return nil, fmt.Errorf("%w: visibility must be public or private", ErrInvalid)
	}
	return s.mutate(ctx, id, user, activity.Event{Type: activity.TypeVisibility, Message: "visibility set to " + string(v)},
		func(it *models.Item) error {
			it.Visibility = v
			it.AuditLogs = append(it.AuditLogs, s.audit("Visibility set to "+string(v), user))
			return nil
		})
}

// ToggleVisibility flips between public and private.
func (s *Store) ToggleVisibility(ctx context.Context, id string, user User) (*models.Item, error) {
	it, _, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	next := models.VisibilityPrivate
	if models.VisibilityOf(it) == models.VisibilityPrivate {
		next = models.VisibilityPublic
	}
	return s.SetVisibility(ctx, id, next, user)
}

// AddComment appends "user: text" to the item's comments.
func (s *Store) AddComment(ctx context.Context, id string, user User, text string) (*models.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment is empty", ErrInvalid)
	}
	author := user.Name
	if author == "" {
		author = "anonymous"
	}
	return s.mutate(ctx, id, user, activity.Event{Type: activity.TypeComment, Message: text},
		func(it *models.Item) error {
			it.Comments = append(it.Comments, author+": "+text)
			return nil
		})
}

// AddVersion appends a release entry. Developers and admins may publish.
func (s *Store) AddVersion(ctx context.Context, id string, user User, v, changelog string) (*models.Item, error) {
	if !user.CanBuild() {
		return nil, fmt.Errorf("%w: only developers and admins can publish versions", ErrForbidden)
	}
	if err := validation.ValidateVersionLabel(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return s.mutate(ctx, id, user, activity.Event{Type: activity.TypeVersion, Message: "version " + v + " added"},
		func(it *models.Item) error {
			for _, existing := range it.Versions {
				if existing.V == v {
					return fmt.Errorf("%w: version %s already exists", ErrInvalid, v)
				}
			}
			it.Versions = append(it.Versions, models.Version{V: v, Changelog: changelog})
			it.AuditLogs = append(it.AuditLogs, s.audit("Version "+v+" added", user))
			return nil
		})
}

// Replace swaps both collections wholesale, as an import does.
func (s *Store) Replace(ctx context.Context, snap models.Snapshot, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agents = models.CloneItems(snap.Agents)
	s.mcpServers = models.CloneItems(snap.MCPServers)
	if s.agents == nil {
		s.agents = []*models.Item{}
	}
	if s.mcpServers == nil {
		s.mcpServers = []*models.Item{}
	}
	msg := fmt.Sprintf("imported %d agents and %d MCP servers", len(s.agents), len(s.mcpServers))
	s.commitLocked(ctx, activity.Event{Type: activity.TypeImported, Message: msg}, nil, "", user)
}

// RecordUsage counts one invocation against the item.
func (s *Store) RecordUsage(ctx context.Context, id string, success bool) (*models.Item, error) {
	return s.mutateQuiet(ctx, id, func(it *models.Item) {
		u := models.UsageStatsOf(it)
		u.Invocations++
		if success {
			u.Success++
		} else {
			u.Error++
		}
		it.UsageStats = &u
	})
}

// SetStatus records the latest reachability of the item.
func (s *Store) SetStatus(ctx context.Context, id string, status models.Status) (*models.Item, error) {
	return s.mutateQuiet(ctx, id, func(it *models.Item) {
		it.Status = status
	})
}

// Report publishes a user-facing error message.
func (s *Store) Report(user User, message string) {
	s.publish(activity.Event{Type: activity.TypeError, User: user.Name, Message: message})
}

func (s *Store) mutate(ctx context.Context, id string, user User, event activity.Event, fn func(*models.Item) error) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, kind, _ := s.find(id)
	if it == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	work := it.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	*it = *work
	s.commitLocked(ctx, event, it, kind, user)
	return it.Clone(), nil
}

// mutateQuiet changes telemetry fields. It persists but does not publish.
func (s *Store) mutateQuiet(ctx context.Context, id string, fn func(*models.Item)) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, _, _ := s.find(id)
	if it == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(it)
	s.persistLocked(ctx)
	return it.Clone(), nil
}

func (s *Store) commitLocked(ctx context.Context, event activity.Event, it *models.Item, kind models.Kind, user User) {
	s.persistLocked(ctx)
	s.updateGaugesLocked()
	if it != nil {
		event.ItemID = it.ID
		event.ItemName = it.Name
	}
	if kind != "" {
		event.Kind = string(kind)
	}
	event.User = user.Name
	s.publish(event)
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.persist == nil {
		return
	}
	snap := models.Snapshot{Agents: models.CloneItems(s.agents), MCPServers: models.CloneItems(s.mcpServers)}
	if err := s.persist.Save(ctx, snap); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist registry")
	}
}

func (s *Store) publish(event activity.Event) {
	if s.notify != nil {
		s.notify.Publish(event)
	}
}

func (s *Store) find(id string) (*models.Item, models.Kind, int) {
	for i, it := range s.agents {
		if it != nil && it.ID == id {
			return it, models.KindAgent, i
		}
	}
	for i, it := range s.mcpServers {
		if it != nil && it.ID == id {
			return it, models.KindMCP, i
		}
	}
	return nil, "", -1
}

func (s *Store) audit(action string, user User) models.AuditLog {
	name := user.Name
	if name == "" {
		name = "system"
	}
	return models.AuditLog{Time: s.now().UTC().Format(time.RFC3339), Action: action, User: name}
}

func (s *Store) updateGauges() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.updateGaugesLocked()
}

func (s *Store) updateGaugesLocked() {
	metrics.Items.WithLabelValues(string(models.KindAgent)).Set(float64(len(s.agents)))
	metrics.Items.WithLabelValues(string(models.KindMCP)).Set(float64(len(s.mcpServers)))
}
