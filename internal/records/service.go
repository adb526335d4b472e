package records

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/staffdesk/staffdesk/internal/store"
	"github.com/staffdesk/staffdesk/pkg/logger"
	"github.com/staffdesk/staffdesk/pkg/metrics"
)

// RoleSuperadmin is the fixed elevated role assigned by CreateSuperadmin.
const RoleSuperadmin = "superadmin"

const defaultPersistTimeout = 5 * time.Second

// Archiver receives a copy of each committed document, e.g. for uploading
// snapshots to object storage. Implementations must not block and must never
// fail the mutation.
type Archiver interface {
	Archive(doc *store.Document)
}

// Service is the only component permitted to mutate the shared document.
// One logical mutation (stage, persist, swap, publish) runs to completion
// under the mutex before the next one starts; reads observe the last
// committed snapshot without taking the lock.
type Service struct {
	store          store.Store
	pub            Publisher
	hasher         CredentialHasher
	archiver       Archiver
	newID          func() string
	persistTimeout time.Duration

	mu   sync.Mutex
	live atomic.Pointer[store.Document]
}

// NewService loads the document from the store (bootstrapping it when empty)
// and returns the service owning it. pub may be nil when no real-time
// transport is wired.
func NewService(ctx context.Context, st store.Store, pub Publisher, hasher CredentialHasher) (*Service, error) {
	doc, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	doc.Normalize()
	s := &Service{
		store:          st,
		pub:            pub,
		hasher:         hasher,
		newID:          uuid.NewString,
		persistTimeout: defaultPersistTimeout,
	}
	s.live.Store(doc)
	return s, nil
}

// SetArchiver wires an optional snapshot archiver.
func (s *Service) SetArchiver(a Archiver) { s.archiver = a }

// SetPersistTimeout bounds each persist operation; zero disables the bound.
func (s *Service) SetPersistTimeout(d time.Duration) { s.persistTimeout = d }

// List returns the named collection from the last committed snapshot.
// Records in committed snapshots are never mutated in place, so the result is
// safe to read concurrently with mutations.
func (s *Service) List(collection string) []store.Record {
	return s.live.Load().Collection(collection)
}

// mutResult is what a staged mutation reports back to commit.
type mutResult struct {
	evt     *Event // published after a successful persist; nil publishes nothing
	op      string // metrics label
	changed bool   // false skips persist entirely (no-op mutation)
}

// commit applies fn to a staged clone of the live document, persists the
// clone and only then swaps it in and publishes the event. A persist failure
// discards the clone: the live document still matches the last durable state
// and subscribers see nothing.
func (s *Service) commit(ctx context.Context, collection string, fn func(doc *store.Document) (mutResult, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.live.Load().Clone()
	res, err := fn(staged)
	if err != nil {
		return err
	}
	if !res.changed {
		return nil
	}

	pctx := ctx
	if s.persistTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, s.persistTimeout)
		defer cancel()
	}
	if err := s.store.Persist(pctx, staged); err != nil {
		metrics.PersistFailures.Inc()
		logger.Errorf("persist failed (%s %s): %v", collection, res.op, err)
		return fmt.Errorf("persist document: %w", err)
	}

	s.live.Store(staged)
	metrics.MutationsTotal.WithLabelValues(collection, res.op).Inc()
	if s.archiver != nil {
		s.archiver.Archive(staged)
	}
	if res.evt != nil && s.pub != nil {
		s.pub.Publish(*res.evt)
		metrics.EventsPublished.WithLabelValues(string(res.evt.Type)).Inc()
	}
	return nil
}

// upsertRecord is the shared locate-and-merge-or-append path. A missing
// identity gets a generated one; the resolved identity and whether a new
// record was created are returned.
func (s *Service) upsertRecord(ctx context.Context, collection string, rec store.Record, createdEvt, updatedEvt EventType) (string, bool, error) {
	if len(rec) == 0 {
		return "", false, fmt.Errorf("%w: empty record", ErrValidation)
	}
	rec = rec.Clone()
	if rec.ID() == "" {
		rec["id"] = s.newID()
	}

	var (
		outID      string
		outCreated bool
	)
	err := s.commit(ctx, collection, func(doc *store.Document) (mutResult, error) {
		id, created := doc.Upsert(collection, rec)
		outID, outCreated = id, created
		evtType, op := updatedEvt, "update"
		if created {
			evtType, op = createdEvt, "create"
		}
		payload := doc.FindByID(collection, id).Clone()
		return mutResult{evt: &Event{Type: evtType, Payload: payload}, op: op, changed: true}, nil
	})
	if err != nil {
		return "", false, err
	}
	return outID, outCreated, nil
}

// SaveEmployee creates or updates an employee and emits employee_update.
func (s *Service) SaveEmployee(ctx context.Context, rec store.Record) (string, bool, error) {
	return s.upsertRecord(ctx, store.ColEmployees, rec, EventEmployeeUpdate, EventEmployeeUpdate)
}

// DeleteEmployee removes the employee with the given identity and emits
// employee_delete. Deleting an absent identity succeeds without persisting or
// publishing anything.
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	return s.commit(ctx, store.ColEmployees, func(doc *store.Document) (mutResult, error) {
		if !doc.RemoveByID(store.ColEmployees, id) {
			return mutResult{}, nil
		}
		return mutResult{
			evt:     &Event{Type: EventEmployeeDelete, Payload: store.Record{"id": id}},
			op:      "delete",
			changed: true,
		}, nil
	})
}

// SaveAttendance creates or updates an attendance record keyed on
// (employeeId, date); a second write for the same pair merges into the first.
func (s *Service) SaveAttendance(ctx context.Context, rec store.Record) (string, bool, error) {
	if rec.Str("employeeId") == "" || rec.Str("date") == "" {
		return "", false, fmt.Errorf("%w: employeeId and date are required", ErrValidation)
	}
	return s.upsertRecord(ctx, store.ColAttendance, rec, EventAttendanceUpdate, EventAttendanceUpdate)
}

// SaveLeave creates or updates a leave request; leave_created on insert,
// leave_update on merge.
func (s *Service) SaveLeave(ctx context.Context, rec store.Record) (string, bool, error) {
	return s.upsertRecord(ctx, store.ColLeaves, rec, EventLeaveCreated, EventLeaveUpdate)
}

// UpdateLeaveStatus updates only the status field of an existing leave and
// emits leave_update with the identity and new status.
func (s *Service) UpdateLeaveStatus(ctx context.Context, id, status string) error {
	if status == "" {
		return fmt.Errorf("%w: status is required", ErrValidation)
	}
	return s.commit(ctx, store.ColLeaves, func(doc *store.Document) (mutResult, error) {
		leave := doc.FindByID(store.ColLeaves, id)
		if leave == nil {
			return mutResult{}, ErrNotFound
		}
		leave["status"] = status
		return mutResult{
			evt:     &Event{Type: EventLeaveUpdate, Payload: store.Record{"id": id, "status": status}},
			op:      "update",
			changed: true,
		}, nil
	})
}

// CreateNotification stores a notification and emits a notification event.
func (s *Service) CreateNotification(ctx context.Context, rec store.Record) (string, bool, error) {
	return s.upsertRecord(ctx, store.ColNotifications, rec, EventNotification, EventNotification)
}

// CreateSuperadmin creates an account with the fixed superadmin role and a
// one-way-hashed credential. Fails with ErrDuplicateUser when a user with the
// same name exists. User changes are not broadcast.
func (s *Service) CreateSuperadmin(ctx context.Context, name, password string) (store.Record, error) {
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password are required", ErrValidation)
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	rec := store.Record{
		"id":        s.newID(),
		"name":      name,
		"password":  hashed,
		"role":      RoleSuperadmin,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	err = s.commit(ctx, store.ColUsers, func(doc *store.Document) (mutResult, error) {
		if findUserByName(doc, name) != nil {
			return mutResult{}, ErrDuplicateUser
		}
		doc.Upsert(store.ColUsers, rec)
		return mutResult{op: "create", changed: true}, nil
	})
	if err != nil {
		return nil, err
	}
	return sanitizeUser(rec), nil
}

// Login locates a user by name and verifies the secret. An unknown name and a
// failed verification return the same error so callers cannot tell which case
// occurred.
func (s *Service) Login(name, password string) (store.Record, error) {
	if name == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user := findUserByName(s.live.Load(), name)
	if user == nil || !s.hasher.Verify(password, user.Str("password")) {
		return nil, ErrInvalidCredentials
	}
	return sanitizeUser(user), nil
}

// GetUser returns the user with the given identity (credential stripped), or
// nil when absent.
func (s *Service) GetUser(id string) store.Record {
	u := s.live.Load().FindByID(store.ColUsers, id)
	if u == nil {
		return nil
	}
	return sanitizeUser(u)
}

func findUserByName(doc *store.Document, name string) store.Record {
	for _, u := range doc.Users {
		if u.Str("name") == name {
			return u
		}
	}
	return nil
}

func sanitizeUser(u store.Record) store.Record {
	out := u.Clone()
	delete(out, "password")
	return out
}
