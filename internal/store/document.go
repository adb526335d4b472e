package store

// Collection names held by the Document. The set is fixed: every persisted
// Document carries all five, empty or not.
const (
	ColUsers         = "users"
	ColEmployees     = "employees"
	ColAttendance    = "attendance"
	ColLeaves        = "leaves"
	ColNotifications = "notifications"
)

// Record is one schemaless entry in a collection. The identity field is "id"
// for every collection; attendance records additionally key on the
// (employeeId, date) pair.
type Record map[string]any

// ID returns the record's identity value, or "" when unset.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Str returns the named field as a string, or "" when absent or not a string.
func (r Record) Str(field string) string {
	v, _ := r[field].(string)
	return v
}

// Clone returns a shallow-field copy of the record. Field values are shared;
// callers that mutate nested structures must copy them first.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Document is the single root object persisted by the store. Collections are
// ordered and never nil after NewDocument or Normalize.
type Document struct {
	Users         []Record `json:"users" bson:"users"`
	Employees     []Record `json:"employees" bson:"employees"`
	Attendance    []Record `json:"attendance" bson:"attendance"`
	Leaves        []Record `json:"leaves" bson:"leaves"`
	Notifications []Record `json:"notifications" bson:"notifications"`
}

// NewDocument returns the canonical default Document: five empty collections.
func NewDocument() *Document {
	return &Document{
		Users:         []Record{},
		Employees:     []Record{},
		Attendance:    []Record{},
		Leaves:        []Record{},
		Notifications: []Record{},
	}
}

// Normalize replaces nil collections with empty ones so readers never have to
// special-case a missing collection (the JSON decoder leaves absent keys nil).
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []Record{}
	}
	if d.Employees == nil {
		d.Employees = []Record{}
	}
	if d.Attendance == nil {
		d.Attendance = []Record{}
	}
	if d.Leaves == nil {
		d.Leaves = []Record{}
	}
	if d.Notifications == nil {
		d.Notifications = []Record{}
	}
}

// collection returns a pointer to the named collection slice, or nil for an
// unknown name.
func (d *Document) collection(name string) *[]Record {
	switch name {
	case ColUsers:
		return &d.Users
	case ColEmployees:
		return &d.Employees
	case ColAttendance:
		return &d.Attendance
	case ColLeaves:
		return &d.Leaves
	case ColNotifications:
		return &d.Notifications
	}
	return nil
}

// Collection returns the named collection, or nil for an unknown name.
func (d *Document) Collection(name string) []Record {
	c := d.collection(name)
	if c == nil {
		return nil
	}
	return *c
}

// FindByID returns the record with the given identity, or nil.
func (d *Document) FindByID(collection, id string) Record {
	if id == "" {
		return nil
	}
	for _, r := range d.Collection(collection) {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

// FindAttendance returns the attendance record for the (employeeId, date)
// pair, or nil.
func (d *Document) FindAttendance(employeeID, date string) Record {
	for _, r := range d.Attendance {
		if r.Str("employeeId") == employeeID && r.Str("date") == date {
			return r
		}
	}
	return nil
}

// protectedFields lists fields the generic merge path may never overwrite on
// an existing record. Without this a client could escalate a role or replace
// a stored credential through a plain update request.
var protectedFields = map[string]map[string]bool{
	ColUsers: {"role": true, "password": true},
}

// Upsert inserts rec into the collection, or merges it into the existing
// record with the same identity (same (employeeId, date) pair for
// attendance). The merge is shallow: incoming fields overwrite, absent fields
// stay untouched, and protected fields are dropped from the incoming record.
// On a composite-key match the stored identity wins over a conflicting
// incoming one. Returns the resolved identity and whether a record was
// created. rec must carry a non-empty "id".
func (d *Document) Upsert(collection string, rec Record) (string, bool) {
	col := d.collection(collection)
	if col == nil || rec == nil {
		return "", false
	}

	var existing Record
	if collection == ColAttendance {
		existing = d.FindAttendance(rec.Str("employeeId"), rec.Str("date"))
	}
	if existing == nil {
		existing = d.FindByID(collection, rec.ID())
	}

	if existing == nil {
		*col = append(*col, rec)
		return rec.ID(), true
	}

	blocked := protectedFields[collection]
	for k, v := range rec {
		if k == "id" || blocked[k] {
			continue
		}
		existing[k] = v
	}
	return existing.ID(), false
}

// RemoveByID filters the collection to exclude the matching identity.
// Removing an absent identity is a no-op; returns whether a record was
// removed.
func (d *Document) RemoveByID(collection, id string) bool {
	col := d.collection(collection)
	if col == nil || id == "" {
		return false
	}
	kept := (*col)[:0]
	removed := false
	for _, r := range *col {
		if r.ID() == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	*col = kept
	return removed
}

// Clone returns a deep copy of the document down to record fields. Used by
// the record service to stage mutations without touching the committed state.
func (d *Document) Clone() *Document {
	return &Document{
		Users:         cloneRecords(d.Users),
		Employees:     cloneRecords(d.Employees),
		Attendance:    cloneRecords(d.Attendance),
		Leaves:        cloneRecords(d.Leaves),
		Notifications: cloneRecords(d.Notifications),
	}
}

func cloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
