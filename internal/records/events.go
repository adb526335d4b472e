package records

// EventType names a change event pushed to real-time subscribers.
type EventType string

const (
	EventEmployeeUpdate   EventType = "employee_update"
	EventEmployeeDelete   EventType = "employee_delete"
	EventAttendanceUpdate EventType = "attendance_update"
	EventLeaveCreated     EventType = "leave_created"
	EventLeaveUpdate      EventType = "leave_update"
	EventNotification     EventType = "notification"
)

// Event describes one completed, durable mutation. Upserts carry the full
// post-merge record; deletes carry the removed identity.
type Event struct {
	Type    EventType `json:"event"`
	Payload any       `json:"data"`
}

// Publisher fans a change event out to connected subscribers. Delivery is
// best-effort: no acknowledgment, no retry, no replay for late subscribers.
type Publisher interface {
	Publish(evt Event)
}
