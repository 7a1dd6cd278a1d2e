package constants

type TaskStatus string

const (
	StatusOpen      TaskStatus = "OPEN"
	StatusAccepted  TaskStatus = "ACCEPTED"
	StatusCompleted TaskStatus = "COMPLETED"
	// StatusCancelled is terminal and reserved; no operation transitions into it yet.
	StatusCancelled TaskStatus = "CANCELLED"
)

var taskStatuses = []TaskStatus{StatusOpen, StatusAccepted, StatusCompleted, StatusCancelled}

func (s TaskStatus) Valid() bool {
	for _, known := range taskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// HasAcceptedWorker reports whether a task in this status must reference an accepted worker.
func (s TaskStatus) HasAcceptedWorker() bool {
	return s == StatusAccepted || s == StatusCompleted
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

type Urgency string

const (
	UrgencyNormal    Urgency = "NORMAL"
	UrgencyUrgent    Urgency = "URGENT"
	UrgencyEmergency Urgency = "EMERGENCY"
)

// ParseUrgency normalizes user input. Empty or unknown values fall back to NORMAL.
func ParseUrgency(raw string) Urgency {
	u, ok := LookupUrgency(raw)
	if !ok {
		return UrgencyNormal
	}
	return u
}

// LookupUrgency is the strict variant of ParseUrgency used for filters.
func LookupUrgency(raw string) (Urgency, bool) {
	switch Urgency(upper(raw)) {
	case UrgencyNormal:
		return UrgencyNormal, true
	case UrgencyUrgent:
		return UrgencyUrgent, true
	case UrgencyEmergency:
		return UrgencyEmergency, true
	}
	return "", false
}

// ParseTaskStatus accepts any casing of a known status.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	s := TaskStatus(upper(raw))
	return s, s.Valid()
}
