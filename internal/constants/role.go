package constants

import "strings"

type Role string

const (
	RoleSeeker Role = "SEEKER"
	RoleWorker Role = "WORKER"
)

// ParseRole folds the role spellings used by older clients into the two known roles.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "worker":
		return RoleWorker, true
	case "seeker", "client":
		return RoleSeeker, true
	}
	return "", false
}

func upper(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
