package core

import (
	"context"
	"fmt"
)

// Locker hands out exclusive locks scoped to a key.
// Lock blocks until the lock is held or ctx is done; the returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// AllocationLockKey scopes class allocation runs to one (year, grade) pair.
func AllocationLockKey(year string, grade int) string {
	return fmt.Sprintf("allocation:%s:%d", year, grade)
}

// TimetableLockKey scopes timetable saves to one (year, semester) pair.
func TimetableLockKey(year string, semester int) string {
	return fmt.Sprintf("timetable:%s:%d", year, semester)
}
