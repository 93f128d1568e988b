package shared

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStorageUnavailable is returned when the bucket store cannot commit a
// read-modify-write after its internal retry budget. The session that caused
// the write is never half-applied; callers must retry or dead-letter it.
var ErrStorageUnavailable = errors.New("storage unavailable")

// PartialDataError reports that some of the lead-insight scans failed while
// the overall call still produced a usable payload. Failed groups are zeroed
// in the payload.
type PartialDataError struct {
	Scans []string
}

func (e *PartialDataError) Error() string {
	return fmt.Sprintf("partial data: %d scan(s) failed: %s", len(e.Scans), strings.Join(e.Scans, ", "))
}
