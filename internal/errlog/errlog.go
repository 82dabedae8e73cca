package errlog

import (
	"fmt"
	"os"
	"time"
)

// Log appends fetch failures to a plain text file, one line per
// failure. The file is opened and closed per write so a crash never
// leaves buffered lines behind. Writing is best effort; an unwritable
// log must not take down a run.
type Log struct {
	path string
	now  func() time.Time
}

// New creates an error log writing to path.
func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Record appends one failure line naming the resource and the error.
func (l *Log) Record(resource string, err error) {
	f, openErr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if openErr != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%s - Failed request to %s: %v\n",
		l.now().UTC().Format(time.RFC3339Nano), resource, err)
}
