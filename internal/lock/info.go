package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"time"
)

// Info is written into a held lock so waiters can name the holder.
type Info struct {
	User     string    `json:"user"`
	Hostname string    `json:"hostname"`
	PID      int       `json:"pid"`
	Started  time.Time `json:"started"`
	Purpose  string    `json:"purpose,omitempty"`
}

// NewInfo describes the current process.
func NewInfo(purpose string) *Info {
	info := &Info{User: "unknown", Hostname: "unknown", PID: os.Getpid(), Started: time.Now(), Purpose: purpose}
	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		info.User = u.Username
	} else if env := os.Getenv("USER"); env != "" {
		info.User = env
	}
	return info
}

// Age is the time since the lock was taken.
func (i *Info) Age() time.Duration {
	return time.Since(i.Started)
}

// Marshal encodes the info as written to disk.
func (i *Info) Marshal() ([]byte, error) {
	return json.Marshal(i)
}

// ParseInfo decodes a lock's info file.
func ParseInfo(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (i *Info) String() string {
	if i.Purpose == "" {
		return fmt.Sprintf("%s@%s (pid %d)", i.User, i.Hostname, i.PID)
	}
	return fmt.Sprintf("%s@%s (pid %d) %s", i.User, i.Hostname, i.PID, i.Purpose)
}
