package common

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// Clock is the source of "now" for every time based rule.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// NTPClock is the system clock corrected by the offset measured against an
// NTP server. The offset is measured once in `NewNTPClock` and again on
// every `Sync`.
type NTPClock struct {
	sync.RWMutex

	host    string
	timeout time.Duration
	offset  time.Duration
}

func NewNTPClock(host string, timeout time.Duration) (*NTPClock, error) {
	c := &NTPClock{host: host, timeout: timeout}
	if err := c.Sync(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *NTPClock) Sync() error {
	resp, err := ntp.QueryWithOptions(c.host, ntp.QueryOptions{Timeout: c.timeout})
	if err != nil {
		return err
	}
	if err = resp.Validate(); err != nil {
		return err
	}

	c.Lock()
	c.offset = resp.ClockOffset
	c.Unlock()

	return nil
}

func (c *NTPClock) Offset() time.Duration {
	c.RLock()
	defer c.RUnlock()

	return c.offset
}

func (c *NTPClock) Now() time.Time {
	return time.Now().Add(c.Offset())
}

// ManualClock only moves when told to. Used to drive deadlines in tests and
// in offline tooling.
type ManualClock struct {
	sync.RWMutex

	now time.Time
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time {
	c.RLock()
	defer c.RUnlock()

	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.Lock()
	defer c.Unlock()

	c.now = t
}

func (c *ManualClock) Add(d time.Duration) time.Time {
	c.Lock()
	defer c.Unlock()

	c.now = c.now.Add(d)
	return c.now
}
