package dashboard

import (
	"time"

	"github.com/rileyhilliard/sysdeck/internal/model"
)

// DefaultHistorySize is the number of samples kept per series.
const DefaultHistorySize = 60

// History keeps recent usage samples for the overview sparklines. It is
// owned by the Bubble Tea model and only touched from Update.
type History struct {
	size int
	cpu  *ringBuffer
	mem  *ringBuffer
	gpu  *ringBuffer

	// Previous network counters, for throughput between two snapshots.
	lastSent  uint64
	lastRecv  uint64
	lastAt    time.Time
	sentRate  float64
	recvRate  float64
	haveRates bool
}

// NewHistory creates a history keeping size samples per series.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size: size,
		cpu:  newRingBuffer(size),
		mem:  newRingBuffer(size),
	}
}

// Push records one snapshot. A snapshot with the same fetch time as the
// previous one is a cache hit and is ignored.
func (h *History) Push(s model.SystemSnapshot) {
	if !h.lastAt.IsZero() && !s.FetchedAt.After(h.lastAt) {
		return
	}

	h.cpu.push(s.Hardware.CPU.UsagePercent)
	h.mem.push(s.Hardware.Memory.UsagePercent)
	if len(s.Hardware.GPUs) > 0 {
		if h.gpu == nil {
			h.gpu = newRingBuffer(h.size)
		}
		h.gpu.push(s.Hardware.GPUs[0].UsagePercent)
	}

	var sent, recv uint64
	for _, iface := range s.Network.Interfaces {
		if iface.IsLoopback {
			continue
		}
		sent += iface.BytesSent
		recv += iface.BytesReceived
	}
	if !h.lastAt.IsZero() {
		elapsed := s.FetchedAt.Sub(h.lastAt).Seconds()
		// Counters reset when an interface goes away; skip that sample.
		if elapsed > 0 && sent >= h.lastSent && recv >= h.lastRecv {
			h.sentRate = float64(sent-h.lastSent) / elapsed
			h.recvRate = float64(recv-h.lastRecv) / elapsed
			h.haveRates = true
		}
	}
	h.lastSent, h.lastRecv, h.lastAt = sent, recv, s.FetchedAt
}

// CPU returns up to count CPU samples, oldest first.
func (h *History) CPU(count int) []float64 { return h.cpu.getLast(count) }

// Memory returns up to count memory samples, oldest first.
func (h *History) Memory(count int) []float64 { return h.mem.getLast(count) }

// GPU returns up to count samples for the first GPU, or nil if none was seen.
func (h *History) GPU(count int) []float64 {
	if h.gpu == nil {
		return nil
	}
	return h.gpu.getLast(count)
}

// NetworkRates returns bytes per second sent and received across
// non-loopback interfaces. ok is false until two snapshots were seen.
func (h *History) NetworkRates() (sent, recv float64, ok bool) {
	return h.sentRate, h.recvRate, h.haveRates
}

// Len returns the number of CPU samples held.
func (h *History) Len() int {
	return h.cpu.count
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order.
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	count = min(count, r.count)

	result := make([]float64, count)
	// head is the next write position, so the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
