package eventbus

// ring is a fixed-capacity buffer keeping the most recent events for
// introspection. Not safe for concurrent use; the bus guards it.
type ring struct {
	buf   []Event
	next  int
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Event, capacity)}
}

func (r *ring) append(evt Event) {
	r.buf[r.next] = evt
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// recent returns up to n events, newest first.
func (r *ring) recent(n int) []Event {
	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}
