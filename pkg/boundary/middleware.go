package boundary

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Counter counts crossings per Op before forwarding them.
type Counter struct {
	next   Boundary
	counts map[Op]int
	total  int
}

// NewCounter wraps next.
func NewCounter(next Boundary) *Counter {
	return &Counter{next: next, counts: make(map[Op]int)}
}

// Cross records the call and forwards it.
func (c *Counter) Cross(call Call) (Reply, error) {
	c.counts[call.Op]++
	c.total++
	return c.next.Cross(call)
}

// Total returns the number of crossings since creation or the last Reset.
func (c *Counter) Total() int {
	return c.total
}

// Count returns the number of crossings for op.
func (c *Counter) Count(op Op) int {
	return c.counts[op]
}

// Ops returns the ops seen so far, sorted by name.
func (c *Counter) Ops() []Op {
	ops := make([]Op, 0, len(c.counts))
	for op := range c.counts {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Reset zeroes all counts.
func (c *Counter) Reset() {
	clear(c.counts)
	c.total = 0
}

// Trace logs every crossing at debug level, failures included, so error
// paths cost nothing above debug.
func Trace(next Boundary, log *zap.Logger) Boundary {
	if log == nil {
		return next
	}
	return &tracer{next: next, log: log}
}

type tracer struct {
	next Boundary
	log  *zap.Logger
}

func (t *tracer) Cross(call Call) (Reply, error) {
	start := time.Now()
	reply, err := t.next.Cross(call)
	fields := []zap.Field{
		zap.String("op", string(call.Op)),
		zap.Uint32("node", uint32(call.Node)),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		t.log.Debug("crossing failed", append(fields, zap.Error(err))...)
		return reply, err
	}
	t.log.Debug("crossing", fields...)
	return reply, nil
}
