// Package port implements the pipeline's inter-stage communication fabric:
// named, typed, latency-carrying channels that enforce single-writer,
// bounded-fanout discipline and one-cycle-or-more delivery latency.
//
// A Registry is created per simulation run (see timing/controller), never
// as package-level state, so that independent simulator instances never
// share port topology.
package port

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/perfmips/timing/cycle"
)

// staleChecker is implemented by every ReadPort[T] so the registry can scan
// for stale (unconsumed, expired) values without knowing T.
type staleChecker interface {
	name() string
	staleAt(now cycle.Cycle) bool
}

// binder is implemented by every WritePort[T] so a ReadPort[T] created
// later for the same name can be wired into its fanout without the
// registry needing to know T.
type binder interface {
	addReader(rp any) error
}

type writerBinding struct {
	bandwidth   uint32
	fanout      uint32
	valueType   reflect.Type
	readerCount uint32
	port        binder
}

// Registry is the process-wide (per-simulator-instance) map from port name
// to its single writer binding and set of readers.
type Registry struct {
	writers  map[string]*writerBinding
	readers  map[string][]staleChecker
	writeLog map[writeKey]uint32
}

type writeKey struct {
	name  string
	cycle cycle.Cycle
}

// NewRegistry creates an empty port registry.
func NewRegistry() *Registry {
	return &Registry{
		writers:  make(map[string]*writerBinding),
		readers:  make(map[string][]staleChecker),
		writeLog: make(map[writeKey]uint32),
	}
}

// WritePort is the single-writer endpoint of a named port.
type WritePort[T any] struct {
	name     string
	registry *Registry
	readers  []*ReadPort[T]
}

// ReadPort is one of possibly several consumer endpoints of a named port.
type ReadPort[T any] struct {
	portName string
	latency  cycle.Latency
	queue    []timedValue[T]
}

type timedValue[T any] struct {
	at    cycle.Cycle
	value T
}

// MakeWritePort registers name with exactly one writer, bandwidth writes
// per cycle (always 1 in this core) and the declared fanout (number of
// permitted readers). It fails if name already has a writer.
func MakeWritePort[T any](reg *Registry, name string, bandwidth, fanout uint32) (*WritePort[T], error) {
	if _, ok := reg.writers[name]; ok {
		return nil, fmt.Errorf("port %q: writer already bound", name)
	}

	wp := &WritePort[T]{name: name, registry: reg}

	reg.writers[name] = &writerBinding{
		bandwidth: bandwidth,
		fanout:    fanout,
		valueType: reflect.TypeOf((*T)(nil)).Elem(),
		port:      wp,
	}

	return wp, nil
}

// MakeReadPort registers another consumer of name. It fails if the count
// would exceed the writer's declared fanout, if T mismatches the writer's
// declared type, or if no writer has been bound yet.
func MakeReadPort[T any](reg *Registry, name string, latency cycle.Latency) (*ReadPort[T], error) {
	w, ok := reg.writers[name]
	if !ok {
		return nil, fmt.Errorf("port %q: no writer bound before creating a reader", name)
	}

	wantType := reflect.TypeOf((*T)(nil)).Elem()
	if w.valueType != wantType {
		return nil, fmt.Errorf("port %q: type mismatch, writer carries %s, reader wants %s",
			name, w.valueType, wantType)
	}

	if w.readerCount >= w.fanout {
		return nil, fmt.Errorf("port %q: fanout exceeded (declared %d)", name, w.fanout)
	}

	rp := &ReadPort[T]{portName: name, latency: latency}
	if err := w.port.addReader(rp); err != nil {
		return nil, err
	}

	w.readerCount++
	reg.readers[name] = append(reg.readers[name], rp)

	return rp, nil
}

// addReader implements binder by type-asserting rp back to *ReadPort[T].
func (wp *WritePort[T]) addReader(rp any) error {
	typed, ok := rp.(*ReadPort[T])
	if !ok {
		return fmt.Errorf("port %q: internal type assertion failed wiring reader", wp.name)
	}

	wp.readers = append(wp.readers, typed)

	return nil
}

// Write enqueues value on every bound ReadPort, timestamped for delivery at
// cycle + that reader's declared latency. It is fatal (returns an error) to
// write more than the declared bandwidth (always 1) times in one cycle.
func (wp *WritePort[T]) Write(value T, now cycle.Cycle) error {
	key := writeKey{name: wp.name, cycle: now}
	count := wp.registry.writeLog[key]

	w := wp.registry.writers[wp.name]
	if count >= w.bandwidth {
		return fmt.Errorf("port %q: bandwidth (%d) exceeded at cycle %s", wp.name, w.bandwidth, now)
	}
	wp.registry.writeLog[key] = count + 1

	for _, r := range wp.readers {
		r.queue = append(r.queue, timedValue[T]{at: now.Add(r.latency), value: value})
	}

	return nil
}

// IsReady reports whether the head of the FIFO is timestamped at or before
// now.
func (rp *ReadPort[T]) IsReady(now cycle.Cycle) bool {
	return len(rp.queue) > 0 && rp.queue[0].at <= now
}

// Read dequeues and returns the head value. The caller must have checked
// IsReady(now) first; Read panics otherwise, since that indicates a bug in
// the calling stage, not a runtime condition to recover from.
func (rp *ReadPort[T]) Read(now cycle.Cycle) T {
	if !rp.IsReady(now) {
		panic(fmt.Sprintf("port %q: Read called while not ready at cycle %s", rp.portName, now))
	}

	v := rp.queue[0].value
	rp.queue = rp.queue[1:]

	return v
}

// Ignore drops the head value if ready; otherwise it is a no-op.
func (rp *ReadPort[T]) Ignore(now cycle.Cycle) {
	if rp.IsReady(now) {
		rp.queue = rp.queue[1:]
	}
}

func (rp *ReadPort[T]) name() string { return rp.portName }

// staleAt reports whether the head of the queue is timestamped strictly
// before now, meaning some stage failed to consume a value that became
// ready on an earlier cycle: a protocol violation.
func (rp *ReadPort[T]) staleAt(now cycle.Cycle) bool {
	return len(rp.queue) > 0 && rp.queue[0].at < now
}

// InitPorts verifies every declared write port's fanout matches its actual
// reader count and that no reader references an unbound writer. Call once,
// after every port has been constructed.
func InitPorts(reg *Registry) error {
	for name, w := range reg.writers {
		got := w.readerCount
		if got != w.fanout {
			return fmt.Errorf("port %q: declared fanout %d, but %d reader(s) were created",
				name, w.fanout, got)
		}
	}

	for name := range reg.readers {
		if _, ok := reg.writers[name]; !ok {
			return fmt.Errorf("port %q: has readers but no writer", name)
		}
	}

	return nil
}

// CheckPorts scans every ReadPort in the registry for a value that became
// ready before now and was never consumed via Read or Ignore: a design bug
// in the pipeline, per spec.
func CheckPorts(reg *Registry, now cycle.Cycle) error {
	for name, readers := range reg.readers {
		for _, r := range readers {
			if r.staleAt(now) {
				return fmt.Errorf("port %q: stale value detected at cycle %s (protocol violation)", name, now)
			}
		}
	}

	return nil
}
