// Copyright © 2026 The Spill authors

package profiler

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
)

// errWriter wraps an io.Writer and captures the first write error,
// short-circuiting subsequent writes after a failure.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// callgrindProfiler writes a profile in the callgrind format, readable by
// KCacheGrind and QCacheGrind.  Each call records elapsed time and bytes
// allocated.
type callgrindProfiler struct {
	profiler
	sync.Mutex
	writer     io.WriteCloser
	writeErr   error
	startTime  time.Time
	refs       map[string]int
	refCounter int
	current    *callRef
}

var _ lisp.Profiler = &callgrindProfiler{}

// NewCallgrindProfiler returns a profiler which writes a callgrind profile to
// w.  The writer is closed by Complete.
func NewCallgrindProfiler(runtime *lisp.Runtime, w io.WriteCloser, opts ...Option) lisp.Profiler {
	p := &callgrindProfiler{writer: w}
	p.runtime = runtime
	p.applyConfigs(opts...)
	return p
}

// callRef is an in-progress or finished call.
type callRef struct {
	start       time.Time
	prev        *callRef
	name        string
	children    []*callRef
	duration    time.Duration
	startMemory uint64
	file        string
	line        int
}

func (p *callgrindProfiler) Enable() error {
	p.Lock()
	if p.writer == nil {
		p.Unlock()
		return errors.New("no output set in profiler")
	}
	w := &errWriter{w: p.writer}
	w.printf("version: 1\ncreator: spill (Go %s)\n", runtime.Version())
	w.printf("cmd: Eval\npart: 1\npositions: line\n\n")
	w.printf("events: Time_(ns) Memory_(bytes)\n\n")
	if w.err != nil {
		p.Unlock()
		return w.err
	}
	p.startTime = time.Now()
	p.refs = make(map[string]int)
	p.refCounter = 0
	p.Unlock()
	p.pushCallRef("ENTRYPOINT", &token.Location{File: "-", Path: "-"})
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

func (p *callgrindProfiler) Complete() error {
	p.Lock()
	defer p.Unlock()
	if p.current == nil {
		return errors.New("profiler not enabled")
	}
	ref := p.popCallRef()
	if p.writeErr != nil {
		return p.writeErr
	}
	ref.duration = time.Since(ref.start)
	w := &errWriter{w: p.writer}
	w.printf("fl=%s\n", p.getRef(ref.file))
	w.printf("fn=%s\n", p.getRef(ref.name))
	w.printf("%d %d %d\n", 0, ref.duration, 0)
	p.writeChildren(w, ref, 0)
	w.printf("\n")
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	w.printf("summary %d %d\n\n", time.Since(p.startTime).Nanoseconds(), ms.TotalAlloc)
	if w.err != nil {
		return w.err
	}
	p.enabled = false
	return p.writer.Close()
}

func (p *callgrindProfiler) getRef(name string) string {
	if ref, ok := p.refs[name]; ok {
		return fmt.Sprintf("(%d)", ref)
	}
	p.refCounter++
	p.refs[name] = p.refCounter
	return fmt.Sprintf("(%d) %s", p.refCounter, name)
}

func (p *callgrindProfiler) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, _ := p.prettyFunName(fun)
	p.pushCallRef(label, getSourceLoc(fun))
	return func() {
		p.end(fun)
	}
}

func (p *callgrindProfiler) pushCallRef(name string, loc *token.Location) {
	p.Lock()
	defer p.Unlock()
	ref := &callRef{name: name, prev: p.current}
	if loc != nil {
		ref.file = loc.File
		ref.line = loc.Line
	}
	if p.current != nil {
		p.current.children = append(p.current.children, ref)
	}
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	ref.startMemory = ms.TotalAlloc
	ref.start = time.Now()
	p.current = ref
}

func (p *callgrindProfiler) popCallRef() *callRef {
	ref := p.current
	p.current = ref.prev
	return ref
}

func (p *callgrindProfiler) writeChildren(w *errWriter, ref *callRef, memory uint64) {
	for _, child := range ref.children {
		w.printf("cfl=%s\n", p.getRef(child.file))
		w.printf("cfn=%s\n", p.getRef(child.name))
		w.printf("calls=1 0 0\n")
		w.printf("%d %d %d\n", child.line, child.duration, memory)
	}
}

func (p *callgrindProfiler) end(fun *lisp.LVal) {
	p.Lock()
	defer p.Unlock()
	ref := p.popCallRef()
	if p.writeErr != nil {
		return
	}
	ref.duration = time.Since(ref.start)
	if ref.duration == 0 {
		ref.duration = 1
	}
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	memory := ms.TotalAlloc - ref.startMemory
	w := &errWriter{w: p.writer}
	if ref.file != "" {
		w.printf("fl=%s\n", p.getRef(ref.file))
	}
	w.printf("fn=%s\n", p.getRef(ref.name))
	w.printf("%d %d %d\n", ref.line, ref.duration, memory)
	p.writeChildren(w, ref, memory)
	w.printf("\n")
	p.writeErr = w.err
}
