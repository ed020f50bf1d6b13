// Package haltest provides a recording port and interrupt mask for driver
// tests.
package haltest

import "fmt"

// Kind of a recorded operation
type Kind int

const (
	OpOut Kind = iota
	OpIn
	OpDisable
	OpEnable
)

// Op is one recorded operation
type Op struct {
	Kind  Kind
	Port  uint8
	Value uint8
}

func (o Op) String() string {
	switch o.Kind {
	case OpOut:
		return fmt.Sprintf("OUT $%02X,$%02X", o.Port, o.Value)
	case OpIn:
		return fmt.Sprintf("IN $%02X=$%02X", o.Port, o.Value)
	case OpDisable:
		return "DI"
	case OpEnable:
		return "EI"
	}
	return "?"
}

// Out is shorthand for an expected output operation
func Out(port, value uint8) Op { return Op{Kind: OpOut, Port: port, Value: value} }

// In is shorthand for an expected input operation
func In(port, value uint8) Op { return Op{Kind: OpIn, Port: port, Value: value} }

// DI and EI are the expected mask transitions
var (
	DI = Op{Kind: OpDisable}
	EI = Op{Kind: OpEnable}
)

// Recorder implements hal.PortIO and hal.IRQMask and records everything.
// Reads return the next scripted value for the port, or Default when the
// script for that port is exhausted.
type Recorder struct {
	Ops     []Op
	Default uint8
	Masked  bool

	// MaxDepth is the deepest Disable nesting seen
	MaxDepth int
	depth    int

	script map[uint8][]uint8
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{script: make(map[uint8][]uint8)}
}

// Script queues values to be returned by reads of port
func (r *Recorder) Script(port uint8, values ...uint8) {
	r.script[port] = append(r.script[port], values...)
}

// In implements hal.PortIO
func (r *Recorder) In(port uint8) uint8 {
	v := r.Default
	if q := r.script[port]; len(q) > 0 {
		v = q[0]
		r.script[port] = q[1:]
	}
	r.Ops = append(r.Ops, In(port, v))
	return v
}

// Out implements hal.PortIO
func (r *Recorder) Out(port uint8, value uint8) {
	r.Ops = append(r.Ops, Out(port, value))
}

// Disable implements hal.IRQMask
func (r *Recorder) Disable() {
	r.Masked = true
	r.depth++
	if r.depth > r.MaxDepth {
		r.MaxDepth = r.depth
	}
	r.Ops = append(r.Ops, DI)
}

// Enable implements hal.IRQMask
func (r *Recorder) Enable() {
	r.Masked = false
	if r.depth > 0 {
		r.depth--
	}
	r.Ops = append(r.Ops, EI)
}

// Reset forgets recorded operations
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.MaxDepth = 0
	r.depth = 0
}

// Outs returns only the output operations
func (r *Recorder) Outs() []Op {
	var outs []Op
	for _, o := range r.Ops {
		if o.Kind == OpOut {
			outs = append(outs, o)
		}
	}
	return outs
}

// OutValues returns the values written to port, in order
func (r *Recorder) OutValues(port uint8) []uint8 {
	var v []uint8
	for _, o := range r.Ops {
		if o.Kind == OpOut && o.Port == port {
			v = append(v, o.Value)
		}
	}
	return v
}

// PortOps counts port reads and writes
func (r *Recorder) PortOps() int {
	n := 0
	for _, o := range r.Ops {
		if o.Kind == OpOut || o.Kind == OpIn {
			n++
		}
	}
	return n
}

// Balanced reports whether every port operation happened inside a masked
// section and every Disable was followed by an Enable
func (r *Recorder) Balanced() bool {
	masked := false
	for _, o := range r.Ops {
		switch o.Kind {
		case OpDisable:
			if masked {
				return false
			}
			masked = true
		case OpEnable:
			if !masked {
				return false
			}
			masked = false
		default:
			if !masked {
				return false
			}
		}
	}
	return !masked
}
