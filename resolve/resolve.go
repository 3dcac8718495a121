// Package resolve turns raw keyframe lists into concrete ones before an
// animation starts.
//
// Resolution happens on the frame loop. Every resolver scheduled in a frame
// reads its subject in that frame's read step and completes in the
// resolveKeyframes step, so animations started together resolve together.
package resolve

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/value"
)

// Subject is the value a placeholder keyframe reads from. Get returns
// value.None when there is no current value.
type Subject interface {
	Get() value.Value
}

// Lookup is an optional Subject capability that resolves symbolic keyframes
// such as "var(--accent)".
type Lookup interface {
	Lookup(name string) (value.Value, bool)
}

// Request describes what to resolve.
type Request struct {
	Keyframes []value.Value
	Subject   Subject
	// Repeat and Alternate decide the final keyframe. Alternate is true for
	// reverse and mirror repeats.
	Repeat    int
	Alternate bool
}

// Resolved is a concrete keyframe list.
type Resolved struct {
	Keyframes []value.Value
	// Final is the value to apply when the animation completes naturally.
	Final value.Value
}

// Resolver resolves one keyframe list. Create it with New and start it with
// ScheduleResolve.
type Resolver struct {
	batch      *Batch
	req        Request
	keyframes  []value.Value
	onResolved func(Resolved, error)

	read      bool
	readErr   error
	complete  bool
	cancelled bool
	scheduled bool
}

// New returns a resolver that reports to onResolved exactly once, unless it
// is cancelled first.
func New(batch *Batch, req Request, onResolved func(Resolved, error)) *Resolver {
	r := new(Resolver)
	r.batch = batch
	r.req = req
	r.keyframes = append([]value.Value(nil), req.Keyframes...)
	r.onResolved = onResolved
	return r
}

// ScheduleResolve queues the resolver on its batch.
func (r *Resolver) ScheduleResolve() {
	if r.complete || r.cancelled || r.scheduled {
		return
	}
	r.scheduled = true
	r.batch.add(r)
}

// Cancel abandons resolution. A cancelled resolver never calls back.
func (r *Resolver) Cancel() {
	if r.complete || r.cancelled {
		return
	}
	r.cancelled = true
	r.scheduled = false
	r.batch.remove(r)
}

// Resume reschedules a cancelled resolver that never completed.
func (r *Resolver) Resume() {
	if r.complete {
		return
	}
	r.cancelled = false
	r.ScheduleResolve()
}

// Complete reports whether the resolver has called back.
func (r *Resolver) Complete() bool { return r.complete }

var symbolic = regexp.MustCompile(`^var\(\s*--([\w-]+)\s*\)$`)

func (r *Resolver) readKeyframes() {
	if r.read {
		return
	}
	r.read = true

	if len(r.keyframes) == 0 {
		r.readErr = &Error{Op: "resolve.read", Kind: KindUnknown, Err: errors.New("no keyframes")}
		return
	}
	for i, kf := range r.keyframes {
		if !kf.IsNone() {
			continue
		}
		if i > 0 {
			r.keyframes[i] = r.keyframes[i-1]
			continue
		}
		var current value.Value
		if r.req.Subject != nil {
			current = r.req.Subject.Get()
		}
		if current.IsNone() {
			r.readErr = &Error{Op: "resolve.read", Kind: KindNoCurrentValue, Err: errors.New("subject has no value to start from")}
			return
		}
		r.keyframes[0] = current
	}

	lookup, _ := r.req.Subject.(Lookup)
	for i, kf := range r.keyframes {
		if kf.IsNumber() {
			continue
		}
		m := symbolic.FindStringSubmatch(kf.Str())
		if m == nil {
			continue
		}
		var v value.Value
		ok := false
		if lookup != nil {
			v, ok = lookup.Lookup(m[1])
		}
		if !ok {
			r.readErr = &Error{Op: "resolve.read", Kind: KindUnresolvedSymbol, Err: fmt.Errorf("--%s is not defined", m[1])}
			return
		}
		r.keyframes[i] = v
	}
}

func (r *Resolver) finish() {
	if r.complete || r.cancelled {
		return
	}
	r.readKeyframes()
	r.complete = true

	if r.readErr != nil {
		r.onResolved(Resolved{}, r.readErr)
		return
	}
	keyframes, err := animatableNone(r.keyframes)
	if err != nil {
		r.onResolved(Resolved{}, err)
		return
	}
	r.onResolved(Resolved{
		Keyframes: keyframes,
		Final:     FinalKeyframe(keyframes, r.req.Repeat, r.req.Alternate),
	}, nil)
}

// animatableNone replaces "none" keyframes with the zero form of an
// animatable neighbour and checks every keyframe has the same kind.
func animatableNone(keyframes []value.Value) ([]value.Value, error) {
	var template value.Value
	for _, kf := range keyframes {
		if !isNone(kf) && value.Animatable(kf) {
			template = kf
			break
		}
	}
	for i, kf := range keyframes {
		if isNone(kf) && !template.IsNone() {
			keyframes[i] = value.Zero(template)
		}
	}

	kind := keyframes[0].Kind()
	for _, kf := range keyframes[1:] {
		if kf.Kind() != kind {
			return nil, &Error{
				Op:   "resolve.check",
				Kind: KindMixedTypes,
				Err:  fmt.Errorf("keyframes mix %s and %s values", kind, kf.Kind()),
			}
		}
	}
	return keyframes, nil
}

func isNone(v value.Value) bool {
	if v.Kind() != value.KindString {
		return false
	}
	return v.Str() == "none" || v.Str() == "0"
}

// FinalKeyframe returns the keyframe an animation rests on: the first when
// an alternating animation repeats an odd number of times, otherwise the
// last.
func FinalKeyframe(keyframes []value.Value, repeat int, alternate bool) value.Value {
	if len(keyframes) == 0 {
		return value.None()
	}
	if alternate && repeat > 0 && repeat%2 == 1 {
		return keyframes[0]
	}
	return keyframes[len(keyframes)-1]
}

// Batch collects the resolvers scheduled on a frame loop.
type Batch struct {
	loop      *frameloop.Loop
	pending   []*Resolver
	scheduled bool
}

// NewBatch returns a batch that resolves on loop.
func NewBatch(loop *frameloop.Loop) *Batch {
	b := new(Batch)
	b.loop = loop
	return b
}

func (b *Batch) add(r *Resolver) {
	b.pending = append(b.pending, r)
	if b.scheduled {
		return
	}
	b.scheduled = true
	b.loop.Schedule(frameloop.Read, func(frameloop.FrameData) { b.readAll() }, false)
	b.loop.Schedule(frameloop.ResolveKeyframes, func(frameloop.FrameData) {
		b.scheduled = false
		b.completeAll()
	}, false)
}

func (b *Batch) remove(r *Resolver) {
	for i, p := range b.pending {
		if p == r {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return
		}
	}
}

// Pending reports how many resolvers are waiting.
func (b *Batch) Pending() int { return len(b.pending) }

func (b *Batch) readAll() {
	for _, r := range b.pending {
		r.readKeyframes()
	}
}

func (b *Batch) completeAll() {
	pending := b.pending
	b.pending = nil
	for _, r := range pending {
		r.finish()
	}
}

// Flush resolves every pending resolver now.
func (b *Batch) Flush() {
	b.readAll()
	b.completeAll()
}
