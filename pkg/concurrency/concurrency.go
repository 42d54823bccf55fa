package concurrency

const (
	// DefaultMax default max
	DefaultMax = 256
)

// GoLimit caps the number of goroutines running at once
type GoLimit struct {
	ch chan struct{}
}

// NewGoLimit new go limit, max <= 0 means DefaultMax
func NewGoLimit(max int) *GoLimit {
	if max <= 0 {
		max = DefaultMax
	}

	return &GoLimit{
		ch: make(chan struct{}, max),
	}
}

// Add take a slot, blocks while max goroutines hold one
func (g *GoLimit) Add() {
	g.ch <- struct{}{}
}

// Done release a slot
func (g *GoLimit) Done() {
	<-g.ch
}

// Go run fn in a goroutine once a slot is free
func (g *GoLimit) Go(fn func()) {
	g.Add()
	go func() {
		defer g.Done()
		fn()
	}()
}
