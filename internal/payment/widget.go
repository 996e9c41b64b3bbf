package payment

// Callbacks are the four entry points the external payment widget invokes
// out of band. A well-behaved widget calls at most one of success, pending,
// or error, possibly followed by close; the coordinator tolerates worse.
type Callbacks struct {
	OnSuccess func()
	OnPending func()
	OnError   func(err error)
	OnClose   func()
}

// Widget is the embedded payment provider surface. Pay hands over the
// provider token and returns immediately; outcomes arrive via Callbacks.
// A nil Widget on the coordinator is the widget-unavailable condition, not
// a silent no-op.
type Widget interface {
	Pay(token string, cb Callbacks)
}
