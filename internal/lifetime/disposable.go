package lifetime

import "context"

// Disposable is implemented by instances that release resources on Close.
type Disposable interface {
	Close() error
}

// DisposableWithContext is implemented by instances whose cleanup accepts a
// context. It takes precedence over Disposable.
type DisposableWithContext interface {
	Close(ctx context.Context) error
}
