package inject

import "github.com/junioryono/inject/internal/lifetime"

// Disposable is implemented by singletons that release resources when the
// Injector is closed.
//
// Example:
//
//	type DatabaseConnection struct {
//	    conn *sql.DB
//	}
//
//	func (dc *DatabaseConnection) Close() error {
//	    return dc.conn.Close()
//	}
type Disposable = lifetime.Disposable

// DisposableWithContext allows disposal with context for graceful shutdown.
// The Injector passes context.Background().
//
// Example:
//
//	func (dc *DatabaseConnection) Close(ctx context.Context) error {
//	    done := make(chan error, 1)
//	    go func() {
//	        done <- dc.conn.Close()
//	    }()
//
//	    select {
//	    case err := <-done:
//	        return err
//	    case <-ctx.Done():
//	        return ctx.Err()
//	    }
//	}
type DisposableWithContext = lifetime.DisposableWithContext
