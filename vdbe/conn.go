package vdbe

import (
	"strings"
	"sync"

	"github.com/el-yawd/sqlite-vdbe-sub000/engine"
)

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

var (
	libOnce sync.Once
	libErr  error
)

// libInit runs the engine's process-wide setup exactly once, no matter how
// many connections open concurrently.
func libInit() error {
	libOnce.Do(func() {
		libErr = engine.Initialize()
	})
	return libErr
}

// Connection is an open session on the engine. Programs built on the same
// connection share its table storage. A Connection and everything created
// from it belongs to one goroutine; see the package documentation.
type Connection struct {
	db     *engine.Conn
	closed bool
}

// Open creates a session on the named target. The empty string and
// ":memory:" both denote a private in-memory session. Paths containing a
// NUL byte are rejected with an invalid-path error.
func Open(path string) (*Connection, error) {
	if err := libInit(); err != nil {
		return nil, kindErr(KindAllocationFailed, "engine initialization failed: %v", err)
	}
	if strings.ContainsRune(path, 0) {
		return nil, kindErr(KindInvalidPath, "path contains an interior NUL byte")
	}
	db, err := engine.Open(path)
	if err != nil {
		return nil, wrapEngine(err)
	}
	if db == nil {
		return nil, kindErr(KindAllocationFailed, "engine returned no session handle")
	}
	return &Connection{db: db}, nil
}

// OpenInMemory creates a private in-memory session.
func OpenInMemory() (*Connection, error) {
	return Open(":memory:")
}

// Path returns the name the session was opened with.
func (c *Connection) Path() string {
	if c.db == nil {
		return ""
	}
	return c.db.Path()
}

// NewProgram starts building a program on this connection.
func (c *Connection) NewProgram() (*ProgramBuilder, error) {
	if c == nil || c.closed {
		return nil, kindErr(KindInvalidState, "connection is closed")
	}
	vm, err := c.db.New()
	if err != nil {
		return nil, wrapEngine(err)
	}
	return &ProgramBuilder{conn: c, vm: vm}, nil
}

// LastError returns the most recent engine-reported error on this session,
// or nil. Errors surfaced by Step are also recorded here.
func (c *Connection) LastError() error {
	if c == nil || c.db == nil {
		return nil
	}
	if ee := c.db.LastError(); ee != nil {
		return wrapEngine(ee)
	}
	return nil
}

// Close releases the session. Programs still holding the connection fault
// on their next engine call. Closing twice is harmless.
func (c *Connection) Close() {
	if c == nil || c.closed {
		return
	}
	c.db.Close()
	c.closed = true
}
