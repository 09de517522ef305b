package errors

import (
	"fmt"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Re-export the underlying error primitives so callers only import this package.
var (
	New           = errors.New
	Errorf        = errors.Errorf
	Annotate      = errors.Annotate
	Annotatef     = errors.Annotatef
	Trace         = errors.Trace
	AddStack      = errors.AddStack
	Cause         = errors.Cause
	SuspendStack  = errors.SuspendStack
	ErrorStack    = errors.ErrorStack
	ErrorEqual    = errors.ErrorEqual
	ErrorNotEqual = errors.ErrorNotEqual
)

// ErrCode represents a specific error type in an error class.
type ErrCode int

// ErrClass represents a class of errors.
type ErrClass int

// Error classes.
const (
	ClassCodec ErrClass = iota + 1
	ClassProtocol
	ClassHandshake
	ClassServer
)

// ErrClz2Str maps error classes to descriptions.
var ErrClz2Str = map[ErrClass]string{
	ClassCodec:     "codec",
	ClassProtocol:  "protocol",
	ClassHandshake: "handshake",
	ClassServer:    "server",
}

// String implements fmt.Stringer interface.
func (ec ErrClass) String() string {
	if s, exists := ErrClz2Str[ec]; exists {
		return s
	}
	return fmt.Sprintf("unknown error class: %d", int(ec))
}

// New creates an *Error with an error code and an error message.
// Usually used to create base *Error.
func (ec ErrClass) New(code ErrCode, message string) *Error {
	return &Error{
		class:   ec,
		code:    code,
		message: message,
	}
}

// EqualClass returns true if err is *Error with the same class.
func (ec ErrClass) EqualClass(err error) bool {
	e := errors.Cause(err)
	if e == nil {
		return false
	}
	if te, ok := e.(*Error); ok {
		return te.class == ec
	}
	return false
}

// Error implements error interface and adds integer Class and Code, so
// errors with different message can be compared.
type Error struct {
	class   ErrClass
	code    ErrCode
	message string
	args    []interface{}
}

// Class returns ErrClass.
func (e *Error) Class() ErrClass {
	return e.class
}

// Code returns ErrCode.
func (e *Error) Code() ErrCode {
	return e.code
}

func (e *Error) getMsg() string {
	if len(e.args) > 0 {
		return fmt.Sprintf(e.message, e.args...)
	}
	return e.message
}

// Error implements error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s:%d]%s", e.class, e.code, e.getMsg())
}

// GenWithStack generates a new *Error with the same class and code, and a new formatted message.
func (e *Error) GenWithStack(format string, args ...interface{}) error {
	err := *e
	err.message = format
	err.args = args
	return errors.AddStack(&err)
}

// GenWithStackByArgs generates a new *Error with the same class and code, and new arguments.
func (e *Error) GenWithStackByArgs(args ...interface{}) error {
	err := *e
	err.args = args
	return errors.AddStack(&err)
}

// FastGenByArgs generates a new *Error with the same class and code, and new arguments.
// Stack is not collected, for hot paths where the cost matters.
func (e *Error) FastGenByArgs(args ...interface{}) error {
	err := *e
	err.args = args
	return errors.SuspendStack(&err)
}

// Equal checks if err is equal to e in class and code.
func (e *Error) Equal(err error) bool {
	originErr := errors.Cause(err)
	if originErr == nil {
		return false
	}
	inErr, ok := originErr.(*Error)
	return ok && e.class == inErr.class && e.code == inErr.code
}

// NotEqual checks if err is not equal to e.
func (e *Error) NotEqual(err error) bool {
	return !e.Equal(err)
}

// Log logs the error if it is not nil.
func Log(err error) {
	if err != nil {
		log.Error("encountered error", zap.Error(errors.WithStack(err)))
	}
}

// Call executes a function and logs its error if any, typically for
// deferred Close calls whose error would otherwise be dropped.
func Call(fn func() error) {
	Log(fn())
}

// MustNil asserts that the error is nil, and panics otherwise.
// Only used during bootstrap where continuing makes no sense.
func MustNil(err error) {
	if err != nil {
		log.Fatal("encountered error", zap.Error(errors.WithStack(err)))
	}
}
