// Copyright © 2026 The Spill authors

package lisp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// ErrorVal implements the error interface so that errors can be first class lisp
// objects.  The condition name is stored in the Str field while the message is
// stored in the Cells slice.
type ErrorVal LVal

// Error implements the error interface.  The location of the error is printed
// before the condition name when it is known.
func (e *ErrorVal) Error() string {
	if e.Source != nil {
		return fmt.Sprintf("%s: %s", e.Source, e.baseMessage())
	}
	return e.baseMessage()
}

func (e *ErrorVal) baseMessage() string {
	return fmt.Sprintf("%s: %s", e.Str, e.ErrorMessage())
}

// Condition returns the error condition name (e.g., "syntax-error",
// "variable-not-found").
func (e *ErrorVal) Condition() string {
	return e.Str
}

// ErrorMessage returns the underlying message in the error.
func (e *ErrorVal) ErrorMessage() string {
	if len(e.Cells) > 0 {
		if err, ok := e.Cells[0].Native.(error); ok {
			return err.Error()
		}
	}
	return errorCellMessage(e.Cells)
}

// CallStack returns the call stack captured when the error was created.
func (e *ErrorVal) CallStack() *CallStack {
	stack, _ := e.Native.(*CallStack)
	return stack
}

// WriteTrace writes the error and a stack trace to w
func (e *ErrorVal) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	if stack := e.CallStack(); stack != nil {
		if !wrote(stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}

// GoError returns an error that represents v.  If v is not LError then nil is
// returned.
func GoError(v *LVal) error {
	if v.Type != LError {
		return nil
	}
	return (*ErrorVal)(v)
}

// ErrorConditionf returns an LError value with the given condition and a
// message rendered using fmt.Sprintf.  Unlike the LEnv method, the returned
// value carries no call stack.
func ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Type:  LError,
		Str:   condition,
		Cells: []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// Errorf returns a generic LError value with a formatted message.
func Errorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(CondError, format, v...)
}

// Error returns an LError wrapping a Go error.
func Error(err error) *LVal {
	return &LVal{
		Type:  LError,
		Str:   CondError,
		Cells: []*LVal{{Native: err}},
	}
}

func errorCellMessage(ecells []*LVal) string {
	var buf bytes.Buffer
	for i, cell := range ecells {
		if i > 0 {
			buf.WriteString(" ")
		}
		switch {
		case cell.Type == LString:
			buf.WriteString(cell.Str)
		case cell.Native != nil:
			fmt.Fprint(&buf, cell.Native)
		default:
			buf.WriteString(cell.String())
		}
	}
	return buf.String()
}
