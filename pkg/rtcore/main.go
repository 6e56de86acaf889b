package rtcore

import (
	"fmt"
	"io"
	"os"
)

// ExitPanic is the exit code Run returns when the program panics.
const ExitPanic = 101

// exitRequest unwinds the program stack from Runtime.Exit to Run.
type exitRequest struct{ code int }

// Exit ends the program run by Run with the given code. Deferred calls in the
// program still execute. Outside Run it panics.
func (rt *Runtime) Exit(code int) {
	panic(exitRequest{code: code})
}

// Run builds a runtime on the process's standard streams and runs main. The
// result is main's exit code, the code passed to Runtime.Exit, 1 when the
// runtime cannot be built, or ExitPanic when main panics. Leaked blocks are
// logged and reported on stderr but do not change the exit code.
func Run(opts Options, main func(rt *Runtime) int) int {
	return run(opts, os.Stdout, os.Stdin, os.Stderr, main)
}

func run(opts Options, stdout io.Writer, stdin io.Reader, stderr io.Writer, main func(*Runtime) int) (code int) {
	rt, err := New(opts, stdout, stdin, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "rtcore: %v\n", err)
		return 1
	}

	defer func() {
		if err := rt.Close(); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
		}
	}()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if req, ok := r.(exitRequest); ok {
			code = req.code
			return
		}
		rt.log.Error("rtcore: program panicked", "panic", fmt.Sprint(r))
		fmt.Fprintf(stderr, "panic: %v\n", r)
		code = ExitPanic
	}()

	return main(rt)
}

// Main runs main via Run and exits the process with its code.
func Main(opts Options, main func(rt *Runtime) int) {
	os.Exit(Run(opts, main))
}

// Exit terminates the process immediately with code. Deferred calls do not
// run and no leak report is produced.
func Exit(code int) {
	os.Exit(code)
}
