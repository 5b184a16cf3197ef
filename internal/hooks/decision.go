package hooks

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Decision is a hook's verdict on the triggering action.
type Decision struct {
	// Blocked stops the action; Reason is shown to the host.
	Blocked bool
	Reason  string

	// Stdout is an optional message for the host on an allowed action.
	Stdout string
}

// Allow lets the action proceed silently.
func Allow() Decision {
	return Decision{}
}

// Block stops the action with a reason.
func Block(reason string) Decision {
	return Decision{Blocked: true, Reason: reason}
}

// BlockErr stops the action with err's message as the reason.
func BlockErr(err error) Decision {
	return Block(err.Error())
}

// Guard runs fn and converts any error or panic into Allow plus a warning.
// Only a Decision returned by fn can block.
func Guard(log *zap.Logger, name string, fn func() (Decision, error)) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("hook panicked, allowing",
				zap.String("hook", name),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			d = Allow()
		}
	}()

	d, err := fn()
	if err != nil {
		log.Warn("hook failed, allowing", zap.String("hook", name), zap.Error(err))
		return Allow()
	}
	return d
}

// Emit writes d to the host streams and returns the process exit code.
func Emit(d Decision, stdout, stderr io.Writer, blockCode int) int {
	if d.Stdout != "" {
		fmt.Fprintln(stdout, strings.TrimRight(d.Stdout, "\n"))
	}
	if !d.Blocked {
		return 0
	}
	fmt.Fprintln(stderr, strings.TrimRight(d.Reason, "\n"))
	return blockCode
}
