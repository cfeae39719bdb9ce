package must

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// Assert stops the process when cond is false. It guards programmer-error
// invariants only; user input is validated with real errors.
func Assert(cond bool, failMessage string) {
	if !cond {
		slog.Error(failMessage)
		os.Exit(1)
	}
}

func Fail(message string) {
	Assert(false, fmt.Sprintf("assertion failed: %s", message))
}

func NoError(err error) {
	if err != nil {
		Fail(err.Error())
	}
}

// CastFloat64 parses embedded catalog numbers that are known to be valid.
func CastFloat64(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	NoError(err)
	return f
}
