package utils

import (
	"fmt"
	"io"
	"os"
)

// errorWriter is where operator error reports go. Tests swap it.
var errorWriter io.Writer = os.Stderr

// ShowError prints the boxed operator report for a fatal failure.
// It does not exit; callers return the error so deferred releases run.
func ShowError(context string, err error) {
	fmt.Fprintf(errorWriter, "\n---------------------------------------------------------\n")
	fmt.Fprintf(errorWriter, "🚨 FACELIGHT ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(errorWriter, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(errorWriter, "---------------------------------------------------------\n")
}

// Reported marks an error that has already been shown to the operator,
// so the root command does not print it a second time.
type Reported struct {
	Err error
}

func (r *Reported) Error() string { return r.Err.Error() }
func (r *Reported) Unwrap() error { return r.Err }

// Report shows the error box and returns err wrapped as Reported.
func Report(context string, err error) error {
	ShowError(context, err)
	return &Reported{Err: fmt.Errorf("%s: %w", context, err)}
}
