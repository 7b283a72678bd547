// Package workflow runs one audiovert invocation end to end.
//
// A Runner plans every input path, prints planning diagnostics (unsupported
// files, existing destinations, per-source errors, tag dumps), aborts when
// errors were found and keep-going is off, checks that the encoder is
// installed, and then hands the plan to the executor. The executor summary
// is returned for the CLI to render.
package workflow
