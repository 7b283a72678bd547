// Package encoding drives the external ffmpeg encoder.
//
// Args renders the argument list for one Job; FFmpeg runs it. Inputs are
// either a file path or an in-memory buffer that is written in full to the
// encoder's standard input ("pipe:") before waiting for it to exit. A
// non-zero exit status is reported as ErrEncoderFailed together with the
// captured standard error.
//
// The encoder command may carry a wrapper, e.g. "nice -n 10 ffmpeg"; it is
// split with shell quoting rules.
package encoding
