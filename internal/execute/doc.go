// Package execute runs a plan.
//
// Tasks run strictly in order. For each incomplete task the executor first
// performs its queued pre-removals; if any fails the task is left for the
// next run. A Convert encodes into the partial path and renames it onto
// the destination only after the encoder succeeded. A Transfer hard-links,
// moves or copies (archive entries are always copied). A failure is
// reported and leaves the task incomplete; later tasks still run.
//
// After all tasks, sources whose every task completed are moved to the
// trash directory when requested, and directories left empty are removed,
// cascading upward but never above the scan root.
//
// Dry runs print every step, mutate nothing and mark tasks complete.
package execute
