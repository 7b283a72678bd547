package logging

// Standardized structured logging keys.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldPath      = "path"
	FieldTask      = "task"
	FieldFormat    = "format"
)
