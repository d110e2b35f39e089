package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldKey       = "key"
	FieldKeys      = "keys"
	FieldAttempt   = "attempt"
	FieldVersion   = "version"
	FieldBackend   = "backend"
	FieldDuration  = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentLedger      = "ledger"
	ComponentPersistence = "persistence"
	ComponentWorker      = "worker"
	ComponentBackend     = "backend"
	ComponentCLI         = "cli"
)

// Operations recorded on ledger change events and log lines.
const (
	OpAddAccount     = "add_account"
	OpDeleteAccount  = "delete_account"
	OpAddTransaction = "add_transaction"
	OpAssign         = "assign_money"
	OpAdjust         = "adjust_money"
	OpMove           = "move_money"
	OpReconcile      = "reconcile"
	OpUpsertTarget   = "upsert_target"
	OpDeleteTarget   = "delete_target"
	OpReorder        = "reorder"
	OpAddGroup       = "add_group"
	OpRenameGroup    = "rename_group"
	OpDeleteGroup    = "delete_group"
	OpAddCategory    = "add_category"
	OpRenameCategory = "rename_category"
	OpDeleteCategory = "delete_category"
	OpRenamePlan     = "rename_plan"
	OpReset          = "reset"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithKeys adds the persistence keys touched by an operation.
func (f LogFields) WithKeys(keys []string) LogFields {
	f[FieldKeys] = keys
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
