package repair

import (
	"fmt"
)

// Severity ranks how badly an issue affects a server.
type Severity string

const (
	Critical Severity = "critical"
	Warning  Severity = "warning"
)

// Fix is the remedy for an Issue. It is one of ManualFix, InsertFlagFix or SetEnvFix.
type Fix interface {
	// Automatic reports whether the engine can apply the fix.
	Automatic() bool

	// String describes the fix for the operator.
	String() string

	isFix()
}

var (
	_ Fix = ManualFix{}
	_ Fix = InsertFlagFix{}
	_ Fix = SetEnvFix{}
)

// ManualFix is an issue the operator has to correct by editing the file.
type ManualFix struct {
	Instruction string
}

func (ManualFix) Automatic() bool { return false }

func (f ManualFix) String() string { return f.Instruction }

func (ManualFix) isFix() {}

// InsertFlagFix inserts Flag as the first argument of the server.
type InsertFlagFix struct {
	Flag string
}

func (InsertFlagFix) Automatic() bool { return true }

func (f InsertFlagFix) String() string { return fmt.Sprintf("Insert '%s' as the first argument", f.Flag) }

func (InsertFlagFix) isFix() {}

// SetEnvFix asks the operator for a value for the environment variable Key.
type SetEnvFix struct {
	Key string
}

func (SetEnvFix) Automatic() bool { return true }

func (f SetEnvFix) String() string { return fmt.Sprintf("Set a value for '%s'", f.Key) }

func (SetEnvFix) isFix() {}

// Issue is a problem found with a server entry (or with the file as a whole, when Server is empty).
type Issue struct {
	Severity    Severity
	Server      string
	Scope       string
	Description string
	Fix         Fix
}
