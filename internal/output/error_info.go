package output

// CommandErrorInfo contains error information for a failed external command.
type CommandErrorInfo struct {
	Command  string   // Full command that was executed
	Args     []string // Command arguments
	WorkDir  string   // Working directory
	Stderr   string   // Standard error content
	ExitCode int      // Exit code
}
