package cli

// Error codes reported in CLI responses.
const (
	ErrCodeBadFormat = "E001" // unknown or uninferrable format
	ErrCodeIO        = "E002" // unreadable input, failed decode/encode, bad paths
	ErrCodeInvalid   = "E003" // schema validation violations
	ErrCodeConflict  = "E004" // fatal merge conflict
	ErrCodeDangling  = "E005" // dangling object references found
	ErrCodeJob       = "E006" // malformed merge job file
)
