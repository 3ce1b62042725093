package util

type SubmitErrorCode = int

// general
const (
	ErrorSuccess    SubmitErrorCode = 0
	ErrorCmdArg     SubmitErrorCode = 1
	ErrorConfig     SubmitErrorCode = 2
	ErrorScriptRead SubmitErrorCode = 3
)

// submission pipeline
const (
	// Bad token syntax, out-of-range numeric value, unterminated quote
	// in a GridEngine directive line. Always carries the 1-based script
	// line number.
	ErrorMalformedDirective SubmitErrorCode = 100

	// A site policy rule rejected the job. Carries a user-facing
	// remediation message.
	ErrorPolicyViolation SubmitErrorCode = 101

	// The submitting group could not be resolved to a name.
	ErrorLookupFailure SubmitErrorCode = 102

	// Legacy syntax the scheduler cannot express. Recoverable: the
	// offending entry is skipped, processing continues. Never surfaces
	// from Submit.
	ErrorUnsupportedSyntax SubmitErrorCode = 103
)
