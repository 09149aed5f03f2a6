package exc

// Lex errors start with L, syntax errors with S, everything else with M.
const (
	CodeUnknownFatal     = "M0000"
	CodeFileNotFound     = "M0001"
	CodePermissionDenied = "M0003"
	CodeUnexpectedEOF    = "M0005"
)

const (
	CodeInvalidCharacter      = "L0001"
	CodeUnfinishedString      = "L0002"
	CodeInvalidEscape         = "L0003"
	CodeUnfinishedLongString  = "L0004"
	CodeUnfinishedLongComment = "L0005"
	CodeInvalidLongDelimiter  = "L0006"
	CodeMalformedNumber       = "L0007"
)

const (
	CodeUnexpectedToken   = "S0001"
	CodeUnexpectedEnd     = "S0002"
	CodeReservedWord      = "S0003"
	CodeInvalidStatement  = "S0004"
	CodeInvalidAssignment = "S0005"
	CodeUnclosedBlock     = "S0006"
	CodeRecursionLimit    = "S0007"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
