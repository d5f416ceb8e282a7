package extract

type PracticeKind string

const (
	KindPractice PracticeKind = "practice"
	KindContest  PracticeKind = "contest"
)

// Practice is one entry on a group's landing page, either an open
// practice set or a contest. Identified by (Group, ID).
type Practice struct {
	ID           string
	Name         string
	Group        string
	ProblemCount int
	URL          string
	Kind         PracticeKind
}

// Problem is one row of a practice's problem listing. The statistics
// fields hold raw cell text and stay empty when the page layout does
// not expose them. ContestID may be empty until resolved from the
// submit page.
type Problem struct {
	ID             string
	Title          string
	PracticeID     string
	Group          string
	AcceptanceRate string
	PassedCount    string
	AttemptCount   string
	URL            string
	ContestID      string
}

// ProblemDetail carries the statement of a single problem. Content
// fields hold inner markup rather than plain text so that whitespace
// significant sample blocks survive.
type ProblemDetail struct {
	ID           string
	Title        string
	TimeLimit    string
	MemoryLimit  string
	Description  string
	Input        string
	Output       string
	SampleInput  string
	SampleOutput string
	Hint         string
	Source       string
	GlobalID     string
}

type SubmissionStatus struct {
	ID           string
	ProblemID    string
	Status       string
	Language     string
	Memory       string
	Time         string
	SubmitTime   string
	Submitter    string
	Code         string
	ErrorMessage string
}

const (
	StatusWaiting           = "Waiting"
	StatusCompiling         = "Compiling"
	StatusRunning           = "Running"
	StatusAccepted          = "Accepted"
	StatusWrongAnswer       = "Wrong Answer"
	StatusTimeLimitExceeded = "Time Limit Exceeded"
	StatusMemoryLimit       = "Memory Limit Exceeded"
	StatusRuntimeError      = "Runtime Error"
	StatusCompileError      = "Compile Error"
	StatusPresentationError = "Presentation Error"
)

var statusAliases = map[string]string{
	"编译错误": StatusCompileError,
	"答案正确": StatusAccepted,
	"答案错误": StatusWrongAnswer,
}

var terminalStatuses = map[string]bool{
	StatusAccepted:          true,
	StatusWrongAnswer:       true,
	StatusTimeLimitExceeded: true,
	StatusMemoryLimit:       true,
	StatusRuntimeError:      true,
	StatusCompileError:      true,
	StatusPresentationError: true,
}

// NormalizeStatus maps localized verdict text onto the canonical
// English verdict where a translation is known, otherwise it returns
// the input untouched.
func NormalizeStatus(status string) string {
	if canonical, ok := statusAliases[status]; ok {
		return canonical
	}
	return status
}

// IsTerminal reports whether polling should stop on this verdict.
func IsTerminal(status string) bool {
	return terminalStatuses[NormalizeStatus(status)]
}

// IsCompileFailure matches both the localized and the English phrasing
// of a failed compile.
func IsCompileFailure(status string) bool {
	return NormalizeStatus(status) == StatusCompileError
}
