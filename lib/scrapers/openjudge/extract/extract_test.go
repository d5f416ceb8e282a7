package extract

import (
	"testing"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	//go:embed testdata/practice_list.html
	practiceListPage string
	//go:embed testdata/problem_list_semantic.html
	problemListSemanticPage string
	//go:embed testdata/problem_list_generic.html
	problemListGenericPage string
	//go:embed testdata/problem_detail_zh.html
	problemDetailZhPage string
	//go:embed testdata/problem_detail_en.html
	problemDetailEnPage string
	//go:embed testdata/submission_accepted.html
	submissionAcceptedPage string
	//go:embed testdata/submission_compile_error.html
	submissionCompileErrorPage string
	//go:embed testdata/submission_compile_error_no_log.html
	submissionCompileErrorNoLogPage string
	//go:embed testdata/submit_page.html
	submitPage string
)

func TestParsePracticeList(t *testing.T) {
	practices := ParsePracticeList(practiceListPage, "algo2024")
	require.Len(t, practices, 4)

	want := []Practice{
		{ID: "0001", Name: "入门练习", Group: "algo2024", ProblemCount: 12, URL: "/practice/0001/", Kind: KindPractice},
		{ID: "0002", Name: "递归与分治", Group: "algo2024", ProblemCount: 8, URL: "/practice/0002/", Kind: KindPractice},
		{ID: "0003", Name: "图论专题", Group: "algo2024", ProblemCount: 0, URL: "/practice/0003/", Kind: KindPractice},
		{ID: "2024spring", Name: "2024 春季选拔赛", Group: "algo2024", ProblemCount: 5, URL: "/contest/2024spring/", Kind: KindContest},
	}
	if diff := cmp.Diff(want, practices); diff != "" {
		t.Fatalf("practice list mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePracticeListEmptyPage(t *testing.T) {
	practices := ParsePracticeList("<html><body><p>nothing here</p></body></html>", "g")
	require.Empty(t, practices)
}

func TestParseProblemListSemanticLayout(t *testing.T) {
	problems := ParseProblemList(problemListSemanticPage, "0001", "algo2024")
	require.Len(t, problems, 2)

	require.Equal(t, "A", problems[0].ID)
	require.Equal(t, "A+B Problem", problems[0].Title)
	require.Equal(t, "87%", problems[0].AcceptanceRate)
	require.Equal(t, "1021", problems[0].PassedCount)
	require.Equal(t, "1174", problems[0].AttemptCount)
	require.Equal(t, "/practice/0001/problem/A/", problems[0].URL)
	require.Equal(t, "732", problems[0].ContestID)

	require.Equal(t, "B", problems[1].ID)
	require.Equal(t, "回文串判断", problems[1].Title)
}

func TestParseProblemListGenericFallback(t *testing.T) {
	problems := ParseProblemList(problemListGenericPage, "0002", "algo2024")
	require.Len(t, problems, 3)

	require.Equal(t, "1", problems[0].ID)
	require.Equal(t, "汉诺塔", problems[0].Title)
	require.Equal(t, "71%", problems[0].AcceptanceRate)
	require.Equal(t, "310", problems[0].PassedCount)
	require.Equal(t, "437", problems[0].AttemptCount)
	require.Equal(t, "/practice/0002/problem/1/", problems[0].URL)
	// no hidden contest field on non-contest practice pages
	require.Empty(t, problems[0].ContestID)

	// cells beyond what is present degrade to absent, not errors
	require.Equal(t, "55%", problems[1].AcceptanceRate)
	require.Empty(t, problems[1].PassedCount)
	require.Empty(t, problems[2].AcceptanceRate)
}

func TestParseProblemDetailLocalized(t *testing.T) {
	detail := ParseProblemDetail(problemDetailZhPage, "1000")

	require.Equal(t, "1000", detail.ID)
	require.Equal(t, "A+B Problem", detail.Title)
	require.Equal(t, "1000ms", detail.TimeLimit)
	require.Equal(t, "65536kB", detail.MemoryLimit)
	require.Contains(t, detail.Description, "<b>a+b</b>")
	require.Equal(t, "一行，两个整数，以空格分隔。", detail.Input)
	// preformatted sample keeps its inner whitespace
	require.Equal(t, "1   2", detail.SampleInput)
	require.Equal(t, "3", detail.SampleOutput)
	require.Equal(t, "注意数据范围。", detail.Hint)
	require.Equal(t, "经典题目", detail.Source)
	require.Equal(t, "7532", detail.GlobalID)
}

func TestParseProblemDetailEnglishFallbackKeys(t *testing.T) {
	detail := ParseProblemDetail(problemDetailEnPage, "2750")

	require.Equal(t, "Magic Squares", detail.Title)
	require.Equal(t, "2000ms", detail.TimeLimit)
	require.Equal(t, "Construct an n by n magic square.", detail.Description)
	require.Equal(t, "3", detail.SampleInput)
	require.Equal(t, "8 1 6\n3 5 7\n4 9 2", detail.SampleOutput)
	require.Empty(t, detail.Hint)
	require.Empty(t, detail.Source)
	require.Empty(t, detail.GlobalID)
}

func TestParseSubmissionStatusAccepted(t *testing.T) {
	status := ParseSubmissionStatus("5512034", submissionAcceptedPage)

	require.Equal(t, "5512034", status.ID)
	require.Equal(t, StatusAccepted, status.Status)
	require.True(t, IsTerminal(status.Status))
	require.Equal(t, "A", status.ProblemID)
	require.Equal(t, "G++", status.Language)
	require.Equal(t, "1280kB", status.Memory)
	require.Equal(t, "2ms", status.Time)
	require.Equal(t, "2024-06-01 10:12:33", status.SubmitTime)
	require.Equal(t, "alice", status.Submitter)
	require.Contains(t, status.Code, "std::cin >> a >> b")
	require.Empty(t, status.ErrorMessage)
}

func TestParseSubmissionStatusCompileError(t *testing.T) {
	status := ParseSubmissionStatus("5512035", submissionCompileErrorPage)

	require.Equal(t, StatusCompileError, status.Status)
	require.True(t, IsCompileFailure(status.Status))
	require.Equal(t, "int main( {", status.Code)
	require.Contains(t, status.ErrorMessage, "expected primary-expression")
}

func TestParseSubmissionStatusCompileErrorWithoutLog(t *testing.T) {
	status := ParseSubmissionStatus("5512036", submissionCompileErrorNoLogPage)

	// the verdict says compile error but no error block exists on the
	// page; the message stays empty rather than failing the parse
	require.Equal(t, StatusCompileError, status.Status)
	require.Empty(t, status.ErrorMessage)
}

func TestExtractContestID(t *testing.T) {
	require.Equal(t, "918", ExtractContestID(submitPage))
	require.Empty(t, ExtractContestID("<html><body></body></html>"))
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []string{
		StatusAccepted, StatusWrongAnswer, StatusTimeLimitExceeded,
		StatusMemoryLimit, StatusRuntimeError, StatusCompileError,
		StatusPresentationError,
	} {
		require.True(t, IsTerminal(s), s)
	}
	for _, s := range []string{StatusWaiting, StatusCompiling, StatusRunning, ""} {
		require.False(t, IsTerminal(s), s)
	}
}
