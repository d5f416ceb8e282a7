package submit

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"ojassist/lib/scrapers/openjudge/core"
	"ojassist/lib/scrapers/openjudge/extract"

	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	pages  map[string]string
	script []string
	gets   []string
	forms  []map[string]string
}

func (f *fakeSession) GroupURL(group, path string) string {
	return "http://" + group + ".judge.test" + path
}

func (f *fakeSession) Get(ctx context.Context, url string) (core.Response, error) {
	if err := ctx.Err(); err != nil {
		return core.Response{}, err
	}
	f.gets = append(f.gets, url)
	if body, ok := f.pages[url]; ok {
		return core.Response{Body: body, StatusCode: 200}, nil
	}
	if len(f.script) > 0 {
		body := f.script[0]
		f.script = f.script[1:]
		return core.Response{Body: body, StatusCode: 200}, nil
	}
	return core.Response{}, &core.StatusError{Code: 404, Preview: url}
}

func (f *fakeSession) PostForm(ctx context.Context, url string, form map[string]string) (core.Response, error) {
	f.forms = append(f.forms, form)
	if body, ok := f.pages[url]; ok {
		return core.Response{Body: body, StatusCode: 200}, nil
	}
	return core.Response{}, &core.StatusError{Code: 404, Preview: url}
}

func statusPage(verdict string) string {
	return fmt.Sprintf(`<html><body>
<p class="result"><span class="result-right">%s</span></p>
<dl class="submission-details"><dt>题目</dt><dd>A</dd></dl>
<pre class="sh-cpp">int main() {}</pre>
</body></html>`, verdict)
}

func testProblem() extract.Problem {
	return extract.Problem{
		ID:         "A",
		Title:      "A+B Problem",
		PracticeID: "0001",
		Group:      "algo2024",
		URL:        "/practice/0001/problem/A/",
		ContestID:  "732",
	}
}

func TestSubmitUsesRecordContestID(t *testing.T) {
	session := &fakeSession{pages: map[string]string{
		"http://algo2024.judge.test/api/solution/submitv2/": `{"result":"SUCCESS","message":"","redirect":"/solution/5512034/"}`,
	}}
	client := NewClient(session)

	result, err := client.Submit(context.Background(), testProblem(), "int main() {}", "G++")
	require.NoError(t, err)
	require.Equal(t, "/solution/5512034/", result.Redirect)

	// no submit-page fetch was needed
	require.Empty(t, session.gets)

	require.Len(t, session.forms, 1)
	form := session.forms[0]
	require.Equal(t, "732", form["contestId"])
	require.Equal(t, "A", form["problemNumber"])
	require.Equal(t, "G++", form["language"])
	require.Equal(t, "base64", form["sourceEncode"])
	decoded, err := base64.StdEncoding.DecodeString(form["source"])
	require.NoError(t, err)
	require.Equal(t, "int main() {}", string(decoded))
}

func TestSubmitResolvesContestIDFromSubmitPage(t *testing.T) {
	session := &fakeSession{pages: map[string]string{
		"http://algo2024.judge.test/practice/0001/problem/A/submit/": `<html><body>
			<form><input type="hidden" name="contestId" value="918"/></form>
		</body></html>`,
		"http://algo2024.judge.test/api/solution/submitv2/": `{"result":"SUCCESS","message":"","redirect":"/solution/1/"}`,
	}}
	client := NewClient(session)

	problem := testProblem()
	problem.ContestID = ""
	_, err := client.Submit(context.Background(), problem, "x", "G++")
	require.NoError(t, err)

	require.Len(t, session.gets, 1)
	require.Equal(t, "918", session.forms[0]["contestId"])
}

func TestSubmitFailsWithoutContestID(t *testing.T) {
	session := &fakeSession{pages: map[string]string{
		"http://algo2024.judge.test/practice/0001/problem/A/submit/": `<html><body>no hidden field</body></html>`,
	}}
	client := NewClient(session)

	problem := testProblem()
	problem.ContestID = ""
	_, err := client.Submit(context.Background(), problem, "x", "G++")
	require.ErrorIs(t, err, ErrNoContestID)
	require.Empty(t, session.forms)
}

func TestSubmitRejected(t *testing.T) {
	session := &fakeSession{pages: map[string]string{
		"http://algo2024.judge.test/api/solution/submitv2/": `{"result":"ERROR","message":"please login first"}`,
	}}
	client := NewClient(session)

	_, err := client.Submit(context.Background(), testProblem(), "x", "G++")
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "please login first")
}

func TestPollStopsAtTerminalStatus(t *testing.T) {
	session := &fakeSession{script: []string{
		statusPage("Waiting"),
		statusPage("Running"),
		statusPage("Accepted"),
		statusPage("should never be fetched"),
	}}
	client := NewClient(session)
	client.PollInterval = time.Millisecond
	client.MaxAttempts = 10

	var seen []string
	status, err := client.Poll(
		context.Background(),
		"algo2024", "/solution/5512034/",
		func(s extract.SubmissionStatus) { seen = append(seen, s.Status) },
	)
	require.NoError(t, err)
	require.Equal(t, extract.StatusAccepted, status.Status)
	require.Equal(t, "5512034", status.ID)

	// polling stopped exactly at the terminal response
	require.Len(t, session.gets, 3)
	require.Equal(t, []string{"Waiting", "Running", "Accepted"}, seen)
}

func TestPollExhaustsBudget(t *testing.T) {
	session := &fakeSession{script: []string{
		statusPage("Waiting"), statusPage("Waiting"), statusPage("Waiting"),
		statusPage("Waiting"), statusPage("Waiting"),
	}}
	client := NewClient(session)
	client.PollInterval = time.Millisecond
	client.MaxAttempts = 3

	status, err := client.Poll(context.Background(), "algo2024", "/solution/1/", nil)
	require.ErrorIs(t, err, ErrPollExhausted)
	require.Equal(t, extract.StatusWaiting, status.Status)
	require.Len(t, session.gets, 3)
}

func TestPollCancellation(t *testing.T) {
	session := &fakeSession{script: []string{
		statusPage("Waiting"), statusPage("Waiting"), statusPage("Waiting"),
	}}
	client := NewClient(session)
	client.PollInterval = time.Minute
	client.MaxAttempts = 10

	ctx, cancel := context.WithCancel(context.Background())
	_, err := client.Poll(ctx, "algo2024", "/solution/1/", func(extract.SubmissionStatus) {
		// the watcher goes away mid-poll
		cancel()
	})
	require.ErrorIs(t, err, context.Canceled)

	// no further requests once cancelled
	require.Len(t, session.gets, 1)
}
