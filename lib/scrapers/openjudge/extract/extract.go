// Package extract turns the judge's server-rendered HTML into typed
// records. Every function here is a pure function of its input string:
// no network, no storage, and no errors for structural mismatch — a
// page that matches nothing yields an empty result, a field that
// matches nothing stays empty. The site's markup is not under our
// control, so partial data always beats a hard failure.
package extract

import (
	"regexp"
	"strings"

	"ojassist/lib/htmlutil"
	"ojassist/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

func parse(html string) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}
	return doc, true
}

var (
	trailingIDRegex    = regexp.MustCompile(`/([^/]+)/?$`)
	problemCountRegex  = regexp.MustCompile(`[(（](\d+)\s*题[)）]`)
	titlePrefixRegex   = regexp.MustCompile(`^\d+\s*[:：]\s*`)
	numberRegex        = regexp.MustCompile(`\d+`)
	errorIndicators    = []string{"error", "错误"}
)

func idFromHref(href string) string {
	groups := trailingIDRegex.FindStringSubmatch(strings.TrimRight(href, "/") + "/")
	if len(groups) < 2 {
		return ""
	}
	return groups[1]
}

func countFromText(text string) int {
	groups := problemCountRegex.FindStringSubmatch(text)
	if len(groups) < 2 {
		return 0
	}
	n := 0
	for _, c := range groups[1] {
		n = n*10 + int(c-'0')
	}
	return n
}

func practiceFromItem(item *goquery.Selection, group string, kind PracticeKind) (Practice, bool) {
	anchors := htmlutil.GetAnchors(item.Find("a").First())
	if len(anchors) == 0 {
		return Practice{}, false
	}
	link := anchors[0]
	id := idFromHref(link.Href)
	if id == "" || link.Name == "" {
		return Practice{}, false
	}
	return Practice{
		ID:           id,
		Name:         link.Name,
		Group:        group,
		ProblemCount: countFromText(item.Text()),
		URL:          link.Href,
		Kind:         kind,
	}, true
}

// ParsePracticeList scans a group landing page for its two item
// families, open practices and contests, in document order.
func ParsePracticeList(html, group string) []Practice {
	doc, ok := parse(html)
	if !ok {
		return nil
	}

	var practices []Practice
	doc.Find("ul.practice-list li.practice").Each(func(_ int, item *goquery.Selection) {
		if p, ok := practiceFromItem(item, group, KindPractice); ok {
			practices = append(practices, p)
		}
	})
	doc.Find("ul.contest-list li.contest").Each(func(_ int, item *goquery.Selection) {
		if p, ok := practiceFromItem(item, group, KindContest); ok {
			practices = append(practices, p)
		}
	})
	return practices
}

// ExtractContestID reads the hidden contest identifier form field
// present on contest listing and submit pages. Empty when absent.
func ExtractContestID(html string) string {
	doc, ok := parse(html)
	if !ok {
		return ""
	}
	return doc.Find("input[name=contestId]").AttrOr("value", "")
}

func problemFromSemanticRow(row *goquery.Selection, practiceID, group, contestID string) (Problem, bool) {
	id := htmlutil.CleanText(row.Find("td.problem-id").Text())
	titleCell := row.Find("td.title")
	link := titleCell.Find("a").First()
	title := htmlutil.CleanText(titleCell.Text())
	if id == "" || title == "" {
		return Problem{}, false
	}
	return Problem{
		ID:             id,
		Title:          title,
		PracticeID:     practiceID,
		Group:          group,
		AcceptanceRate: htmlutil.CleanText(row.Find("td.accepted-ratio").Text()),
		PassedCount:    htmlutil.CleanText(row.Find("td.accepted").Text()),
		AttemptCount:   htmlutil.CleanText(row.Find("td.submissions").Text()),
		URL:            link.AttrOr("href", ""),
		ContestID:      contestID,
	}, true
}

func problemFromGenericRow(row *goquery.Selection, practiceID, group, contestID string) (Problem, bool) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return Problem{}, false
	}
	cell := func(i int) *goquery.Selection {
		return cells.Eq(i)
	}
	id := htmlutil.CleanText(cell(0).Text())
	title := htmlutil.CleanText(cell(1).Text())
	if id == "" || title == "" {
		return Problem{}, false
	}
	href := cell(1).Find("a").First().AttrOr("href", "")
	if href == "" {
		href = cell(0).Find("a").First().AttrOr("href", "")
	}
	p := Problem{
		ID:         id,
		Title:      title,
		PracticeID: practiceID,
		Group:      group,
		URL:        href,
		ContestID:  contestID,
	}
	if cells.Length() > 2 {
		p.AcceptanceRate = htmlutil.CleanText(cell(2).Text())
	}
	if cells.Length() > 3 {
		p.PassedCount = htmlutil.CleanText(cell(3).Text())
	}
	if cells.Length() > 4 {
		p.AttemptCount = htmlutil.CleanText(cell(4).Text())
	}
	return p, true
}

// ParseProblemList reads a practice's problem table. The semantically
// marked layout is tried first; only when it yields zero rows does the
// generic positional layout run, so pages exposing both cannot produce
// mixed results.
func ParseProblemList(html, practiceID, group string) []Problem {
	doc, ok := parse(html)
	if !ok {
		return nil
	}

	contestID := doc.Find("input[name=contestId]").AttrOr("value", "")

	var problems []Problem
	doc.Find("table.problems-list tr").Each(func(_ int, row *goquery.Selection) {
		if p, ok := problemFromSemanticRow(row, practiceID, group, contestID); ok {
			problems = append(problems, p)
		}
	})
	if len(problems) > 0 {
		return problems
	}

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		if p, ok := problemFromGenericRow(row, practiceID, group, contestID); ok {
			problems = append(problems, p)
		}
	})
	return problems
}

// definitionPairs walks the dt/dd children of a definition list,
// mapping each normalized term to the description selection that
// follows it.
func definitionPairs(dl *goquery.Selection) map[string]*goquery.Selection {
	pairs := map[string]*goquery.Selection{}
	label := ""
	dl.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "dt":
			label = textutil.NormalizeLabel(child.Text())
		case "dd":
			if label != "" {
				pairs[label] = child
			}
			label = ""
		}
	})
	return pairs
}

// lookup tries the localized key first, then the English one.
func lookup(pairs map[string]*goquery.Selection, localized, english string) *goquery.Selection {
	if sel, ok := pairs[localized]; ok {
		return sel
	}
	if sel, ok := pairs[textutil.NormalizeLabel(english)]; ok {
		return sel
	}
	return nil
}

func textField(pairs map[string]*goquery.Selection, localized, english string) string {
	sel := lookup(pairs, localized, english)
	if sel == nil {
		return ""
	}
	return htmlutil.CleanText(sel.Text())
}

// markupField keeps the inner markup of a preformatted block when one
// exists, so sample input/output whitespace survives; otherwise the
// field's raw markup is used.
func markupField(pairs map[string]*goquery.Selection, localized, english string) string {
	sel := lookup(pairs, localized, english)
	if sel == nil {
		return ""
	}
	pre := sel.Find("pre")
	if pre.Length() > 0 {
		return htmlutil.InnerHTML(pre.First())
	}
	return strings.TrimSpace(htmlutil.InnerHTML(sel))
}

// ParseProblemDetail extracts a full problem statement. Bilingual
// deployments label the same fields differently, so every field is
// looked up under both its localized and its English key.
func ParseProblemDetail(html, problemID string) ProblemDetail {
	detail := ProblemDetail{ID: problemID}
	doc, ok := parse(html)
	if !ok {
		return detail
	}

	title := htmlutil.CleanText(doc.Find("div.problem-page h2").First().Text())
	detail.Title = titlePrefixRegex.ReplaceAllString(title, "")

	params := definitionPairs(doc.Find("dl.problem-params").First())
	detail.TimeLimit = textField(params, "时间限制", "Time Limit")
	detail.MemoryLimit = textField(params, "内存限制", "Memory Limit")

	content := definitionPairs(doc.Find("dl.problem-content").First())
	detail.Description = markupField(content, "描述", "Description")
	detail.Input = markupField(content, "输入", "Input")
	detail.Output = markupField(content, "输出", "Output")
	detail.SampleInput = markupField(content, "样例输入", "Sample Input")
	detail.SampleOutput = markupField(content, "样例输出", "Sample Output")
	detail.Hint = markupField(content, "提示", "Hint")
	detail.Source = textField(content, "来源", "Source")

	stats := definitionPairs(doc.Find("dl.problem-stat").First())
	detail.GlobalID = numberRegex.FindString(textField(stats, "全局题号", "Global ID"))

	return detail
}

var statusSelectors = []string{
	"p.compile-status a.submitStatus",
	"p.result span.result-right",
	"p.result span.result-wrong",
}

// ParseSubmissionStatus reads one solution status page. The verdict
// indicator moved between judge versions, so several selectors are
// tried in order. When the verdict is a compile failure the error text
// lives in some preformatted block containing an error-indicating
// substring; if no such block exists the message simply stays empty.
func ParseSubmissionStatus(id, html string) SubmissionStatus {
	status := SubmissionStatus{ID: id}
	doc, ok := parse(html)
	if !ok {
		return status
	}

	for _, selector := range statusSelectors {
		text := htmlutil.CleanText(doc.Find(selector).First().Text())
		if text != "" {
			status.Status = NormalizeStatus(text)
			break
		}
	}

	info := definitionPairs(doc.Find("dl.submission-details").First())
	status.ProblemID = textField(info, "题目", "Problem")
	status.Language = textField(info, "语言", "Language")
	status.Memory = textField(info, "内存", "Memory")
	status.Time = textField(info, "时间", "Time")
	status.SubmitTime = textField(info, "提交时间", "Submit Time")
	status.Submitter = textField(info, "提交人", "Submitter")

	code := doc.Find("pre[class*=sh-]").First()
	if code.Length() == 0 {
		code = doc.Find("pre").First()
	}
	status.Code = code.Text()

	if IsCompileFailure(status.Status) {
		doc.Find("pre").EachWithBreak(func(_ int, pre *goquery.Selection) bool {
			text := pre.Text()
			if textutil.MatchName(text, errorIndicators) {
				status.ErrorMessage = text
				return false
			}
			return true
		})
	}

	return status
}
