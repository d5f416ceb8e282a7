// Package submit posts solutions to the judge and polls the resulting
// status page until the verdict settles.
package submit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ojassist/lib/scrapers/openjudge/core"
	"ojassist/lib/scrapers/openjudge/extract"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/openjudge/submit")

var (
	ErrNoContestID = fmt.Errorf("could not resolve a contest id for this problem")
	ErrRejected    = fmt.Errorf("the judge rejected the submission")
	// ErrPollExhausted means no terminal verdict arrived within the
	// attempt ceiling. The submission is still pending on the judge,
	// this is not a failure of the submission itself.
	ErrPollExhausted = fmt.Errorf("submission still pending after polling budget")
)

// Session is the slice of the core client the submission flow needs.
type Session interface {
	Get(ctx context.Context, url string) (core.Response, error)
	PostForm(ctx context.Context, url string, form map[string]string) (core.Response, error)
	GroupURL(group, path string) string
}

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 30
)

type Client struct {
	Session      Session
	PollInterval time.Duration
	MaxAttempts  int
}

func NewClient(session Session) Client {
	return Client{
		Session:      session,
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

type Result struct {
	Message string
	// Redirect is the solution status page to poll.
	Redirect string
}

// resolveContestID prefers the id already on the problem record and
// otherwise pulls it from the hidden field on the problem's submit
// page. Absence after both attempts is a hard failure: the judge will
// not accept a submission without it.
func (c Client) resolveContestID(ctx context.Context, problem extract.Problem) (string, error) {
	if problem.ContestID != "" {
		return problem.ContestID, nil
	}

	path := strings.TrimSuffix(problem.URL, "/") + "/submit/"
	if path == "/submit/" {
		path = "/practice/" + problem.PracticeID + "/problem/" + problem.ID + "/submit/"
	}
	res, err := c.Session.Get(ctx, c.Session.GroupURL(problem.Group, path))
	if err != nil {
		return "", err
	}
	contestID := extract.ExtractContestID(res.Body)
	if contestID == "" {
		return "", ErrNoContestID
	}
	return contestID, nil
}

// Submit posts the solution source for judging. The source travels
// base64-encoded, which is what the judge's own frontend does.
func (c Client) Submit(ctx context.Context, problem extract.Problem, source, language string) (Result, error) {
	ctx, span := tracer.Start(ctx, "client:Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("group", problem.Group),
		attribute.String("problem", problem.ID),
		attribute.String("language", language),
	)

	contestID, err := c.resolveContestID(ctx, problem)
	if err != nil {
		span.SetStatus(codes.Error, "failed to resolve contest id")
		return Result{}, err
	}

	res, err := c.Session.PostForm(
		ctx,
		c.Session.GroupURL(problem.Group, "/api/solution/submitv2/"),
		map[string]string{
			"contestId":     contestID,
			"problemNumber": problem.ID,
			"sourceEncode":  "base64",
			"language":      language,
			"source":        base64.StdEncoding.EncodeToString([]byte(source)),
		},
	)
	if err != nil {
		span.SetStatus(codes.Error, "submission request failed")
		return Result{}, err
	}

	var apiRes core.APIResult
	if err := json.Unmarshal([]byte(res.Body), &apiRes); err != nil {
		span.SetStatus(codes.Error, "unexpected submission response")
		return Result{}, fmt.Errorf("parse submission response: %w", err)
	}
	if apiRes.Result != "SUCCESS" {
		span.SetStatus(codes.Error, "submission rejected")
		if apiRes.Message != "" {
			return Result{}, fmt.Errorf("%w: %s", ErrRejected, apiRes.Message)
		}
		return Result{}, ErrRejected
	}

	return Result{Message: apiRes.Message, Redirect: apiRes.Redirect}, nil
}

func solutionIDFromURL(redirect string) string {
	trimmed := strings.TrimRight(redirect, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// Poll fetches the status page at a fixed interval until a terminal
// verdict arrives or the attempt ceiling is hit, invoking onUpdate
// with every parsed snapshot. Context cancellation stops the loop on
// any path with no further requests issued; the ticker is released on
// every exit.
func (c Client) Poll(
	ctx context.Context,
	group, redirect string,
	onUpdate func(extract.SubmissionStatus),
) (extract.SubmissionStatus, error) {
	ctx, span := tracer.Start(ctx, "client:Poll")
	defer span.End()
	span.SetAttributes(attribute.String("redirect", redirect))

	statusURL := redirect
	if !strings.HasPrefix(statusURL, "http") {
		statusURL = c.Session.GroupURL(group, redirect)
	}
	solutionID := solutionIDFromURL(redirect)

	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last extract.SubmissionStatus
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return last, ctx.Err()
			}
		}

		res, err := c.Session.Get(ctx, statusURL)
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch status page")
			return last, err
		}

		last = extract.ParseSubmissionStatus(solutionID, res.Body)
		if onUpdate != nil {
			onUpdate(last)
		}
		if extract.IsTerminal(last.Status) {
			return last, nil
		}
	}

	span.SetStatus(codes.Error, ErrPollExhausted.Error())
	return last, ErrPollExhausted
}
