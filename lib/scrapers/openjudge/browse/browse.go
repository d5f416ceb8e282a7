// Package browse fetches and decodes the judge's listing and statement
// pages on top of an authenticated core session.
package browse

import (
	"context"
	"strings"

	"ojassist/lib/scrapers/openjudge/core"
	"ojassist/lib/scrapers/openjudge/extract"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/openjudge/browse")

// Session is the slice of the core client the browse operations need.
type Session interface {
	Get(ctx context.Context, url string) (core.Response, error)
	GroupURL(group, path string) string
}

type Client struct {
	Session Session
}

func NewClient(session Session) Client {
	return Client{Session: session}
}

// PracticeList fetches a group's landing page and returns its practice
// and contest entries. An empty result means the page listed nothing,
// not that the fetch failed.
func (c Client) PracticeList(ctx context.Context, group string) ([]extract.Practice, error) {
	ctx, span := tracer.Start(ctx, "client:PracticeList")
	defer span.End()
	span.SetAttributes(attribute.String("group", group))

	res, err := c.Session.Get(ctx, c.Session.GroupURL(group, "/"))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch group page")
		return nil, err
	}
	return extract.ParsePracticeList(res.Body, group), nil
}

// ProblemList fetches one practice's problem table.
func (c Client) ProblemList(ctx context.Context, group, practiceID string) ([]extract.Problem, error) {
	ctx, span := tracer.Start(ctx, "client:ProblemList")
	defer span.End()
	span.SetAttributes(
		attribute.String("group", group),
		attribute.String("practice", practiceID),
	)

	res, err := c.Session.Get(ctx, c.Session.GroupURL(group, "/practice/"+practiceID+"/"))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch problem list")
		return nil, err
	}
	return extract.ParseProblemList(res.Body, practiceID, group), nil
}

// ProblemDetail fetches one problem's statement page.
func (c Client) ProblemDetail(ctx context.Context, problem extract.Problem) (extract.ProblemDetail, error) {
	ctx, span := tracer.Start(ctx, "client:ProblemDetail")
	defer span.End()
	span.SetAttributes(
		attribute.String("group", problem.Group),
		attribute.String("problem", problem.ID),
	)

	path := problem.URL
	if path == "" {
		path = "/practice/" + problem.PracticeID + "/problem/" + problem.ID + "/"
	}
	pageURL := path
	if !strings.HasPrefix(pageURL, "http") {
		pageURL = c.Session.GroupURL(problem.Group, path)
	}
	res, err := c.Session.Get(ctx, pageURL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch problem page")
		return extract.ProblemDetail{}, err
	}
	return extract.ParseProblemDetail(res.Body, problem.ID), nil
}
