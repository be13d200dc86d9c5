package checkins

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/NordCoder/checkins/internal/domain"
	"github.com/NordCoder/checkins/internal/domain/checkin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Caller is an authenticated call against the Foursquare API. Implementations
// inject credentials and unwrap the response envelope into out.
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, form url.Values, out any) error
}

type Client struct {
	api Caller
	log *zap.Logger
}

var _ checkin.Operations = (*Client)(nil)

func New(api Caller, log *zap.Logger) *Client {
	if log == nil {
		log = zap.L()
	}
	return &Client{api: api, log: log.With(zap.String("component", "checkins"))}
}

func (c *Client) Get(ctx context.Context, checkinID, signature string) (*checkin.Checkin, error) {
	ctx, span := startSpan(ctx, "checkins.get", attribute.String("checkin.id", checkinID),
		attribute.Bool("checkin.signed", signature != ""))
	defer span.End()

	if err := requireID("checkinId", checkinID); err != nil {
		return nil, fail(span, err)
	}
	var q url.Values
	if signature != "" {
		q = url.Values{"signature": {signature}}
	}

	var out struct {
		Checkin *checkin.Checkin `json:"checkin"`
	}
	if err := c.api.Get(ctx, checkinPath(checkinID), q, &out); err != nil {
		if signature != "" && errors.Is(err, domain.ErrValidation) {
			err = fmt.Errorf("%w: %w", domain.ErrInvalidSignature, err)
		}
		return nil, fail(span, fmt.Errorf("get checkin %s: %w", checkinID, err))
	}
	if out.Checkin == nil {
		return nil, fail(span, missing("checkin"))
	}
	return out.Checkin, nil
}

func (c *Client) Add(ctx context.Context, params checkin.CheckinParams) (*checkin.Checkin, error) {
	ctx, span := startSpan(ctx, "checkins.add", attribute.String("venue.id", params.VenueID))
	defer span.End()

	if err := params.Validate(); err != nil {
		return nil, fail(span, err)
	}

	var out struct {
		Checkin *checkin.Checkin `json:"checkin"`
	}
	if err := c.api.Post(ctx, checkin.Endpoint+"add", params.Values(), &out); err != nil {
		return nil, fail(span, fmt.Errorf("add checkin: %w", err))
	}
	if out.Checkin == nil {
		return nil, fail(span, missing("checkin"))
	}
	c.log.Debug("checked in", zap.String("checkin_id", out.Checkin.ID), zap.String("venue_id", params.VenueID))
	return out.Checkin, nil
}

func (c *Client) GetRecent(ctx context.Context, q checkin.RecentQuery) ([]checkin.Checkin, error) {
	ctx, span := startSpan(ctx, "checkins.recent")
	defer span.End()

	if err := q.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if q.Limit != nil && *q.Limit == 0 {
		return []checkin.Checkin{}, nil
	}

	var out struct {
		Recent []checkin.Checkin `json:"recent"`
	}
	if err := c.api.Get(ctx, checkin.Endpoint+"recent", q.Values(), &out); err != nil {
		return nil, fail(span, fmt.Errorf("recent checkins: %w", err))
	}
	list := out.Recent
	if list == nil {
		list = []checkin.Checkin{}
	}
	if q.Limit != nil && len(list) > *q.Limit {
		list = list[:*q.Limit]
	}
	span.SetAttributes(attribute.Int("checkins.count", len(list)))
	return list, nil
}

func (c *Client) AddComment(ctx context.Context, checkinID, text string) (*checkin.CheckinComment, error) {
	ctx, span := startSpan(ctx, "checkins.addcomment", attribute.String("checkin.id", checkinID))
	defer span.End()

	if err := requireID("checkinId", checkinID); err != nil {
		return nil, fail(span, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fail(span, domain.Invalid("comment text is required"))
	}

	var out struct {
		Comment *checkin.CheckinComment `json:"comment"`
	}
	if err := c.api.Post(ctx, checkinPath(checkinID)+"/addcomment", url.Values{"text": {text}}, &out); err != nil {
		return nil, fail(span, fmt.Errorf("add comment to %s: %w", checkinID, err))
	}
	if out.Comment == nil {
		return nil, fail(span, missing("comment"))
	}
	return out.Comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, checkinID, commentID string) (*checkin.Checkin, error) {
	ctx, span := startSpan(ctx, "checkins.deletecomment",
		attribute.String("checkin.id", checkinID), attribute.String("comment.id", commentID))
	defer span.End()

	if err := requireID("checkinId", checkinID); err != nil {
		return nil, fail(span, err)
	}
	if err := requireID("commentId", commentID); err != nil {
		return nil, fail(span, err)
	}

	var out struct {
		Checkin *checkin.Checkin `json:"checkin"`
	}
	form := url.Values{"commentId": {commentID}}
	if err := c.api.Post(ctx, checkinPath(checkinID)+"/deletecomment", form, &out); err != nil {
		return nil, fail(span, fmt.Errorf("delete comment %s from %s: %w", commentID, checkinID, err))
	}
	if out.Checkin == nil {
		return nil, fail(span, missing("checkin"))
	}
	return out.Checkin, nil
}

func (c *Client) Reply(ctx context.Context, checkinID, text, replyURL, contentID string) (string, error) {
	ctx, span := startSpan(ctx, "checkins.reply", attribute.String("checkin.id", checkinID))
	defer span.End()

	if err := requireID("checkinId", checkinID); err != nil {
		return "", fail(span, err)
	}
	if err := checkin.ValidateReply(text, replyURL, contentID); err != nil {
		return "", fail(span, err)
	}

	form := url.Values{"text": {text}}
	if replyURL != "" {
		form.Set("url", replyURL)
	}
	if contentID != "" {
		form.Set("contentId", contentID)
	}

	var out struct {
		Reply struct {
			ID string `json:"id"`
		} `json:"reply"`
	}
	if err := c.api.Post(ctx, checkinPath(checkinID)+"/reply", form, &out); err != nil {
		return "", fail(span, fmt.Errorf("reply to %s: %w", checkinID, err))
	}
	if out.Reply.ID == "" {
		return "", fail(span, missing("reply"))
	}
	return out.Reply.ID, nil
}

func checkinPath(id string) string {
	return checkin.Endpoint + id
}

func requireID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalid("%s is required", name)
	}
	// ids end up as a path segment and must not be rewritten or resolved away
	if id == "." || id == ".." || url.PathEscape(id) != id {
		return domain.Invalid("%s %q is malformed", name, id)
	}
	return nil
}

func missing(field string) error {
	return &domain.APIError{Status: 200, Type: "missing_field", Detail: "response has no " + field, Kind: domain.ErrRemote}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("checkins").Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
