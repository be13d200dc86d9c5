package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NordCoder/checkins/internal/domain"
	"github.com/NordCoder/checkins/internal/domain/checkin"
)

const usage = `usage: checkins [-config file] <command> [flags] [args]

commands:
  get <checkinId> [-signature sig]
  add -venue <venueId> [-shout text] [-broadcast public,twitter] [-ll lat,lng] [-event id]
  recent [-ll lat,lng] [-after epochSeconds] [-limit n]
  comment <checkinId> <text>
  uncomment <checkinId> <commentId>
  reply <checkinId> <text> [-url url] [-content-id id]
`

var errUsage = errors.New("usage")

// run executes one command and writes its result as JSON to out.
func run(ctx context.Context, ops checkin.Operations, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	var res any
	var err error
	switch cmd {
	case "get":
		res, err = runGet(ctx, ops, rest)
	case "add":
		res, err = runAdd(ctx, ops, rest)
	case "recent":
		res, err = runRecent(ctx, ops, rest)
	case "comment":
		if len(rest) != 2 {
			return errUsage
		}
		res, err = ops.AddComment(ctx, rest[0], rest[1])
	case "uncomment":
		if len(rest) != 2 {
			return errUsage
		}
		res, err = ops.DeleteComment(ctx, rest[0], rest[1])
	case "reply":
		res, err = runReply(ctx, ops, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runGet(ctx context.Context, ops checkin.Operations, args []string) (any, error) {
	fs := newFlagSet("get")
	sig := fs.String("signature", "", "signature for third-party verification")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return nil, err
	}
	if len(pos) != 1 {
		return nil, errUsage
	}
	return ops.Get(ctx, pos[0], *sig)
}

func runAdd(ctx context.Context, ops checkin.Operations, args []string) (any, error) {
	fs := newFlagSet("add")
	var p checkin.CheckinParams
	fs.StringVar(&p.VenueID, "venue", "", "venue id")
	fs.StringVar(&p.EventID, "event", "", "event id")
	fs.StringVar(&p.Shout, "shout", "", "message")
	fs.StringVar(&p.Mentions, "mentions", "", "mentions")
	broadcast := fs.String("broadcast", "", "comma separated broadcast targets")
	ll := fs.String("ll", "", "lat,lng")
	if _, err := parseInterleaved(fs, args); err != nil {
		return nil, err
	}
	if *broadcast != "" {
		for _, b := range strings.Split(*broadcast, ",") {
			p.Broadcast = append(p.Broadcast, checkin.Broadcast(strings.TrimSpace(b)))
		}
	}
	if *ll != "" {
		lat, lng, err := parseLL(*ll)
		if err != nil {
			return nil, err
		}
		p = p.At(lat, lng)
	}
	return ops.Add(ctx, p)
}

func runRecent(ctx context.Context, ops checkin.Operations, args []string) (any, error) {
	fs := newFlagSet("recent")
	ll := fs.String("ll", "", "lat,lng")
	after := fs.Int64("after", -1, "only checkins after this epoch second")
	limit := fs.Int("limit", -1, "maximum results")
	if _, err := parseInterleaved(fs, args); err != nil {
		return nil, err
	}

	var q checkin.RecentQuery
	if *ll != "" {
		lat, lng, err := parseLL(*ll)
		if err != nil {
			return nil, err
		}
		q.Latitude, q.Longitude = &lat, &lng
	}
	if *after >= 0 {
		q.AfterTimestamp = after
	}
	if *limit >= 0 {
		q.Limit = limit
	}
	return ops.GetRecent(ctx, q)
}

func runReply(ctx context.Context, ops checkin.Operations, args []string) (any, error) {
	fs := newFlagSet("reply")
	replyURL := fs.String("url", "", "link opened in the app")
	contentID := fs.String("content-id", "", "native link identifier")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return nil, err
	}
	if len(pos) != 2 {
		return nil, errUsage
	}
	id, err := ops.Reply(ctx, pos[0], pos[1], *replyURL, *contentID)
	if err != nil {
		return nil, err
	}
	return map[string]string{"reply": id}, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseInterleaved allows flags before and after positional arguments.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func parseLL(s string) (float64, float64, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, domain.Invalid("ll must be lat,lng")
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return 0, 0, domain.Invalid("latitude: %v", err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return 0, 0, domain.Invalid("longitude: %v", err)
	}
	return la, ln, nil
}

// exitCode gives scripts a stable code per error class.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, domain.ErrAuth), errors.Is(err, domain.ErrInvalidSignature):
		return 5
	case errors.Is(err, domain.ErrValidation):
		return 3
	case errors.Is(err, domain.ErrNotFound):
		return 4
	case errors.Is(err, domain.ErrPermissionDenied):
		return 6
	case errors.Is(err, domain.ErrRateLimited):
		return 7
	default:
		return 1
	}
}
