// Command admin is a terminal dashboard for the complaint service.
//
//	admin [-url URL] [-secret S] stats
//	admin [-url URL] [-secret S] list [-status S] [-state S] [-limit N] [-all]
//	admin [-url URL] [-secret S] set-status ID STATUS
//	admin [-url URL] [-secret S] history ID
//	admin [-url URL] check [-ref ID] [-email E] [-mobile M]
//	admin hash-secret SECRET
//
// The secret defaults to $ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mantavyam/jacob-web/pkg/api"
	pkgauth "github.com/mantavyam/jacob-web/pkg/auth"
	"github.com/mantavyam/jacob-web/pkg/client"
)

const summaryRunes = 100

var ist = time.FixedZone("IST", 5*60*60+30*60)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "admin:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	baseURL := fs.String("url", envOr("API_URL", "http://localhost:3000"), "server base URL")
	secret := fs.String("secret", os.Getenv("ADMIN_PASSWORD"), "admin secret")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*baseURL)
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "hash-secret":
		return hashSecret(rest, out)
	case "check":
		return check(ctx, c, rest, out)
	}

	session := client.NewAdminSession(c)
	if err := session.Login(ctx, *secret); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("admin secret rejected")
		}
		return err
	}

	switch cmd {
	case "stats":
		return printStats(out, session.Stats())
	case "list":
		return list(ctx, session, rest, out)
	case "set-status":
		return setStatus(ctx, session, rest, out)
	case "history":
		return history(ctx, session, rest, out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func list(ctx context.Context, s *client.AdminSession, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	status := fs.String("status", "", "only this status")
	state := fs.String("state", "", "only this state")
	limit := fs.Int("limit", client.DefaultPageSize, "page size (1-100)")
	all := fs.Bool("all", false, "keep loading until every match is shown")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := s.ApplyFilters(ctx, client.Filter{Status: *status, State: *state, PageSize: *limit}); err != nil {
		return err
	}
	for *all && s.HasMore() {
		if err := s.LoadMore(ctx); err != nil {
			return err
		}
	}

	if err := printComplaints(out, s.Complaints()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\nShowing %d of %d complaints\n", len(s.Complaints()), s.Total())
	return err
}

func setStatus(ctx context.Context, s *client.AdminSession, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("usage: set-status ID STATUS")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := s.UpdateStatus(ctx, id, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Complaint #%d is now %s\n\n", id, args[1])
	return printStats(out, s.Stats())
}

func history(ctx context.Context, s *client.AdminSession, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: history ID")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	changes, err := s.History(ctx, id)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		_, err := fmt.Fprintf(out, "Complaint #%d has no status changes\n", id)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANGED\tFROM\tTO\tBY")
	for _, c := range changes {
		by := "-"
		if c.ChangedByIP != nil {
			by = *c.ChangedByIP
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", formatTime(c.ChangedAt), c.OldStatus, c.NewStatus, by)
	}
	return tw.Flush()
}

func check(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	ref := fs.Int64("ref", 0, "reference id")
	email := fs.String("email", "", "email used on the form")
	mobile := fs.String("mobile", "", "mobile number used on the form")
	if err := fs.Parse(args); err != nil {
		return err
	}

	results, err := c.CheckStatus(ctx, client.StatusQuery{RefID: *ref, Email: *email, Mobile: *mobile})
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			_, err := fmt.Fprintln(out, "No complaints found")
			return err
		}
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBMITTED\tSTATE\tSTATUS\tSUMMARY")
	for _, r := range results {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\n", r.ID, formatTime(r.SubmissionDate), r.State, r.Status, oneLine(r.Summary))
	}
	return tw.Flush()
}

func hashSecret(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: hash-secret SECRET")
	}
	if err := pkgauth.ValidateSecret(args[0]); err != nil {
		return err
	}
	hash, err := pkgauth.HashSecret(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "ADMIN_PASSWORD_HASH=%s\n", hash)
	return err
}

func printStats(out io.Writer, s *api.Stats) error {
	if s == nil {
		return errors.New("no statistics loaded")
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%d\n", s.Total)
	fmt.Fprintf(tw, "Pending\t%d\n", s.Pending)
	fmt.Fprintf(tw, "In Progress\t%d\n", s.InProgress)
	fmt.Fprintf(tw, "Resolved\t%d\n", s.Resolved)
	fmt.Fprintf(tw, "Closed\t%d\n", s.Closed)
	fmt.Fprintf(tw, "Last 24h\t%d\n", s.Recent24h)
	if len(s.ByState) > 0 {
		fmt.Fprintln(tw, "\nSTATE\tCOUNT")
		for _, sc := range s.ByState {
			fmt.Fprintf(tw, "%s\t%d\n", sc.State, sc.Count)
		}
	}
	return tw.Flush()
}

func printComplaints(out io.Writer, complaints []api.Complaint) error {
	if len(complaints) == 0 {
		_, err := fmt.Fprintln(out, "No complaints found")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBMITTED\tNAME\tCONTACT\tSTATE\tDISTRICT\tSTATUS\tCOMPLAINT")
	for _, c := range complaints {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s / %s\t%s\t%s\t%s\t%s\n",
			c.ID, formatTime(c.SubmissionDate), c.Username, c.Email, c.Mobile,
			c.State, c.District, c.Status, summarize(c.Complaint))
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	return t.In(ist).Format("02 Jan 2006, 03:04 PM")
}

func summarize(text string) string {
	text = oneLine(text)
	r := []rune(text)
	if len(r) <= summaryRunes {
		return text
	}
	return string(r[:summaryRunes]) + "..."
}

// oneLine keeps multi-line complaint text from breaking the table.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid complaint id %q", raw)
	}
	return id, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
