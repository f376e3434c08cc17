package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/statusmonitor/internal/cli/style"
	"github.com/hamed0406/statusmonitor/internal/domain"
	"github.com/hamed0406/statusmonitor/internal/query"
)

func newStatusCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "status [site]",
		Short: "Show the status of all sites, or the history of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				s, err := client().Site(cmd.Context(), args[0])
				if errors.Is(err, ErrUnknownSite) {
					return fmt.Errorf("no site named %q", args[0])
				}
				if err != nil {
					return fmt.Errorf("failed to fetch site: %w", err)
				}
				printSite(out, args[0], s)
				return nil
			}

			st, err := client().Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch status: %w", err)
			}
			printStatus(out, st)
			return nil
		},
	}
}

func printStatus(w io.Writer, st *query.StatusResponse) {
	fmt.Fprintln(w, style.Title.Render("statusmonitor"))
	if st.LastCheck == nil {
		fmt.Fprintln(w, style.DimText.Render("no check completed yet"))
	} else {
		fmt.Fprintln(w, style.DimText.Render("last check "+st.LastCheck.Local().Format(time.RFC1123)))
	}
	fmt.Fprintln(w)

	names := make([]string, 0, len(st.Sites))
	for n := range st.Sites {
		names = append(names, n)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{
		style.TableHeader.Render("SITE"),
		style.TableHeader.Render("STATUS"),
		style.TableHeader.Render("CODE"),
		style.TableHeader.Render("LATENCY"),
		style.TableHeader.Render("UPTIME"),
		style.TableHeader.Render("ERROR"),
	}, "\t"))
	for _, n := range names {
		s := st.Sites[n]
		status, code, latency := "pending", "-", "-"
		errText := ""
		if s.Current != nil {
			status = string(s.Current.Status)
			if s.Current.Code != nil {
				code = fmt.Sprintf("%d", *s.Current.Code)
			}
			if s.Current.Up() || s.Current.Code != nil {
				latency = fmt.Sprintf("%dms", s.Current.LatencyMS)
			}
			errText = s.Current.Error
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\t%s\t%s\n",
			style.StatusDot(status),
			style.Bold.Render(n),
			status,
			code,
			latency,
			style.Uptime(s.Uptime).Render(fmt.Sprintf("%d%%", s.Uptime)),
			style.DimText.Render(errText),
		)
	}
	tw.Flush()
}

func printSite(w io.Writer, name string, s *query.SiteStatus) {
	fmt.Fprintln(w, style.Title.Render(name))
	fmt.Fprintf(w, "%s  %s\n", style.DimText.Render("url"), s.URL)
	fmt.Fprintf(w, "%s  %s (%d checks)\n",
		style.DimText.Render("uptime"),
		style.Uptime(s.Uptime).Render(fmt.Sprintf("%d%%", s.Uptime)),
		len(s.History),
	)
	fmt.Fprintf(w, "%s  %s\n", style.DimText.Render("history"), timeline(s.History))
	fmt.Fprintln(w)

	// newest first
	for i := len(s.History) - 1; i >= 0 && i >= len(s.History)-10; i-- {
		r := s.History[i]
		detail := r.Error
		if detail == "" && r.Code != nil {
			detail = fmt.Sprintf("%d in %dms", *r.Code, r.LatencyMS)
		}
		ts := "-"
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.Local().Format("Jan 02 15:04:05")
		}
		fmt.Fprintf(w, "  %s %s  %s\n", style.StatusDot(string(r.Status)), style.DimText.Render(ts), detail)
	}
}

// timeline renders history oldest to newest, one dot per check.
func timeline(h []domain.ProbeResult) string {
	if len(h) == 0 {
		return style.DimText.Render("no checks yet")
	}
	var b strings.Builder
	for _, r := range h {
		b.WriteString(style.StatusDot(string(r.Status)))
	}
	return b.String()
}
