package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/template"
)

// dateLayout is the layout accepted by --at.
const dateLayout = "2006-01-02"

func newResolveCmd() *cobra.Command {
	var (
		at      string
		check   bool
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <pattern>...",
		Short: "Expand the {{date}} placeholders in patterns",
		Long: `Print each pattern with its template placeholders expanded.

Recognized variables are today, yesterday and tomorrow, and
this-/last-/next- week, month and year. A variable may carry a date format
after a colon, either moment style ({{today:YYYY-MM-DD}}) or strftime style
({{today:%Y-%m-%d}}). Range variables expand to an alternation of every day
in the range.

Examples:
  linefilter resolve 'due {{today}}'
  linefilter resolve --at 2026-03-01 '{{this-week:ddd D}}'
  linefilter resolve --check '{{last-month}}'
  linefilter resolve --explain 'due {{today:DD/MM}} or {{next-week}}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				parsed, err := time.ParseInLocation(dateLayout, at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at date %q: expected YYYY-MM-DD", at)
				}
				now = parsed
			}

			out := cmd.OutOrStdout()
			for _, pattern := range args {
				resolved, warnings := template.Resolve(pattern, now)
				for _, w := range warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: invalid format %q for {{%s}}, using %q\n", w.Format, w.Variable, w.Fallback)
				}
				if check {
					if err := filter.Validate(resolved); err != nil {
						return fmt.Errorf("%s: %w", pattern, err)
					}
				}
				fmt.Fprintln(out, resolved)
				if explain {
					writeExplanation(out, pattern)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Reference date (YYYY-MM-DD) instead of today")
	cmd.Flags().BoolVar(&check, "check", false, "Fail when an expanded pattern does not compile")
	cmd.Flags().BoolVar(&explain, "explain", false, "List the placeholders found in each pattern")
	return cmd
}

// writeExplanation lists the recognized placeholders of pattern under its
// expansion.
func writeExplanation(w io.Writer, pattern string) {
	vars := template.Parse(pattern)
	if len(vars) == 0 {
		if template.HasPlaceholders(pattern) {
			fmt.Fprintln(w, "  no known variables; placeholders are left as text")
		} else {
			fmt.Fprintln(w, "  no placeholders")
		}
		return
	}
	for _, v := range vars {
		format := v.Format
		if format == "" {
			format = template.DefaultFormat + " (default)"
		}
		fmt.Fprintf(w, "  %s  %s, format %s\n", v.Raw, v.Kind, format)
	}
}
