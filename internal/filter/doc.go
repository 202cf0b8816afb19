// Package filter composes active patterns into one matcher and decides which
// lines of a document stay visible.
//
// Both entry points are pure functions of their inputs. Callers re-run them
// on every edit, viewport change or filter change and never patch a previous
// result.
//
// # Main Types
//
//   - [Matcher]: a single compiled alternation of all active patterns
//   - [Options]: the empty-line and propagation flags
//   - [VisibilityMap]: one hidden/shown decision per line
//
// # Composition
//
// [Compose] drops blank patterns and joins the rest as
// (?:p1)|(?:p2)|...|(?:pn), so each line costs one match call no matter how
// many filters are active. A nil Matcher means filtering is off.
//
// # Propagation
//
// A matched line is a seed. With IncludeChildItems, following lines indented
// deeper than the seed stay visible until the first line that is not. With
// IncludeHeadingChildItems, a heading seed keeps its whole section visible up
// to the next heading of the same or a shallower level. Marks from different
// seeds accumulate.
//
// # Usage
//
//	m, err := filter.Compose([]string{"^# ", "TODO"})
//	if err != nil {
//	    // composition failed; m is nil and everything stays visible
//	}
//	vis := filter.ComputeVisibility(lines, m, filter.DefaultOptions())
//	shown := filter.Apply(lines, vis)
package filter
