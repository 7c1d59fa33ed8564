package speccheck

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// History is the narrow persistence seam a campaign reports through,
// satisfied by registry.CachingSource — kept as an interface here so
// speccheck never needs to import internal/registry.
type History interface {
	RecordCampaign(module, name string, arity int, ok bool, counterExample []any, ranAt string) error
	LastCampaignOK(module, name string, arity int) (ok bool, found bool, err error)
}

// Report renders a human-readable summary of a Result to w, using
// go-humanize for count formatting and go-isatty to decide whether to
// color the status line.
func Report(w io.Writer, module, name string, arity int, res *Result) {
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	status := "ok"
	if !res.OK {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s\n", colorize(color, res.OK, fmt.Sprintf("%s:%s/%d — %s", module, name, arity, status)))

	for i, o := range res.Outcomes {
		fmt.Fprintf(w, "  overload %d: %s, %s ran in %s\n",
			i+1,
			okLabel(o.OK),
			humanize.Comma(int64(o.Meta.Iterations))+" iterations",
			o.Meta.Elapsed.Round(time.Millisecond),
		)
		if !o.OK {
			fmt.Fprintf(w, "    counter-example: %v\n", o.Meta.CounterExample)
			fmt.Fprintf(w, "    reason: %s\n", o.Meta.FailureReason)
		}
	}
}

func okLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func colorize(enabled, ok bool, s string) string {
	if !enabled {
		return s
	}
	code := "32" // green
	if !ok {
		code = "31" // red
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// ReportString renders Report's output to a string, for callers (e.g.
// tests) that don't want to pass an io.Writer.
func ReportString(module, name string, arity int, res *Result) string {
	var b strings.Builder
	Report(&b, module, name, arity, res)
	return b.String()
}
