package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/August26/proxytrial/internal/model"
)

// Options selects how verdict lines are rendered.
type Options struct {
	Quiet    bool
	Verbose  bool
	Location bool
}

// FormatVerdict renders one verdict. ok is false when nothing should
// be printed for it.
//
//	quiet            <uri>                       only if something worked
//	default          <uri>: Worked               only if something worked
//	verbose          <uri>: Success | Not Worked | <k>/<n> Worked
//
// Outside quiet mode, " | country/city" is appended for working
// proxies when location output is enabled and a location is known.
func FormatVerdict(v model.Verdict, loc *model.GeoInfo, opts Options) (line string, ok bool) {
	worked := v.SuccessCount > 0
	uri := v.URI.String()

	switch {
	case opts.Quiet:
		if !worked {
			return "", false
		}
		return uri, true
	case opts.Verbose:
		switch v.Classification() {
		case model.AllSucceeded:
			line = uri + ": Success"
		case model.NeverSucceeded:
			line = uri + ": Not Worked"
		default:
			line = fmt.Sprintf("%s: %d/%d Worked", uri, v.SuccessCount, v.RepeatTotal)
		}
	default:
		if !worked {
			return "", false
		}
		line = uri + ": Worked"
	}

	if opts.Location && worked && loc != nil && !loc.Empty() {
		line += " | " + loc.String()
	}
	return line, true
}

// Printer writes unit results as they arrive. Lines of one unit are
// written together and in scheme order; Print is safe for concurrent use.
type Printer struct {
	mu   sync.Mutex
	w    io.Writer
	opts Options
}

func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts}
}

func (p *Printer) Print(r model.UnitResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, v := range r.Verdicts {
		if line, ok := FormatVerdict(v, r.Location, p.opts); ok {
			fmt.Fprintln(p.w, line)
		}
	}
}
