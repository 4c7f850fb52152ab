package times

import (
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Naive is a timezone-less wall-clock value produced by the resolver for one
// candidate. It is paired with the author's registered zone at conversion time.
type Naive struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// Resolver turns free-text candidates into Naive values using english
// natural-language rules. Safe for concurrent use.
type Resolver struct {
	parser *when.Parser
}

func NewResolver() *Resolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Resolver{parser: w}
}

// Resolve parses each candidate independently against base and returns the
// understood ones in source order. A candidate the parser errors on or yields
// nothing for is dropped; it never suppresses candidates after it.
func (r *Resolver) Resolve(candidates []string, base time.Time) []Naive {
	var out []Naive
	for _, c := range candidates {
		res, err := r.parser.Parse(c, base)
		if err != nil || res == nil {
			continue
		}
		t := res.Time
		out = append(out, Naive{
			Year:   t.Year(),
			Month:  t.Month(),
			Day:    t.Day(),
			Hour:   t.Hour(),
			Minute: t.Minute(),
			Second: t.Second(),
		})
	}
	return out
}
