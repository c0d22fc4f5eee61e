package main

import (
	"cmp"
	"io"
	"os"
	"slices"

	"github.com/fxamacker/cbor/v2"

	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/tiles"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): replaying the
// same scenario always produces identical trace bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("docreplay: CBOR encoder initialization failed: " + err.Error())
	}
}

// traceBatch is the recorded outcome of one batch. Durations are left out
// so traces of identical runs compare equal.
type traceBatch struct {
	Name    string            `cbor:"name"`
	Rects   map[string][]rect `cbor:"rects,omitempty"`
	Events  []traceEvent      `cbor:"events,omitempty"`
	Dirty   int               `cbor:"dirty"`
	Redrawn int               `cbor:"redrawn"`
	Pending int               `cbor:"pending"`
}

type rect [4]int

type traceEvent struct {
	Kind   string `cbor:"kind"`
	Member string `cbor:"member,omitempty"`
	Target string `cbor:"target"`
}

// traceOf converts replay results into trace records. Member identifiers
// are random per run, so events carry member names and are sorted by them.
func traceOf(results []batchResult, labels map[doc.MemberID]string) []traceBatch {
	out := make([]traceBatch, 0, len(results))
	for _, br := range results {
		res := br.Result
		tb := traceBatch{
			Name:    br.Name,
			Dirty:   res.Stats.Dirty,
			Redrawn: res.Stats.Redrawn,
			Pending: res.Stats.Pending,
		}
		for _, tier := range tiles.Resolutions() {
			rs := res.Rects[tier]
			if len(rs) == 0 {
				continue
			}
			if tb.Rects == nil {
				tb.Rects = make(map[string][]rect)
			}
			for _, r := range rs {
				tb.Rects[tier.String()] = append(tb.Rects[tier.String()], rect{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y})
			}
		}
		for _, ev := range res.Events {
			te := traceEvent{Kind: ev.Kind.String(), Target: ev.Target.String()}
			if ev.Member != (doc.MemberID{}) {
				te.Member = labels[ev.Member]
			}
			tb.Events = append(tb.Events, te)
		}
		slices.SortStableFunc(tb.Events, func(a, b traceEvent) int {
			return cmp.Or(
				cmp.Compare(a.Member, b.Member),
				cmp.Compare(a.Target, b.Target),
				cmp.Compare(a.Kind, b.Kind))
		})
		out = append(out, tb)
	}
	return out
}

func writeTrace(w io.Writer, batches []traceBatch) error {
	return encMode.NewEncoder(w).Encode(batches)
}

func writeTraceFile(path string, batches []traceBatch) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeTrace(f, batches); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
