package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gogpu/docrender"
	"github.com/gogpu/docrender/compose"
	"github.com/gogpu/docrender/doc"
	"github.com/gogpu/docrender/reconcile"
)

// replayer applies a scenario to a document and runs it through a pipeline.
type replayer struct {
	doc   *doc.Document
	pipe  *docrender.Pipeline
	names map[string]doc.MemberID

	// labels keeps the name of every member ever created, deleted or not.
	labels map[doc.MemberID]string
	log    *slog.Logger
}

// newReplayer builds the initial document of s and registers its viewports.
func newReplayer(s *Scenario, logger *slog.Logger, opts ...docrender.Option) (*replayer, error) {
	r := &replayer{
		doc:    doc.NewDocument(s.Canvas.Point()),
		names:  make(map[string]doc.MemberID),
		labels: make(map[doc.MemberID]string),
		log:    logger,
	}
	for _, m := range s.Members {
		if err := r.addMember(m); err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Name, err)
		}
	}

	r.pipe = docrender.New(r.doc, compose.NewSoftware(),
		append([]docrender.Option{docrender.WithLogger(logger)}, opts...)...)
	for _, v := range s.Viewports {
		vp, err := v.Viewport()
		if err != nil {
			r.pipe.Close()
			return nil, fmt.Errorf("viewport %q: %w", v.ID, err)
		}
		if err := r.pipe.SetViewport(reconcile.ViewportID(v.ID), vp); err != nil {
			r.pipe.Close()
			return nil, err
		}
	}
	return r, nil
}

func (r *replayer) Close() error {
	return r.pipe.Close()
}

// addMember creates a member of the initial document. The notifications it
// produces are dropped; the first batch redraws the whole canvas.
func (r *replayer) addMember(m MemberSpec) error {
	parent, err := r.parent(m.Parent)
	if err != nil {
		return err
	}
	var id doc.MemberID
	switch m.Kind {
	case "", "layer":
		id, _, err = r.doc.AddLayer(parent, m.Name)
	case "folder":
		id, _, err = r.doc.AddFolder(parent, m.Name)
	default:
		return fmt.Errorf("unknown kind %q", m.Kind)
	}
	if err != nil {
		return err
	}
	r.names[m.Name] = id
	r.labels[id] = m.Name

	if m.Opacity != nil {
		if _, err := r.doc.SetOpacity(id, *m.Opacity); err != nil {
			return err
		}
	}
	if m.Hidden {
		if _, err := r.doc.SetVisible(id, false); err != nil {
			return err
		}
	}
	if m.Blend != "" {
		mode, err := doc.ParseBlendMode(m.Blend)
		if err != nil {
			return err
		}
		if _, err := r.doc.SetBlendMode(id, mode); err != nil {
			return err
		}
	}
	if m.ClipToBelow {
		if _, err := r.doc.SetClipToBelow(id, true); err != nil {
			return err
		}
	}
	for _, f := range m.Fills {
		if _, err := r.fill(id, f.Rect, f.Color, false); err != nil {
			return err
		}
	}
	if m.Mask != nil {
		if _, err := r.doc.AttachMask(id); err != nil {
			return err
		}
		for _, f := range m.Mask.Fills {
			if _, err := r.fill(id, f.Rect, f.Color, true); err != nil {
				return err
			}
		}
		if m.Mask.Hidden {
			if _, err := r.doc.SetMaskVisible(id, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// batchResult pairs a batch with the pipeline's answer.
type batchResult struct {
	Name   string
	Result *docrender.Result
}

// run replays the initial load and every batch of s.
func (r *replayer) run(ctx context.Context, s *Scenario) ([]batchResult, error) {
	out := make([]batchResult, 0, len(s.Batches)+1)

	res, err := r.pipe.Run(ctx, docrender.Load(r.doc), docrender.RunOptions{
		RedrawPreviews:  true,
		ServiceDeferred: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	out = append(out, batchResult{Name: "load", Result: res})

	for i, b := range s.Batches {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("batch-%d", i+1)
		}
		changes := make([]doc.Change, 0, len(b.Edits))
		for j, e := range b.Edits {
			ch, err := r.apply(e)
			if err != nil {
				return out, fmt.Errorf("%s: edit %d (%s): %w", name, j+1, e.Op, err)
			}
			changes = append(changes, ch)
		}
		res, err := r.pipe.Run(ctx, changes, docrender.RunOptions{
			RedrawPreviews:  b.RedrawPreviews,
			ServiceDeferred: b.ServiceDeferred,
		})
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		r.log.Info("batch replayed",
			"batch", name,
			"edits", len(b.Edits),
			"redrawn", res.Stats.Redrawn,
			"pending", res.Stats.Pending,
			"events", len(res.Events))
		out = append(out, batchResult{Name: name, Result: res})
	}
	return out, nil
}

// apply performs one edit and returns its notification.
func (r *replayer) apply(e EditSpec) (doc.Change, error) {
	switch e.Op {
	case "add_layer", "add_folder":
		parent, err := r.parent(e.Parent)
		if err != nil {
			return nil, err
		}
		if _, dup := r.names[e.Name]; dup || e.Name == "" {
			return nil, fmt.Errorf("member name %q is empty or taken", e.Name)
		}
		add := r.doc.AddLayer
		if e.Op == "add_folder" {
			add = r.doc.AddFolder
		}
		id, ch, err := add(parent, e.Name)
		if err != nil {
			return nil, err
		}
		r.names[e.Name] = id
		r.labels[id] = e.Name
		return ch, nil
	case "resize":
		return r.doc.Resize(e.Size.Point()), nil
	}

	id, err := r.member(e.Member)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "fill":
		return r.fill(id, e.Rect, e.Color, false)
	case "fill_mask":
		return r.fill(id, e.Rect, e.Color, true)
	case "delete":
		ch, err := r.doc.Delete(id)
		if err == nil {
			delete(r.names, e.Member)
		}
		return ch, err
	case "move":
		to, err := r.parent(e.To)
		if err != nil {
			return nil, err
		}
		return r.doc.Move(id, to, e.Index)
	case "opacity":
		if e.Value == nil {
			return nil, fmt.Errorf("opacity needs a value")
		}
		return r.doc.SetOpacity(id, *e.Value)
	case "visible":
		return r.doc.SetVisible(id, on(e.On))
	case "blend":
		mode, err := doc.ParseBlendMode(e.Blend)
		if err != nil {
			return nil, err
		}
		return r.doc.SetBlendMode(id, mode)
	case "clip_to_below":
		return r.doc.SetClipToBelow(id, on(e.On))
	case "attach_mask":
		return r.doc.AttachMask(id)
	case "detach_mask":
		return r.doc.DetachMask(id)
	case "mask_visible":
		return r.doc.SetMaskVisible(id, on(e.On))
	default:
		return nil, fmt.Errorf("unknown op %q", e.Op)
	}
}

func (r *replayer) fill(id doc.MemberID, rect Rect, hex string, mask bool) (doc.Change, error) {
	c, err := parseColor(hex)
	if err != nil {
		return nil, err
	}
	if mask {
		return r.doc.FillMask(id, rect.Image(), c)
	}
	return r.doc.Fill(id, rect.Image(), c)
}

func (r *replayer) member(name string) (doc.MemberID, error) {
	id, ok := r.names[name]
	if !ok {
		return doc.MemberID{}, fmt.Errorf("unknown member %q", name)
	}
	return id, nil
}

// parent resolves a folder name; the empty name is the root.
func (r *replayer) parent(name string) (doc.MemberID, error) {
	if name == "" {
		return r.doc.Root(), nil
	}
	return r.member(name)
}

// memberNames returns the names of live members, sorted.
func (r *replayer) memberNames() []string {
	names := make([]string, 0, len(r.names))
	for n, id := range r.names {
		if _, ok := r.doc.Member(id); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// on defaults a missing flag to true.
func on(b *bool) bool {
	return b == nil || *b
}
