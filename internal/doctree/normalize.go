package doctree

// Normalize restores the structural invariants in place and returns the
// (possibly replaced) document:
//   - an empty document becomes one empty paragraph
//   - empty list containers are dropped
//   - adjacent lists of the same kind and alignment are merged
//   - leaf blocks found directly inside a list become list-items
//   - every leaf keeps at least one run
//   - adjacent runs with identical marks are merged
//   - empty runs are dropped when the block has other runs
func Normalize(d Document) Document {
	out := d[:0]
	for _, b := range d {
		if b == nil {
			continue
		}
		if b.Kind.IsList() {
			items := b.Items[:0]
			for _, it := range b.Items {
				if it == nil {
					continue
				}
				if it.Kind != KindListItem {
					it.WrapAsListItem()
				}
				it.Items = nil
				normalizeRuns(it)
				items = append(items, it)
			}
			b.Items = items
			b.Children = nil
			b.Level = 0
			if len(b.Items) == 0 {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Kind == b.Kind && out[n-1].Align == b.Align {
				out[n-1].Items = append(out[n-1].Items, b.Items...)
				continue
			}
			out = append(out, b)
			continue
		}
		if b.Kind == KindListItem {
			b.LiftFromList()
		}
		b.Items = nil
		normalizeRuns(b)
		out = append(out, b)
	}
	if len(out) == 0 {
		return Empty()
	}
	return out
}

func normalizeRuns(b *Block) {
	runs := make([]*Text, 0, len(b.Children))
	for _, t := range b.Children {
		if t == nil {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].Marks() == t.Marks() {
			runs[n-1].Text += t.Text
			continue
		}
		runs = append(runs, t)
	}
	if len(runs) > 1 {
		kept := runs[:0]
		for _, t := range runs {
			if t.Text != "" {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			kept = append(kept, runs[0])
		}
		runs = kept
		// Dropping empty runs can make equal neighbours adjacent.
		merged := runs[:1]
		for _, t := range runs[1:] {
			if last := merged[len(merged)-1]; last.Marks() == t.Marks() {
				last.Text += t.Text
				continue
			}
			merged = append(merged, t)
		}
		runs = merged
	}
	if len(runs) == 0 {
		runs = append(runs, &Text{})
	}
	b.Children = runs
}
