package cart

// Selection is the subset of cart entries marked for checkout. It preserves
// selection order and upholds one invariant: no two selected entries share a
// slot. All operations are value-semantic; the receiver is never mutated and
// callers keep prior snapshots safely.
type Selection []Entry

// BuildGroups partitions entries by design in a single pass, preserving
// first-seen order of both groups and of entries within a group. Duplicate
// entry IDs are dropped deterministically, keeping the first occurrence, so
// every entry lands in exactly one group. Designs missing from metadata are
// emitted with Pending set rather than failing; grouping never waits on
// catalog resolution.
func BuildGroups(entries []Entry, metadata map[string]Metadata) []Group {
	if len(entries) == 0 {
		return nil
	}

	groups := make([]Group, 0, len(entries))
	index := make(map[string]int, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}

		i, ok := index[e.DesignID]
		if !ok {
			i = len(groups)
			index[e.DesignID] = i
			meta, resolved := metadata[e.DesignID]
			groups = append(groups, Group{
				DesignID: e.DesignID,
				Metadata: meta,
				Pending:  !resolved,
			})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// SlotTaken reports whether some selected entry occupies the given slot. It
// reads the selection directly, so the answer is always consistent with the
// current contents.
func (s Selection) SlotTaken(fingerPosition int, leftHand bool) bool {
	for _, e := range s {
		if e.FingerPosition == fingerPosition && e.LeftHand == leftHand {
			return true
		}
	}
	return false
}

// Contains reports whether the entry with the given ID is selected.
func (s Selection) Contains(id string) bool {
	for _, e := range s {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Toggle flips the selection state of an entry and returns the new selection.
// Deselecting is always permitted. Selecting is refused when a different
// entry already occupies the slot: the selection is returned unchanged, never
// an error, and the occupant is never evicted. The caller surfaces the
// refusal as an inert control, checking SlotTaken itself when it needs to
// distinguish the case.
func (s Selection) Toggle(entry Entry) Selection {
	for i, e := range s {
		if e.ID == entry.ID {
			out := make(Selection, 0, len(s)-1)
			out = append(out, s[:i]...)
			out = append(out, s[i+1:]...)
			return out
		}
	}

	if s.SlotTaken(entry.FingerPosition, entry.LeftHand) {
		return s
	}

	out := make(Selection, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, entry)
	return out
}

// IDs returns the selected entry identifiers in selection order, the opaque
// form handed to the submission flow.
func (s Selection) IDs() []string {
	if len(s) == 0 {
		return nil
	}
	ids := make([]string, len(s))
	for i, e := range s {
		ids[i] = e.ID
	}
	return ids
}

// RemoveEntry deletes an entry outright, purging it from both the entry list
// and the selection. Unknown IDs are a no-op: deletes may race a concurrent
// snapshot refresh, and removing twice is the same as removing once. Groups
// are a derived view, never a source of truth; callers re-run BuildGroups on
// the returned list.
func RemoveEntry(entries []Entry, selection Selection, id string) ([]Entry, Selection) {
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			break
		}
	}
	if !found && !selection.Contains(id) {
		return entries, selection
	}

	remaining := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			remaining = append(remaining, e)
		}
	}

	if !selection.Contains(id) {
		return remaining, selection
	}
	kept := make(Selection, 0, len(selection))
	for _, e := range selection {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return remaining, kept
}

// TotalPrice sums service prices over the given entries. Callers pass one
// canonical list: the full cart for the cart total, or the selection for the
// amount to submit.
func TotalPrice(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.ServicePrice
	}
	return total
}
