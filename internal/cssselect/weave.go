package cssselect

// weave combines a path of complex-selector bodies, one per ancestor
// level, into every complex selector that could match an element nested
// at all of those levels simultaneously. It moves through the path
// left-to-right, building every possible prefix ("befores") at once: each
// level's own trailing compound is held back from the subweave (it names a
// specific element at that exact nesting depth, not one free to be
// reordered against the accumulated prefix) and reattached verbatim after
// combining. Any combination subweave reports as a MergeFailure drops that
// prefix from the running set.
func weave(path []Seq) []Seq {
	if len(path) == 0 {
		return nil
	}

	befores := []Seq{{}}
	for _, next := range path {
		current := next.clone()
		if len(current) == 0 {
			continue
		}
		last := current[len(current)-1]
		current = current[:len(current)-1]

		var tempResult []Seq
		for _, before := range befores {
			sub, ok := subweave(before, current)
			if !ok {
				continue
			}
			for _, seqs := range sub {
				combined := make(Seq, 0, len(seqs)+1)
				combined = append(combined, seqs...)
				combined = append(combined, last)
				tempResult = append(tempResult, combined)
			}
		}
		befores = tempResult
	}
	return befores
}
