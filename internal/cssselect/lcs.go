package cssselect

// LCS computes a longest common subsequence of x and y under a custom
// merge predicate rather than plain equality: merge(a, b) reports whether
// a and b should be treated as "the same" element for subsequence
// purposes, and if so returns the (possibly combined) value to carry into
// the result. This is what lets subweave's LCS step match two selector
// groups that aren't identical when one superselects the other (keeping
// the more specific one), rather than only ever matching identical
// elements.
//
// Ties in the dynamic-programming table are broken in favor of keeping
// elements from x over y (c[i][j-1] beats c[i-1][j] when equal), so the
// result is biased toward preserving x's ordering when two choices are
// equally long. subweave passes its second sequence's groups as x.
func LCS[T any](x, y []T, merge func(a, b T) (T, bool)) []T {
	n, m := len(x), len(y)
	length := make([][]int, n+1)
	merged := make([][]T, n+1)
	for i := range length {
		length[i] = make([]int, m+1)
		merged[i] = make([]T, m+1)
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if v, ok := merge(x[i-1], y[j-1]); ok {
				length[i][j] = length[i-1][j-1] + 1
				merged[i][j] = v
				continue
			}
			// Ties favor c[i][j-1] over c[i-1][j]: prefer an alignment that
			// consumes more of y first, which keeps x's own elements in their
			// original relative order in the backtrace below.
			if length[i][j-1] >= length[i-1][j] {
				length[i][j] = length[i][j-1]
			} else {
				length[i][j] = length[i-1][j]
			}
		}
	}

	var out []T
	i, j := n, m
	for i > 0 && j > 0 {
		if _, ok := merge(x[i-1], y[j-1]); ok && length[i][j] == length[i-1][j-1]+1 {
			out = append(out, merged[i][j])
			i--
			j--
			continue
		}
		if length[i][j-1] >= length[i-1][j] {
			j--
		} else {
			i--
		}
	}

	// out was built back-to-front.
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}
