// Package pattern matches kubeconfig context names against glob-like patterns.
//
// The only special character is '*', which matches any run of bytes,
// including the empty one. There are no character classes and no escaping.
package pattern

// Wildcard is the single special character recognized in patterns.
const Wildcard = '*'

// Match reports whether context matches pattern in full.
//
// Matching is case-sensitive and anchored at both ends. The scan is a single
// left-to-right pass that remembers the position right after the most recent
// wildcard; on a mismatch it resumes from there with the wildcard swallowing
// one more byte of context. Worst case is O(len(context) * len(pattern)).
func Match(context, pattern string) bool {
	c, p := 0, 0
	// retryP < 0 means no wildcard has been consumed yet.
	retryC, retryP := 0, -1

	for c < len(context) {
		if p < len(pattern) {
			if pattern[p] == Wildcard {
				retryC = c + 1
				retryP = p + 1
				p++
				continue
			}
			if context[c] == pattern[p] {
				c++
				p++
				continue
			}
		}

		// End of pattern or mismatch: grow the last wildcard by one byte.
		if retryP >= 0 {
			c = retryC
			p = retryP
			retryC++
			continue
		}

		return false
	}

	// Context is exhausted; whatever is left of the pattern must be wildcards.
	for ; p < len(pattern); p++ {
		if pattern[p] != Wildcard {
			return false
		}
	}
	return true
}

// Any reports whether context matches at least one of patterns.
func Any(context string, patterns []string) bool {
	for _, p := range patterns {
		if Match(context, p) {
			return true
		}
	}
	return false
}
