package keyword

// EditDistance measures Levenshtein distance from one fixed source string to many
// targets, reusing its row buffers between calls. It is not safe for concurrent use.
type EditDistance struct {
	src  []rune
	prev []int
	curr []int
}

// NewEditDistance prepares a matcher for src.
func NewEditDistance(src string) *EditDistance {
	r := []rune(src)
	return &EditDistance{src: r, prev: make([]int, len(r)+1), curr: make([]int, len(r)+1)}
}

// To returns the number of single-rune insertions, deletions, or substitutions that
// turn the source into target.
func (e *EditDistance) To(target string) int {
	n := len(e.src)
	if n == 0 {
		return len([]rune(target))
	}
	for j := range e.prev {
		e.prev[j] = j
	}
	i := 0
	for _, t := range target {
		i++
		e.curr[0] = i
		for j := 1; j <= n; j++ {
			sub := e.prev[j-1]
			if e.src[j-1] != t {
				sub++
			}
			e.curr[j] = min(e.prev[j]+1, e.curr[j-1]+1, sub)
		}
		e.prev, e.curr = e.curr, e.prev
	}
	return e.prev[n]
}

// LevenshteinDistance returns the edit distance between a and b.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	return NewEditDistance(a).To(b)
}
