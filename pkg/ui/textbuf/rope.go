package textbuf

// Rope nodes are immutable once built. Edits split and concatenate, sharing
// untouched subtrees with the previous version.

const (
	maxLeaf  = 512
	maxDepth = 48
)

type node struct {
	left, right *node
	leaf        []rune
	length      int
	newlines    int
	depth       int
}

func (n *node) isLeaf() bool { return n.left == nil && n.right == nil }

func newLeaf(runes []rune) *node {
	if len(runes) == 0 {
		return nil
	}
	nl := 0
	for _, r := range runes {
		if r == '\n' {
			nl++
		}
	}
	return &node{leaf: runes, length: len(runes), newlines: nl}
}

func join(a, b *node) *node {
	return &node{
		left:     a,
		right:    b,
		length:   a.length + b.length,
		newlines: a.newlines + b.newlines,
		depth:    max(a.depth, b.depth) + 1,
	}
}

// build creates a balanced rope from runes.
func build(runes []rune) *node {
	if len(runes) <= maxLeaf {
		return newLeaf(runes)
	}
	mid := len(runes) / 2
	return join(build(runes[:mid:mid]), build(runes[mid:]))
}

func concat(a, b *node) *node {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}

	if b.isLeaf() && a.length+b.length <= maxLeaf && a.isLeaf() {
		return newLeaf(mergeRunes(a.leaf, b.leaf))
	}
	// Typing appends short runs; fold them into a small right-hand leaf.
	if b.isLeaf() && !a.isLeaf() && a.right.isLeaf() && a.right.length+b.length <= maxLeaf {
		return concat(a.left, newLeaf(mergeRunes(a.right.leaf, b.leaf)))
	}

	n := join(a, b)
	if n.depth > maxDepth {
		return build(n.runes())
	}
	return n
}

func mergeRunes(a, b []rune) []rune {
	out := make([]rune, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// split returns the runes before pos and from pos on.
func split(n *node, pos int) (*node, *node) {
	switch {
	case n == nil:
		return nil, nil
	case pos <= 0:
		return nil, n
	case pos >= n.length:
		return n, nil
	}

	if n.isLeaf() {
		return newLeaf(n.leaf[:pos:pos]), newLeaf(n.leaf[pos:])
	}
	switch {
	case pos < n.left.length:
		l, r := split(n.left, pos)
		return l, concat(r, n.right)
	case pos == n.left.length:
		return n.left, n.right
	default:
		l, r := split(n.right, pos-n.left.length)
		return concat(n.left, l), r
	}
}

func (n *node) runes() []rune {
	if n == nil {
		return nil
	}
	out := make([]rune, 0, n.length)
	n.each(func(chunk []rune) { out = append(out, chunk...) })
	return out
}

func (n *node) each(fn func(chunk []rune)) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		fn(n.leaf)
		return
	}
	n.left.each(fn)
	n.right.each(fn)
}

func (n *node) at(pos int) rune {
	for !n.isLeaf() {
		if pos < n.left.length {
			n = n.left
		} else {
			pos -= n.left.length
			n = n.right
		}
	}
	return n.leaf[pos]
}

// afterNewline returns the index just past the k-th newline (k >= 1).
func (n *node) afterNewline(k int) int {
	base := 0
	for !n.isLeaf() {
		if k <= n.left.newlines {
			n = n.left
		} else {
			k -= n.left.newlines
			base += n.left.length
			n = n.right
		}
	}
	for i, r := range n.leaf {
		if r == '\n' {
			k--
			if k == 0 {
				return base + i + 1
			}
		}
	}
	return base + n.length
}

// newlinesBefore counts newlines in [0, pos).
func (n *node) newlinesBefore(pos int) int {
	count := 0
	for n != nil && !n.isLeaf() {
		if pos <= n.left.length {
			n = n.left
		} else {
			count += n.left.newlines
			pos -= n.left.length
			n = n.right
		}
	}
	if n == nil {
		return count
	}
	for _, r := range n.leaf[:min(pos, len(n.leaf))] {
		if r == '\n' {
			count++
		}
	}
	return count
}
