package reveal

// Pager is the simpler sibling of batched reveal, used on routes with
// explicit previous/next navigation. The cursor stays in [1, TotalPages];
// out-of-range moves are refused outright rather than clamped and applied.
type Pager struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// NewPager starts at page 1. A non-positive total collapses to a single
// empty page so the cursor invariant still holds.
func NewPager(totalPages int) Pager {
	if totalPages < 1 {
		totalPages = 1
	}
	return Pager{Page: 1, TotalPages: totalPages}
}

// Next advances by exactly one page. It reports whether the move happened.
func (p *Pager) Next() bool {
	if p.Page+1 > p.TotalPages {
		return false
	}
	p.Page++
	return true
}

// Prev retreats by exactly one page. It reports whether the move happened.
func (p *Pager) Prev() bool {
	if p.Page-1 < 1 {
		return false
	}
	p.Page--
	return true
}

// PagerFor positions a pager over a revealed window: TotalPages covers the
// whole collection at the given batch size and Page is the page the window
// currently ends on. Single-move semantics still apply from there.
func PagerFor(revealed, total, batch int) Pager {
	if batch < 1 {
		batch = 1
	}
	p := NewPager((total + batch - 1) / batch)
	for p.Page*batch < revealed {
		if !p.Next() {
			break
		}
	}
	return p
}
