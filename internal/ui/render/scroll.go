package render

// ListScroll keeps the first visible row of the panel list. Scroll requests
// are held until the next draw, when the list height is known.
type ListScroll struct {
	Offset  int
	pending int
	request bool
}

// Request asks the next draw to bring index into view.
func (s *ListScroll) Request(index int) {
	s.pending = index
	s.request = true
}

// Settle applies a pending request and clamps the offset for a list of total
// rows shown in height lines.
func (s *ListScroll) Settle(height, total int) {
	if height <= 0 {
		s.Offset = 0
		return
	}
	if s.request {
		s.request = false
		switch {
		case s.pending < s.Offset:
			s.Offset = s.pending
		case s.pending >= s.Offset+height:
			s.Offset = s.pending - height + 1
		}
	}
	if maxOffset := total - height; s.Offset > maxOffset {
		s.Offset = maxOffset
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
}
