package picodraw

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

// IsEmpty reports whether either dimension is not positive.
func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

// Area returns Width*Height, or 0 for an empty size.
func (s Size) Area() int {
	if s.IsEmpty() {
		return 0
	}
	return s.Width * s.Height
}

// Bounds is an axis-aligned pixel rectangle. Min is inclusive, Max is
// exclusive, matching image.Rectangle conventions.
type Bounds struct {
	MinX, MinY int
	MaxX, MaxY int
}

// BoundsForSize returns the bounds covering a full target of size s.
func BoundsForSize(s Size) Bounds {
	return Bounds{MaxX: s.Width, MaxY: s.Height}
}

// IsEmpty reports whether b contains no pixels.
func (b Bounds) IsEmpty() bool { return b.MinX >= b.MaxX || b.MinY >= b.MaxY }

// Size returns the dimensions of b.
func (b Bounds) Size() Size {
	if b.IsEmpty() {
		return Size{}
	}
	return Size{Width: b.MaxX - b.MinX, Height: b.MaxY - b.MinY}
}

// Intersect returns the overlap of b and o, which may be empty.
func (b Bounds) Intersect(o Bounds) Bounds {
	r := Bounds{
		MinX: max(b.MinX, o.MinX),
		MinY: max(b.MinY, o.MinY),
		MaxX: min(b.MaxX, o.MaxX),
		MaxY: min(b.MaxY, o.MaxY),
	}
	if r.IsEmpty() {
		return Bounds{}
	}
	return r
}

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return Bounds{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// Contains reports whether the pixel (x, y) lies inside b.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.MinX && x < b.MaxX && y >= b.MinY && y < b.MaxY
}
