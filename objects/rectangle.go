// Package objects contains small value helpers: a rectangle with computed
// area and JSON conversion used to exchange selector descriptions.
package objects

// Rectangle is an axis aligned rectangle defined by its size.
type Rectangle struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRectangle returns rectangle with given dimensions.
func NewRectangle(width, height float64) Rectangle {
	return Rectangle{Width: width, Height: height}
}

// Area returns Width * Height.
func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}
