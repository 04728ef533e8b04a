package core

// BakeStatus is the outcome of a bake attempt that did not fail
type BakeStatus int

const (
	// BakeSkipped means the assertion was not persisted or already baked; nothing was sent
	BakeSkipped BakeStatus = iota
	// BakeEmpty means the baking service answered with an empty body
	BakeEmpty
	// BakeBaked means the baking service returned the baked image
	BakeBaked
)

func (s BakeStatus) String() string {
	switch s {
	case BakeSkipped:
		return "skipped"
	case BakeEmpty:
		return "empty"
	case BakeBaked:
		return "baked"
	default:
		return "unknown"
	}
}

// BakeResult carries the image returned by the baking service
type BakeResult struct {
	Status BakeStatus
	Image  []byte
}
