package store

// Config tells the adapter where to keep its files.
type Config interface {
	BasePath() string
}

// Path is a Config for a fixed directory.
type Path string

// BasePath returns p.
func (p Path) BasePath() string {
	return string(p)
}
