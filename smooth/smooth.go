package smooth

import filter "github.com/marco-hrlic/go-belief"

// RTS is Rauch-Tung-Striebel optimal fixed-interval smoother
type RTS interface {
	// filter.Smoother is filter smoother
	filter.Smoother
}
