package core

import "github.com/gdamore/tcell/v2"

// Cell is one terminal cell of composed output.
type Cell struct {
	Ch    rune
	Style tcell.Style
}
