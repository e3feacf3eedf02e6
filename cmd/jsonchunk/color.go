// SPDX-License-Identifier: MIT
package main

import (
	"github.com/fatih/color"

	"gitlab.com/fisherprime/jsonchunk/lexer"
)

var itemColors = map[lexer.ItemID]func(a ...interface{}) string{
	lexer.ItemNull:        color.New(color.FgMagenta).SprintFunc(),
	lexer.ItemTrue:        color.New(color.FgYellow).SprintFunc(),
	lexer.ItemFalse:       color.New(color.FgYellow).SprintFunc(),
	lexer.ItemNumber:      color.New(color.FgCyan).SprintFunc(),
	lexer.ItemString:      color.New(color.FgGreen).SprintFunc(),
	lexer.ItemArrayStart:  color.New(color.Bold).SprintFunc(),
	lexer.ItemArrayEnd:    color.New(color.Bold).SprintFunc(),
	lexer.ItemObjectStart: color.New(color.Bold).SprintFunc(),
	lexer.ItemObjectEnd:   color.New(color.Bold).SprintFunc(),
	lexer.ItemError:       color.New(color.FgRed, color.Bold).SprintFunc(),
	lexer.ItemEOF:         color.New(color.Faint).SprintFunc(),
}

// colorItem renders an item, colored by kind unless color.NoColor is set.
func colorItem(item lexer.Item) string {
	if sprint, ok := itemColors[item.ID]; ok {
		return sprint(item.String())
	}

	return item.String()
}
