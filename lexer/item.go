// SPDX-License-Identifier: MIT
package lexer

import (
	"fmt"
	"strconv"

	"gitlab.com/fisherprime/jsonchunk/internal/escape"
	"go4.org/mem"
)

type (
	// ItemID int holding an identifier for the Item tokens
	ItemID int

	// Item type holding the kind & decoded value of a lexed token.
	//
	// Val is nil for ItemNull, ItemError & ItemEOF; a bool for ItemTrue & ItemFalse; a float64
	// for ItemNumber; a string for ItemString & the bracket rune for the structural items.
	Item struct {
		Err error
		Val interface{} // The value of this Item
		ID  ItemID      // The type of this Item
	}
)

// iota is used to define an incrementing number sequence for const
// declarations
const (
	_               = iota // Consume 0 to start actual numbering at 1.
	ItemNull               // `null`.
	ItemTrue               // `true`.
	ItemFalse              // `false`.
	ItemNumber             // JSON number, decoded to float64.
	ItemString             // JSON string, escapes resolved.
	ItemArrayStart         // '['.
	ItemArrayEnd           // ']'.
	ItemObjectStart        // '{'.
	ItemObjectEnd          // '}'.
	ItemError              // Notify occurrence of an `error`.
	ItemEOF                // End of the input.
)

var itemNames = [...]string{
	ItemNull:        "Null",
	ItemTrue:        "True",
	ItemFalse:       "False",
	ItemNumber:      "Number",
	ItemString:      "String",
	ItemArrayStart:  "ArrayStart",
	ItemArrayEnd:    "ArrayEnd",
	ItemObjectStart: "ObjectStart",
	ItemObjectEnd:   "ObjectEnd",
	ItemError:       "Error",
	ItemEOF:         "EOF",
}

func (id ItemID) String() string {
	if id < ItemNull || int(id) >= len(itemNames) {
		return "ItemID(" + strconv.Itoa(int(id)) + ")"
	}

	return itemNames[id]
}

// IsPrimitive reports whether the ItemID carries a complete scalar value.
func (id ItemID) IsPrimitive() bool { return id >= ItemNull && id <= ItemString }

// IsEnd reports whether the ItemID closes a collection.
func (id ItemID) IsEnd() bool { return id == ItemArrayEnd || id == ItemObjectEnd }

// String renders the Item as `Kind` or `Kind(value)`.
func (i Item) String() string {
	switch i.ID {
	case ItemNumber:
		f, _ := i.Val.(float64)
		return fmt.Sprintf("%s(%s)", i.ID, strconv.FormatFloat(f, 'g', -1, 64))
	case ItemString:
		s, _ := i.Val.(string)
		return fmt.Sprintf("%s(\"%s\")", i.ID, escape.Quote(mem.S(s)))
	case ItemError:
		return fmt.Sprintf("%s(%v)", i.ID, i.Err)
	default:
		return i.ID.String()
	}
}
