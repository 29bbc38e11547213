package model

// Category classifies what the user was doing during a slot.
type Category string

const (
	CategoryUnknown   Category = "unknown"
	CategoryCommute   Category = "commute"
	CategoryFood      Category = "food"
	CategoryFriends   Category = "friends"
	CategoryWork      Category = "work"
	CategoryLeisure   Category = "leisure"
	CategoryShopping  Category = "shopping"
	CategoryHobby     Category = "hobby"
	CategoryFamily    Category = "family"
	CategoryLifestyle Category = "lifestyle"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryUnknown,
	CategoryCommute,
	CategoryFood,
	CategoryFriends,
	CategoryWork,
	CategoryLeisure,
	CategoryShopping,
	CategoryHobby,
	CategoryFamily,
	CategoryLifestyle,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
