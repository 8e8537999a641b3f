package model

// Category is the coarse classification of an Event.
type Category string

const (
	CategoryNetwork Category = "network"
	CategoryUser    Category = "user"
	CategoryFile    Category = "file"
	CategoryProcess Category = "process"
)

// Categories lists every Category in priority order.
func Categories() []Category {
	return []Category{CategoryNetwork, CategoryUser, CategoryFile, CategoryProcess}
}
