package categorizer

import "github.com/crimson-sun/vlogscan/internal/model"

// Categorize assigns a coarse category from the populated fields.
// Priority: network (ip set), user (known user), file (path set), process.
func Categorize(ev model.Event) model.Category {
	switch {
	case ev.IP != "":
		return model.CategoryNetwork
	case ev.User != "" && ev.User != model.UnknownUser:
		return model.CategoryUser
	case ev.Path != "":
		return model.CategoryFile
	default:
		return model.CategoryProcess
	}
}

// Apply returns a copy of ev with Category set.
func Apply(ev model.Event) model.Event {
	ev.Category = Categorize(ev)
	return ev
}
