package preprocessor

// A hideset is the set of macro names that must not be expanded in some
// context. It is an immutable singly linked list; sets stay small because
// they only grow with macro nesting depth.
type hideset struct {
	r    *hideset
	name string
}

var emptyHS *hideset

func (hs *hideset) contains(name string) bool {
	for ; hs != emptyHS; hs = hs.r {
		if hs.name == name {
			return true
		}
	}
	return false
}

func (hs *hideset) add(name string) *hideset {
	if hs.contains(name) {
		return hs
	}
	return &hideset{r: hs, name: name}
}
