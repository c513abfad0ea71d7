package build

// State is the progress of a build. A failed build stays in the state it
// failed in.
type State int

const (
	Configured State = iota
	Staged
	Planned
	Compiling
	BindingsGenerated
	Packaged
)

var stateNames = [...]string{
	Configured:        "configured",
	Staged:            "staged",
	Planned:           "planned",
	Compiling:         "compiling",
	BindingsGenerated: "bindings generated",
	Packaged:          "packaged",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
