package models

// Format is the group-stage schedule shape chosen at setup.
type Format string

const (
	FormatRoundRobin Format = "round-robin"
	FormatTwoGroups  Format = "two-groups"
)

func (f Format) IsValid() bool {
	switch f {
	case FormatRoundRobin, FormatTwoGroups:
		return true
	default:
		return false
	}
}
