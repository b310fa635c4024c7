// Package kinds builds event kinds. A kind packs its own 8 bit id in the low
// byte and the ids of its bases in the higher bytes, so an event family is a
// base kind and membership is a mask test:
//
//	var (
//		Telecommand = kinds.Kind(20, kinds.Event)
//		Clock       = kinds.Kind(21, kinds.Event)
//		Fire        = kinds.Kind(22, Telecommand)
//	)
//
//	kinds.IsKind(Fire, Telecommand) // true
package kinds

const (
	length   = 64
	idLength = 8
	depthMax = length / idLength
	idMask   = (1 << idLength) - 1
)

// Bases returns the base ids of t, nearest first, zero padded.
func Bases(t uint64) [depthMax]uint64 {
	var bases [depthMax]uint64
	for i := 1; i < depthMax; i++ {
		bases[i-1] = (t >> (idLength * i)) & idMask
	}
	return bases
}

// Id returns the own id of a kind.
func Id(kind uint64) uint64 {
	return kind & idMask
}

// Kind derives a kind from id and the ids of every base, deduplicated.
// Bases deeper than seven levels are dropped.
func Kind(id uint64, bases ...uint64) uint64 {
	kind := id & idMask
	seen := 0
	ids := [depthMax]uint64{}
	for _, base := range bases {
		for j := 0; j < depthMax; j++ {
			baseId := (base >> (idLength * j)) & idMask
			if baseId == 0 {
				break
			}
			if contains(ids[:seen], baseId) || seen == depthMax-1 {
				continue
			}
			ids[seen] = baseId
			seen++
			kind |= baseId << (idLength * seen)
		}
	}
	return kind
}

func contains(ids []uint64, id uint64) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IsKind reports whether kind is, or derives from, any of bases.
func IsKind(kind uint64, bases ...uint64) bool {
	for _, base := range bases {
		baseId := base & idMask
		if kind == baseId {
			return true
		}
		for i := 0; i < depthMax; i++ {
			if (kind>>(idLength*i))&idMask == baseId {
				return true
			}
		}
	}
	return false
}

// Ids up to 15 are reserved.
var (
	Null  = Kind(0)
	Event = Kind(1)
	// Signal is a payload free event, such as a clock tick.
	Signal = Kind(2, Event)
	// Command is an event requesting a mode change.
	Command = Kind(3, Event)
)
