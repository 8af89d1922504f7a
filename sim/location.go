package sim

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

// Location is the position of a node in the world.
type Location struct {
	X, Y, Z int32
}

// NewLocation builds a Location from int coordinates.
func NewLocation(x, y, z int32) Location {
	return Location{X: x, Y: y, Z: z}
}

// String formats the location as "x,y,z".
func (l Location) String() string {
	return fmt.Sprintf("%d,%d,%d", l.X, l.Y, l.Z)
}

// Move returns the adjacent location in direction d.
func (l Location) Move(d Direction) Location {
	switch d {
	case North:
		l.Z--
	case South:
		l.Z++
	case East:
		l.X++
	case West:
		l.X--
	case Up:
		l.Y++
	case Down:
		l.Y--
	}
	return l
}

// DirectionTo returns the direction of an adjacent location, or false when
// other is not a direct neighbour.
func (l Location) DirectionTo(other Location) (Direction, bool) {
	for _, d := range Directions {
		if l.Move(d) == other {
			return d, true
		}
	}
	return 0, false
}

// hash is a 32-bit FNV-1a over the little-endian coordinates.
func (l Location) hash() uint32 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(l.X))
	binary.LittleEndian.PutUint32(buf[4:], uint32(l.Y))
	binary.LittleEndian.PutUint32(buf[8:], uint32(l.Z))
	h := fnv.New32a()
	h.Write(buf[:])
	return h.Sum32()
}

// Direction is one of the six axis-aligned neighbours of a location.
type Direction uint8

const (
	North Direction = iota
	South
	East
	West
	Up
	Down
)

// Directions lists every direction in declaration order.
var Directions = []Direction{North, South, East, West, Up, Down}

var directionNames = [...]string{"NORTH", "SOUTH", "EAST", "WEST", "UP", "DOWN"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("DIRECTION(%d)", uint8(d))
}

// IsDirection reports whether a stored field value names one of the six
// directions. The range is checked before narrowing to Direction.
func IsDirection(v int32) bool {
	return v >= 0 && int(v) < len(directionNames)
}

// ParseDirection parses a direction name, ignoring case.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("'%s' is not a direction", s)
}
