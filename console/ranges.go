package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nullreff/redpile/sim"
)

// axisRange is an inclusive range along one axis, visited every step.
type axisRange struct {
	start, end, step int32
}

// Region is a box of locations written "x,y,z" where every axis is either a
// single value "a", a range "a..b" or a stepped range "a..b%step".
type Region struct {
	axes [3]axisRange
}

var axisNames = [3]string{"x", "y", "z"}

// MaxRegionVolume caps the number of locations a single command can visit.
const MaxRegionVolume = 1 << 20

// ParseRegion parses a region.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Region{}, fmt.Errorf("'%s' is not a location", s)
	}
	var r Region
	for i, p := range parts {
		a, err := parseAxis(p)
		if err != nil {
			return Region{}, err
		}
		if a.step <= 0 {
			return Region{}, fmt.Errorf("%s_step must be greater than zero", axisNames[i])
		}
		r.axes[i] = a
	}
	if v := r.Volume(); v > MaxRegionVolume {
		return Region{}, fmt.Errorf("'%s' covers %d locations, more than %d", s, v, MaxRegionVolume)
	}
	return r, nil
}

// Volume returns the number of locations Each visits.
func (r Region) Volume() uint64 {
	v := uint64(1)
	for _, a := range r.axes {
		v *= uint64((int64(a.end)-int64(a.start))/int64(a.step) + 1)
	}
	return v
}

func parseAxis(s string) (axisRange, error) {
	bounds, stepText, stepped := strings.Cut(s, "%")
	startText, endText, ranged := strings.Cut(bounds, "..")

	start, err := parseInt(startText)
	if err != nil {
		return axisRange{}, err
	}
	end := start
	if ranged {
		if end, err = parseInt(endText); err != nil {
			return axisRange{}, err
		}
	}
	step := int32(1)
	if stepped {
		if step, err = parseInt(stepText); err != nil {
			return axisRange{}, err
		}
	}
	if start > end {
		start, end = end, start
	}
	return axisRange{start: start, end: end, step: step}, nil
}

func parseInt(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not an integer", s)
	}
	return int32(v), nil
}

// Each calls fn for every location in the region, x outermost.
func (r Region) Each(fn func(sim.Location) error) error {
	x, y, z := r.axes[0], r.axes[1], r.axes[2]
	for i := int64(x.start); i <= int64(x.end); i += int64(x.step) {
		for j := int64(y.start); j <= int64(y.end); j += int64(y.step) {
			for k := int64(z.start); k <= int64(z.end); k += int64(z.step) {
				if err := fn(sim.NewLocation(int32(i), int32(j), int32(k))); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
