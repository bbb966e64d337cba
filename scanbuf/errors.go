package scanbuf

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidResolution = errors.New("resolution out of range")
	ErrInvalidAngle      = errors.New("angle out of range")
	ErrInvalidCapacity   = errors.New("capacity out of range")
)

// InvalidArgumentError is returned when a constructor or query is called with
// a value outside its accepted range.
type InvalidArgumentError struct {
	Argument string
	Value    float64
}

func (this *InvalidArgumentError) Error() string {
	return this.Argument + " out of range: " + strconv.FormatFloat(this.Value, 'g', -1, 64)
}

// Is lets errors.Is match the per argument sentinels.
func (this *InvalidArgumentError) Is(target error) bool {
	switch this.Argument {
	case "resolution":
		return target == ErrInvalidResolution
	case "angle":
		return target == ErrInvalidAngle
	case "capacity":
		return target == ErrInvalidCapacity
	}
	return false
}
