package game

import "errors"

var (
	ErrInvalidCoordinate = errors.New("coordinate out of board range")
	ErrEmptyOrigin       = errors.New("cannot move from an empty square")
	ErrIllegalMove       = errors.New("illegal move")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
)
