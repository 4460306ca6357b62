package rrt

import "github.com/pkg/errors"

var (
	// ErrInvalidParameters is returned before any planning is attempted
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrBrokenChain means a parent reference points outside the tree.
	// Insert never produces one, so seeing it is a bug.
	ErrBrokenChain = errors.New("broken parent chain")

	// ErrUnknownNode is returned when a NodeID does not belong to the tree
	ErrUnknownNode = errors.New("unknown node")
)

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParameters, format, args...)
}
