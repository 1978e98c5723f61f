package labeling

import (
	"context"
	"slices"
)

// Kind is an item kind the labeler moves over: segments or documents.
type Kind struct {
	Name string
	// Route returns the labeling form path of an item.
	Route func(relationID, id int64) string
	// Find fails with a not-found error when the item does not exist.
	Find func(ctx context.Context, id int64) error
	// LabeledIDs returns the ordered ids of items with at least one labeled evidence.
	LabeledIDs func(ctx context.Context, relationID int64) ([]int64, error)
}

// Navigation outcomes.
const (
	Moved    = "moved"
	Boundary = "boundary"
	Empty    = "empty"
)

// Move is the outcome of a navigation request.
type Move struct {
	Target  int64
	URL     string
	Outcome string
	Warning string
}

// LabeledNeighbor returns the id next to current in ids, or the previous one when back.
// An empty ids yields false. A current id missing from ids yields the last id. At either
// end of ids the current id is returned.
func LabeledNeighbor(ids []int64, current int64, back bool) (int64, bool) {
	if len(ids) == 0 {
		return 0, false
	}

	idx := slices.Index(ids, current)
	if idx < 0 {
		return ids[len(ids)-1], true
	}

	if back {
		idx = max(idx-1, 0)
	} else {
		idx = min(idx+1, len(ids)-1)
	}
	return ids[idx], true
}

// Navigate resolves a back or forward move from current among the kind's labeled items.
// When no target exists, or the target is current, the move stays on current and carries
// a warning for the user.
func Navigate(ctx context.Context, kind Kind, relationID, current int64, back bool) (Move, error) {
	if err := kind.Find(ctx, current); err != nil {
		return Move{}, err
	}

	ids, err := kind.LabeledIDs(ctx, relationID)
	if err != nil {
		return Move{}, err
	}

	target, ok := LabeledNeighbor(ids, current, back)
	if !ok {
		return Move{
			Target:  current,
			URL:     kind.Route(relationID, current),
			Outcome: Empty,
			Warning: "No other " + kind.Name + " to show.",
		}, nil
	}

	move := Move{Target: target, URL: kind.Route(relationID, target), Outcome: Moved}
	if target == current {
		move.Outcome = Boundary
		direction := "next"
		if back {
			direction = "previous"
		}
		move.Warning = "No " + direction + " " + kind.Name + " to show."
	}
	return move, nil
}
