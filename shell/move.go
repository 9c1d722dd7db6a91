package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smarty/mfsync/contracts"
)

type plannedMove struct {
	source      string
	destination string
	replace     bool
}

// planMoves pairs every top-level entry of staging with its destination in
// target and refuses the whole batch when any destination conflicts.
func planMoves(staging, target string, overwrite bool) ([]plannedMove, error) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return nil, err
	}
	moves := make([]plannedMove, 0, len(entries))
	for _, entry := range entries {
		move := plannedMove{
			source:      filepath.Join(staging, entry.Name()),
			destination: filepath.Join(target, entry.Name()),
		}
		existing, err := os.Lstat(move.destination)
		if errors.Is(err, os.ErrNotExist) {
			moves = append(moves, move)
			continue
		}
		if err != nil {
			return nil, err
		}
		if entry.IsDir() && !existing.IsDir() {
			return nil, fmt.Errorf("%w: %q onto %q", contracts.ErrIsADirectoryConflict, entry.Name(), move.destination)
		}
		if !overwrite {
			return nil, fmt.Errorf("%w: %q", contracts.ErrDestinationExists, move.destination)
		}
		move.replace = true
		moves = append(moves, move)
	}
	return moves, nil
}

func applyMoves(moves []plannedMove) error {
	for _, move := range moves {
		if move.replace {
			if err := os.RemoveAll(move.destination); err != nil {
				return err
			}
		}
		if err := os.Rename(move.source, move.destination); err != nil {
			return err
		}
	}
	return nil
}
