package rules

import (
	"fmt"
)

// GridState is the board for a connector game. Cells hold the marker index
// of the occupying player, or EmptyCell.
//
// Invariant: a cell, once occupied, is never cleared or reassigned.
type GridState struct {
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
	Cells [][]int `json:"cells"`
}

// EmptyCell marks an unoccupied grid cell.
const EmptyCell = -1

// View returns the board itself; a connector grid has no hidden state.
func (s *GridState) View() any {
	return s
}

// occupied counts occupied cells. Used by tests and the draw check.
func (s *GridState) occupied() int {
	n := 0
	for _, row := range s.Cells {
		for _, c := range row {
			if c != EmptyCell {
				n++
			}
		}
	}
	return n
}

// full reports whether every cell is occupied.
func (s *GridState) full() bool {
	return s.occupied() == s.Rows*s.Cols
}

type connector struct {
	rows    int
	cols    int
	run     int
	gravity bool
}

// NewConnector creates the rules for an n-in-a-row grid game. With gravity,
// moves are column drops; without, moves are free cell placements.
//
// Precondition: rows and cols are >= 1 and runLength fits the board
// (enforced by Kind.Validate).
func NewConnector(rows, cols, runLength int, gravity bool) Rules {
	return &connector{rows: rows, cols: cols, run: runLength, gravity: gravity}
}

// Initial returns an all-empty board.
func (g *connector) Initial() State {
	cells := make([][]int, g.rows)
	for r := range cells {
		cells[r] = make([]int, g.cols)
		for c := range cells[r] {
			cells[r][c] = EmptyCell
		}
	}
	return &GridState{Rows: g.rows, Cols: g.cols, Cells: cells}
}

// Validate checks mv against the board. Gravity mode requires an in-range
// column with at least one free cell; free placement requires an in-range
// empty cell.
func (g *connector) Validate(s State, mv Move, marker int) error {
	board := s.(*GridState)
	if mv.Col < 0 || mv.Col >= g.cols {
		return fmt.Errorf("column %d out of range [0, %d)", mv.Col, g.cols)
	}
	if g.gravity {
		// The top cell of the column is the last to fill.
		if board.Cells[0][mv.Col] != EmptyCell {
			return fmt.Errorf("column %d is full", mv.Col)
		}
		return nil
	}
	if mv.Row < 0 || mv.Row >= g.rows {
		return fmt.Errorf("row %d out of range [0, %d)", mv.Row, g.rows)
	}
	if board.Cells[mv.Row][mv.Col] != EmptyCell {
		return fmt.Errorf("cell (%d,%d) is occupied", mv.Row, mv.Col)
	}
	return nil
}

// Apply places marker on the board: in gravity mode at the lowest free row
// of mv.Col, otherwise at (mv.Row, mv.Col).
func (g *connector) Apply(s State, mv Move, marker int) {
	board := s.(*GridState)
	if !g.gravity {
		board.Cells[mv.Row][mv.Col] = marker
		return
	}
	for r := g.rows - 1; r >= 0; r-- {
		if board.Cells[r][mv.Col] == EmptyCell {
			board.Cells[r][mv.Col] = marker
			return
		}
	}
}

// runDirections are the four canonical directions, checked forward only
// from each cell so no run is double-counted.
var runDirections = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{-1, 1}, // diagonal up-right
}

// Terminal scans every occupied cell as a potential run origin. A run of
// runLength equal markers in any direction wins; a full board with no
// winner is a draw.
func (g *connector) Terminal(s State) (Result, bool) {
	board := s.(*GridState)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			m := board.Cells[r][c]
			if m == EmptyCell {
				continue
			}
			for _, d := range runDirections {
				if g.runFrom(board, r, c, d[0], d[1], m) {
					return Result{Outcome: OutcomeWinner, Marker: m}, true
				}
			}
		}
	}
	if board.full() {
		return Result{Outcome: OutcomeDraw, Marker: -1}, true
	}
	return Result{}, false
}

// runFrom reports whether run cells starting at (r,c) stepping by (dr,dc)
// all hold marker m.
func (g *connector) runFrom(board *GridState, r, c, dr, dc, m int) bool {
	endR := r + (g.run-1)*dr
	endC := c + (g.run-1)*dc
	if endR < 0 || endR >= g.rows || endC < 0 || endC >= g.cols {
		return false
	}
	for i := 1; i < g.run; i++ {
		if board.Cells[r+i*dr][c+i*dc] != m {
			return false
		}
	}
	return true
}
