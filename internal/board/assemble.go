package board

import "errors"

// Assemble groups tiles, already in reading order, into rows of WordLength.
//
// A tile count that is not a multiple of WordLength, or a row containing an
// unresolved tile, yields an *IncompleteRowError. The rows preceding the
// first failing row are still returned so a caller can keep them; nothing at
// or after the failing row is returned, since later guesses cannot be
// replayed without the earlier one.
func Assemble(tiles []Tile) ([]Row, error) {
	if len(tiles) == 0 {
		return nil, &DetectionError{Found: 0}
	}
	full := len(tiles) / WordLength
	rows := make([]Row, 0, full)

	for r := 0; r < full; r++ {
		var row Row
		var bad []*TileError
		for c := 0; c < WordLength; c++ {
			t := tiles[r*WordLength+c]
			row[c] = t
			if te := fatalTileError(t); te != nil {
				bad = append(bad, te)
			}
		}
		if len(bad) > 0 {
			return rows, &IncompleteRowError{Row: r, Tiles: bad}
		}
		rows = append(rows, row)
	}

	if rem := len(tiles) % WordLength; rem != 0 {
		return rows, &IncompleteRowError{Row: full, Count: len(tiles)}
	}
	return rows, nil
}

// fatalTileError returns the error that keeps t out of a row, or nil.
func fatalTileError(t Tile) *TileError {
	var te *TileError
	if errors.As(t.Err, &te) && te.Kind.Fatal() {
		return te
	}
	if t.Color == Unclassified || !t.Color.Valid() {
		return &TileError{Index: t.Index, Kind: KindClassificationFailed}
	}
	if t.Letter < 'A' || t.Letter > 'Z' {
		return &TileError{Index: t.Index, Kind: KindRecognitionFailed}
	}
	return nil
}
