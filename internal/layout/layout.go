// Package layout packs images into justified rows and rows into blocks for
// virtualized rendering. Packing is a lazy single pass over the input: rows
// and blocks are produced on demand and the sequence is bounded by the input
// length.
package layout

import "iter"

// Row is one justified row of items sharing a common display height.
type Row[T any] struct {
	Items []T

	aspectSum float64
}

// Width returns the sum of the items' aspect ratios, the row's width in
// height units.
func (r Row[T]) Width() float64 {
	return r.aspectSum
}

// Height returns the row's height relative to the shared row width.
func (r Row[T]) Height() float64 {
	return 1 / r.aspectSum
}

// Block groups whole rows for virtualized rendering. A row is never split
// across blocks.
type Block[T any] struct {
	Rows []Row[T]
}

// Height returns the sum of the block's row heights.
func (b Block[T]) Height() float64 {
	var sum float64
	for _, row := range b.Rows {
		sum += row.Height()
	}
	return sum
}

// PackRows greedily fills rows up to targetWidth, measured in summed aspect
// ratios. The item that overflows a row starts the next one, so no item is
// ever dropped and no row is ever empty. A single item wider than
// targetWidth still gets a row of its own.
func PackRows[T any](items iter.Seq[T], aspect func(T) float64, targetWidth float64) iter.Seq[Row[T]] {
	return func(yield func(Row[T]) bool) {
		var row Row[T]
		for item := range items {
			a := aspect(item)
			if len(row.Items) > 0 && row.aspectSum+a > targetWidth {
				if !yield(row) {
					return
				}
				row = Row[T]{}
			}
			row.Items = append(row.Items, item)
			row.aspectSum += a
		}
		if len(row.Items) > 0 {
			yield(row)
		}
	}
}

// PackBlocks greedily accumulates whole rows until the summed row height
// exceeds targetHeight, then closes the block with that row included.
func PackBlocks[T any](rows iter.Seq[Row[T]], targetHeight float64) iter.Seq[Block[T]] {
	return func(yield func(Block[T]) bool) {
		var block Block[T]
		var height float64
		for row := range rows {
			block.Rows = append(block.Rows, row)
			height += row.Height()
			if height > targetHeight {
				if !yield(block) {
					return
				}
				block = Block[T]{}
				height = 0
			}
		}
		if len(block.Rows) > 0 {
			yield(block)
		}
	}
}
