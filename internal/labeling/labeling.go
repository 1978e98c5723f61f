// Package labeling serves the human labeling workflow over relation evidence.
//
// It decides which segment or document a labeler sees next, moves back and forward
// over already labeled items, builds the display context of the segment and document
// forms, and applies submitted label batches, reconciling partial saves against the
// evidence that still exists.
package labeling
