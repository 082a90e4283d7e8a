// Package coverage tracks which source positions a hypothesis has translated.
//
// A Bitmap is an immutable value: Union never modifies the receiver and
// returns a fresh bitmap instead, so a bitmap can be shared by every
// successor of a hypothesis without copying.
package coverage
