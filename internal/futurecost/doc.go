// Package futurecost computes the admissible estimate of the best score still
// achievable for every source span.
//
// The table is built once per sentence in two passes:
//
//  1. Diagonal seeding: every span with at least one option gets the best
//     future score of the options covering exactly that span.
//  2. Interval fill: spans of increasing width take the best sum of two
//     adjacent sub-spans when it is strictly greater than their current value.
//
// Width-1 spans without an option keep -Inf. Callers must treat -Inf as
// "no admissible estimate".
package futurecost
