// Package nbest enumerates the best complete derivations of a finished search.
//
// Paths are produced lazily. Every path popped from the Contenders frontier
// spawns its deviants: copies that take a lower ranked recombination
// alternative at one node and follow the best predecessors behind it. Each
// deviant scores at most as high as its origin, so paths come out of the
// frontier in non-increasing score order.
package nbest
