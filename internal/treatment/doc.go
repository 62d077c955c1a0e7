// Package treatment applies the user's display mode to flagged search
// results and reverses it.
//
// Every flagged container remembers its own inline display, opacity and
// filter values the first time it is treated, so switching between hide,
// gray and keep in any order always ends in a state derived from those
// originals and never stacks changes.
package treatment
