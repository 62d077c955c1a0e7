// Package counter tracks how many results are flagged on the active page
// and how many have been flagged over all sessions.
package counter
