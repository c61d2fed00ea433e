// Package domain holds the commit-reveal protocol rules: scene definitions,
// session state, once-only commitment and reveal slots, and the resolution
// rule that picks a winner from two revealed coordinates.
package domain
