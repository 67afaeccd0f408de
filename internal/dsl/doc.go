// Package dsl implements the low-level keyframe text format.
//
// The format is line oriented:
//
//	# comment
//	duration 4.9000
//	frametime 0.033333
//
//	@0.0000
//	  hip       pos 0.0 90.0 0.0  rot 0.0 0.0 0.0
//	  lShldr     rot 0.0 0.0 -160.0
//
// Rotations are [z x y] degrees and positions are cm. Only the root bone
// carries a position. Generate turns a recorded motion into text, Parse turns
// text into keyframes, and Compile turns keyframes into a playable clip. The
// parser is lenient and skips what it does not understand. Lint reports
// what was skipped.
package dsl
