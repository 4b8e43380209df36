// Package merge runs the harmony patcher as part of the host's merge stage.
//
// The host stages a copy of the game's main assembly into a merge directory
// (see CanMerge). Merge then copies the patcher support assemblies next to
// it, skipping anything the game already ships, and lets the patcher rewrite
// the staged copy. The game's own files are never touched.
package merge
