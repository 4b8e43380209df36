// Package assembly computes which of the patcher's bundled assemblies must
// be copied next to a game's runtime assemblies and copies them with
// all-or-nothing semantics.
//
// The game always wins: an assembly the game ships itself, or one already
// present at the destination, is never copied. System assemblies are left
// to the game except for the serialization assembly the patcher needs.
package assembly
