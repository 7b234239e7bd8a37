// Package fountain reads and writes rundowns as annotated Fountain-style
// screenplay text.
//
// The text form is meant for writers: it can be edited in any plain-text or
// Fountain editor and read back without losing the rundown's structure.
//
// # Format
//
// A document starts with an optional title page, then the hierarchy as
// headings. Identifiers and metadata travel in [[key:value]] annotations:
//
//	Title: Evening News [[id:p1]]
//	Description: Weeknight edition
//
//	# Main Show [[id:l1]]
//
//	## Segment A [[id:b1]]
//
//	### Headlines [[id:g1]] [[order:1]] [[color:#dc2626]]
//
//	[[beat:bt1]] [[type:news]] [[order:1]] [[duration:45]]
//	[[cue:VT 1]]
//	= Top story
//	.INT. STUDIO
//	@ANCHOR
//	Good evening.
//
//	===
//
// Heading levels map to Lane (#), Block (##) and BeatGroup (###). A beat
// starts at a [[beat:id]] marker; its title is the "=" synopsis line, ".X" is
// the scene, "@X" the character and every other line is script text. Script
// lines that would read as syntax are prefixed with "!". A "===" page break
// closes the open lane, block and group, so later headings start at the top
// level again. The exported order is: lanes, free blocks, free groups, free
// beats, each section separated by a page break.
//
// # Import
//
// Annotations are optional. Headings without an id and content outside any
// beat marker get fresh ids. Blocks with fewer than two groups and lanes with
// fewer than two blocks are dissolved on import; their children are kept.
// The imported project is then placed from scratch with
// [rundown.Engine.AutoLayout], so positions never travel through the text.
package fountain
