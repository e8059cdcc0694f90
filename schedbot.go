// Package schedbot provides a conversational lookup service over schedule
// documents mirrored from a public file share. It walks the remote folder
// tree, mirrors new documents locally, extracts their text into an
// in-memory index on a fixed schedule, and answers group, teacher and date
// lookups through a chat dialogue.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, pdfcpu/, sqlite/).
package schedbot
