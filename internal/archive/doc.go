// Package archive exposes zip, rar and 7z files behind one read-only
// capability: enumerate entry names and read the contents of one entry.
//
// Callers select an Adapter once by file extension (KindFromExt, For) and
// never see format-specific types. Entry names are reported with forward
// slashes exactly as stored; rejecting names that climb out of the archive
// (IsTraversal) is the caller's job.
package archive
