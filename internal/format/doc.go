// Package format describes the audio formats audiovert can read and write.
//
// Format is a closed enumeration. Its declaration order is significant: Set
// iterates formats in that order, which keeps target lists and the resulting
// task plan deterministic regardless of how conversion rules were ordered on
// the command line.
package format
