// Package organize implements the recursive directory walker at the heart of
// photofmt.
//
// Each directory visit is an independent state machine: reserved-name guard,
// single entry snapshot, depth-first recursion into subdirectories, classify,
// convert-and-move each target file, then a verification recount of the
// category subfolders. Per-file and per-directory failures degrade to logged
// warnings; only a missing root or a held run lock aborts a run.
//
// The walk is single threaded. A directory's own files are only touched after
// all of its subdirectories have completed, and verification runs only after
// all of the directory's own moves.
package organize
