// Package classify maps directory entries to the file categories the
// organizer relocates (heic, mov, mp4) and owns the reserved-folder guard.
package classify
