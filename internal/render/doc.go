// Package render runs Manim scene scripts in isolated job directories.
//
// A Manager validates a script, writes it into a fresh directory under the
// output root, runs the manim executable there under a hard timeout and
// picks the newest video it produced. Directories of successful jobs are
// tracked by the Manager until they are cleaned up, explicitly or in bulk.
// Failed and timed-out jobs leave their directory on disk, untracked.
//
// The scripts are arbitrary Python and run with the privileges of the
// hosting process. Validate is a syntactic check, not a sandbox.
package render
