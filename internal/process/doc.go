// Package process runs two external programs as a pipeline, the first
// stage's stdout feeding the second stage's stdin, and reports both exit
// codes with the last one authoritative.
package process
