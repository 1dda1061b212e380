/*
Package session implements per-session transcript management.

A session owns two transcripts, one per channel (chat and terminal), stored under
"<sessionID>/<channel>" keys. The Manager serialises read-modify-write cycles per session with
local reference-counted mutexes and, across replicas, an optional distributed locker.
*/
package session
