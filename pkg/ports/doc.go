/*
Package ports defines the driven ports (interfaces) of the Sentinel engine.

These interfaces decouple the core from external implementations, allowing sessions to be
kept in memory or in Redis and chat replies to come from an external text generator.

# Key Interfaces

  - TranscriptStore: keeps chat and terminal transcripts per session.
  - DistributedLocker: coordinates concurrent session access across replicas.
  - Generator: the optional text-generation collaborator.
*/
package ports
