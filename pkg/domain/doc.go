/*
Package domain contains the core domain models of the Sentinel engine.

It defines the rule and command tables, transcripts and command results. The package is
kept pure and free of I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Rule / RuleTable: ordered keyword sets mapped to chat responses (first match wins).
  - Command / CommandTable: exact terminal tokens mapped to Reply, Clear or Echo effects.
  - Transcript / Entry: caller-owned history of a chat or terminal channel.
  - CommandResult: tells the caller to append entries or clear its history.
*/
package domain
