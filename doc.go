/*
Package sentinel is a scripted conversational persona: a keyword-to-response chat engine and
a toy command interpreter that make a portfolio page feel like a hacker terminal.

Both cores are pure. The chat engine maps free text to a canned reply by case-insensitive
substring matching over an ordered rule table (first match wins, a fallback otherwise). The
interpreter maps one line of terminal input to lines to append, or to a clear request. History
is owned by the caller; package session and package console keep it per session.

Optionally, chat questions can be answered by an external text generator (see
pkg/adapters/openai). Generator calls are bounded by a timeout and never surface errors:
a fixed unavailable message is shown instead.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/sentinel"
	)

	func main() {
		eng, err := sentinel.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		fmt.Println(eng.Ask(ctx, "what skills does waseeq have?").Text)

		res := eng.Exec(ctx, "status", nil)
		for _, line := range res.Texts() {
			fmt.Println(line)
		}
	}
*/
package sentinel
