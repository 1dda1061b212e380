/*
Package runner implements the interactive line loop for the chat and terminal channels.

It bridges a console.Console and the outside world through pluggable IOHandlers: a text
handler for humans at a terminal and a JSON-Lines handler for scripts and other programs.

# Usage

	r := runner.NewRunner(cons,
		runner.WithMode(runner.ModeTerminal),
		runner.WithSessionID("user-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
