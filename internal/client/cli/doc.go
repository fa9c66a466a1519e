// Package cli implements the memoria command line client.
//
// Commands:
//
//	memoria login            store a session token (read without echo)
//	memoria logout           forget the token and the current draft
//	memoria edit [--new|--id ID]
//	                         interactive editor for the current draft
//	memoria upload PATH...   add files to the current draft and save it
//	memoria list [--status]  list your memories
//	memoria stats            dashboard counters
//
// The editor REPL accepts:
//
//	title TEXT | desc TEXT | color #RRGGBB
//	add PATH... | music PATH | nomusic
//	rm ID | mv FROM TO | caption ID TEXT
//	show | tasks | save | publish | help | exit
package cli
