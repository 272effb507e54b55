// Package cli is the interactive gophgate chat client.
//
// The flow is: resume the cached session when its token is still accepted,
// otherwise prompt for missing credentials and log in (or register with -r).
// Then it opens the presence stream, then print server events while sending every
// input line as a chat message. Lines starting with "/" are commands:
//
//	/help    show available commands
//	/logout  forget the cached session and leave
//	/quit    leave the chat
//
// The loop ends on /quit, end of input, context cancellation or when the
// server closes the stream.
package cli
