package cli

import (
	"fmt"
	"strings"

	pb "github.com/dmitrijs2005/gophgate/internal/proto"
)

// FormatEvent renders a server event as one line of chat output.
func FormatEvent(e pb.Envelope) string {
	switch e.Event {
	case "clients-updated":
		names := e.Names()
		return fmt.Sprintf("* online (%d): %s", len(names), strings.Join(names, ", "))
	case "message-from-server":
		return fmt.Sprintf("%s: %s", e.Field("fullName"), e.Field("message"))
	default:
		return fmt.Sprintf("* %s", e.Event)
	}
}
