// Package config loads runtime configuration for the gophgate chat client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-u string   base URL of the HTTP API
//	-a string   address:port of the presence gRPC endpoint
//	-e string   account email (prompted when empty)
//	-n string   full name, used with -r
//	-r          register a new account instead of logging in
//	-t int      HTTP request timeout (seconds)
//	-s string   session cache file; "" turns caching off
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "presence_addr": "127.0.0.1:50051",
//	  "email": "ann@example.com",
//	  "request_timeout": "10s",
//	  "session_file": ".gophgate-session.db"
//	}
package config
