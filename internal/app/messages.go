package app

// Polling tick messages. Each loop has its own message type so a slow
// response in one loop can never be confused with another loop's tick.

type feedTickMsg struct{}

type severityTickMsg struct{}

type offendersTickMsg struct{}
