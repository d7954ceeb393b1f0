package config

//go:generate go tool go-enum --marshal --names

// Format of printed selectors.
// ENUM(text, json, tree)
type OutputFmt int
