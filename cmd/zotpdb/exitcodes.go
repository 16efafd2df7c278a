package main

// Exit codes for the zotpdb CLI.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (runtime failure, write rejected)
	ExitConfigError = 2 // Configuration error (missing credentials)
	ExitNotFound    = 3 // Entry or item not found
	ExitValidation  = 4 // Invalid input (bad PDB ID, missing required field)
)
