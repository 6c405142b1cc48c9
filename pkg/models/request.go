package models

// SetupRequest represents the state of a single workspace setup run
type SetupRequest struct {
	Repo                string
	Dest                string
	Python              string
	ConfigPath          string
	WorkDir             string
	Interactive         bool
	ForceInteractive    bool
	ForceNonInteractive bool
	SkipInstall         bool
	SkipLaunchers       bool
	Verbose             bool
}

// NewSetupRequest creates a request with default values
func NewSetupRequest() *SetupRequest {
	return &SetupRequest{}
}
