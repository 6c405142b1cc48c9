package interfaces

// Prompter asks the user for decisions the setup cannot make alone
type Prompter interface {
	// AskRepoURL asks for a repository to clone when none was found
	AskRepoURL() (string, error)

	// ConfirmDownload asks before a portable runtime is fetched
	ConfirmDownload(version string) (bool, error)
}
