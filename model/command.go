package model

// Command is a how-to record: what it does, where it runs, and the literal
// command line. ID is assigned by the store.
type Command struct {
	ID          int64  `json:"id" yaml:"id"`
	HowTo       string `json:"howTo" yaml:"howTo"`
	Platform    string `json:"platform" yaml:"platform"`
	CommandLine string `json:"commandLine" yaml:"commandLine"`
}

// MatchesID reports whether the command's embedded id agrees with id.
func (c Command) MatchesID(id int64) bool {
	return c.ID == id
}

// Fields returns a copy without the store-owned ID.
func (c Command) Fields() Command {
	c.ID = 0
	return c
}
