package config

import "github.com/urfave/cli/v3"

// GitHub holds the credentials for the release host. The user name doubles
// as the owner of the target repository.
type GitHub struct {
	User  string
	Token string
}

// Flags returns CLI flags for GitHub credentials. Both are required;
// resolution falls back to the environment and fails at parse time when
// neither source provides a value.
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gh-user",
			Usage:       "GitHub user name",
			Required:    true,
			Destination: &c.User,
			Sources:     cli.EnvVars("GITHUB_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "gh-token",
			Usage:       "GitHub API token",
			Required:    true,
			Destination: &c.Token,
			Sources:     cli.EnvVars("GITHUB_TOKEN"),
		},
	}
}
