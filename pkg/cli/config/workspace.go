package config

import "github.com/urfave/cli/v3"

// Workspace holds the working directory configuration. Source archives,
// extracted trees, build/ and install/ all live under this directory.
type Workspace struct {
	Dir string
}

// Flags returns CLI flags for workspace configuration
func (c *Workspace) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "Working directory for sources, build and install trees",
			Value:       ".",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("LLVMPACK_WORK_DIR"),
		},
	}
}
