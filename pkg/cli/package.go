package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/llvmpack/pkg/cli/config"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
	"github.com/m-mizutani/llvmpack/pkg/infra/archive"
	"github.com/m-mizutani/llvmpack/pkg/infra/cmake"
	"github.com/m-mizutani/llvmpack/pkg/infra/download"
	githubinfra "github.com/m-mizutani/llvmpack/pkg/infra/github"
	"github.com/m-mizutani/llvmpack/pkg/infra/toolchain"
	"github.com/m-mizutani/llvmpack/pkg/usecase"
)

func cmdPackage() *cli.Command {
	var (
		githubCfg        config.GitHub
		workspaceCfg     config.Workspace
		configPath       string
		releaseCandidate int
	)

	flags := append(githubCfg.Flags(), workspaceCfg.Flags()...)
	flags = append(flags,
		&cli.IntFlag{
			Name:        "release-candidate",
			Usage:       "LLVM release candidate number",
			Destination: &releaseCandidate,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to optional TOML config file",
			Destination: &configPath,
			Sources:     cli.EnvVars("LLVMPACK_CONFIG"),
		},
	)

	return &cli.Command{
		Name:      "package",
		Aliases:   []string{"p"},
		Usage:     "Fetch, build, bundle and publish one LLVM release",
		ArgsUsage: "<version>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			version := c.Args().First()
			if version == "" {
				return goerr.New("version argument is required")
			}

			fileCfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}

			spec := model.ReleaseSpec{
				Version:          version,
				ReleaseCandidate: releaseCandidate,
			}
			workspace := model.NewWorkspace(workspaceCfg.Dir)
			retryOpts := fileCfg.RetryOptions()

			releaseClient, err := githubinfra.NewClient(
				githubCfg.User, githubCfg.Token,
				githubCfg.User, fileCfg.GitHub.Repo,
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create release client")
			}

			archiver := archive.New()
			pipeline := usecase.NewPipeline(
				workspace,
				usecase.NewSourceFetcher(download.New(nil), archiver, fileCfg.Mirror, retryOpts...),
				usecase.NewBuilder(cmake.New()),
				toolchain.New(),
				usecase.NewBundler(archiver),
				usecase.NewPublisher(releaseClient, retryOpts...),
			)

			if err := pipeline.Run(ctx, spec); err != nil {
				return err
			}

			color.New(color.FgGreen).Printf("Published %s\n", spec.EffectiveVersion())
			return nil
		},
	}
}
