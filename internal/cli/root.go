package cli

import (
	"time"

	"cyoa-maker/internal/project"
	"cyoa-maker/internal/sandbox"
	"cyoa-maker/internal/service"
	sharedLogger "cyoa-maker/shared/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	dir      string
	logLevel string
	timeout  time.Duration
}

// NewRootCommand builds the cyoactl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "cyoactl",
		Short:         "Inspect, check and run CYOA story projects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", project.DefaultDir, "directory bare project names are resolved against")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", sandbox.DefaultOptions().Timeout, "wall-clock budget of one script run")

	rootCmd.AddCommand(
		newInitCmd(opts),
		newRunCmd(opts),
		newCheckCmd(opts),
		newGraphCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

// Execute runs the command line.
func Execute() error {
	return NewRootCommand().Execute()
}

// app is the editor stack a single command works with.
type app struct {
	repo    *project.FileRepository
	engine  *sandbox.Engine
	service service.EditorService
	logger  *zap.Logger
}

func (o *rootOptions) open() (*app, error) {
	logger, err := sharedLogger.NewConsole(o.logLevel)
	if err != nil {
		return nil, err
	}
	repo, err := project.NewFileRepository(o.dir, logger)
	if err != nil {
		return nil, err
	}
	sandboxOpts := sandbox.DefaultOptions()
	sandboxOpts.Timeout = o.timeout
	engine := sandbox.New(sandboxOpts, logger)
	return &app{
		repo:    repo,
		engine:  engine,
		service: service.NewEditorService(repo, engine, logger),
		logger:  logger,
	}, nil
}

func (a *app) Close() {
	a.engine.Close()
	_ = a.logger.Sync()
}
