package main

import (
	"github.com/handiism/bandcamp-converter/internal/config"
	"github.com/spf13/cobra"
)

// options holds the flags shared by the conversion commands.
type options struct {
	configPath string
	unpackDir  string
	noDescend  bool
	jobs       int
	playlist   bool
	verbose    bool
	dryRun     bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "bcconvert [flags] path...",
		Short: "Convert Bandcamp FLAC archives into tagged MP3s",
		Long: `Finds "Artist - Album.zip" archives under each path, expands them into
<unpack-dir>/Artist/Album and converts every FLAC file to MP3 with flac and
lame, copying its tags. Converted FLAC files are deleted; failed ones are kept.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConversion(cmd, opts, args, false)
		},
	}

	bindFlags(rootCmd, opts)

	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func bindFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (default "+config.DefaultPath()+")")
	flags.StringVar(&opts.unpackDir, "unpack-dir", "", "Directory archives are expanded into")
	flags.BoolVar(&opts.noDescend, "no-descend", false, "Only look for archives directly inside each path")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "Maximum concurrent conversions (0 = no limit)")
	flags.BoolVar(&opts.playlist, "playlist", false, "Write a playlist into each album directory")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show verbose output")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Report what would be done without writing anything")
}

func newConvertCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert [flags] dir...",
		Short: "Convert already expanded album directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConversion(cmd, opts, args, true)
		},
	}
}

// loadSettings reads the config file and applies the flags the user set.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Settings, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	} else {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("unpack-dir") {
		dir, err := config.ExpandPath(opts.unpackDir)
		if err != nil {
			return nil, err
		}
		settings.UnpackDir = dir
	}
	if flags.Changed("no-descend") {
		settings.Descend = !opts.noDescend
	}
	if flags.Changed("jobs") {
		settings.MaxConcurrentConversions = opts.jobs
	}
	if flags.Changed("playlist") {
		settings.CreatePlaylist = opts.playlist
	}
	if opts.verbose {
		settings.LogLevel = "debug"
	}
	settings.DryRun = opts.dryRun

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}
