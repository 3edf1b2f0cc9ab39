// GoWipe turns a folder of numbered images into a vertical-wipe video.
//
// Usage:
//
//	gowipe [folder] [--format mp4|avi|png] [-o name] [options]
//	gowipe serve [--addr localhost:8080]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	jsoniter "github.com/json-iterator/go"
	"github.com/kataras/golog"
	"github.com/spf13/cobra"

	"github.com/xob0t/GoWipe/clients/server"
	"github.com/xob0t/GoWipe/pkg/generator"
	"github.com/xob0t/GoWipe/pkg/imageset"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type options struct {
	format  string
	output  string
	fps     int
	frames  int
	quality int
	ffmpeg  string
	verbose bool
	json    bool
	addr    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(&options{}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	def := generator.DefaultConfig()

	root := &cobra.Command{
		Use:   "gowipe [folder]",
		Short: "Render a folder of numbered images as a vertical-wipe video",
		Long: "Reads 1.png, 2.jpg, ... from folder (default: current directory), sizes a\n" +
			"canvas to their mean dimensions and writes output.mp4 next to them.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				setLogLevel("debug")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.format, "format", string(def.Format), "output format: mp4, avi or png")
	pf.StringVarP(&opts.output, "output", "o", "", "output name inside the folder (default output.<format>)")
	pf.IntVar(&opts.fps, "fps", def.FPS, "frames per second")
	pf.IntVar(&opts.frames, "frames", def.FramesPerImage, "frames per image")
	pf.IntVar(&opts.quality, "quality", def.JPEGQuality, "JPEG quality for avi (1-100)")
	pf.StringVar(&opts.ffmpeg, "ffmpeg", def.FFmpegPath, "ffmpeg binary for mp4")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging and ffmpeg output")
	root.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.RunServe(opts.addr, opts.config())
		},
	}
	serve.Flags().StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address (\":8080\" for all interfaces)")
	root.AddCommand(serve)

	return root
}

// setLogLevel applies level to the default logger and every package logger.
func setLogLevel(level string) {
	golog.SetLevel(level)
	generator.SetLogLevel(level)
	server.SetLogLevel(level)
}

func (o *options) config() generator.Config {
	cfg := generator.DefaultConfig()
	cfg.Format = generator.Format(o.format)
	cfg.OutputName = o.output
	cfg.FPS = o.fps
	cfg.FramesPerImage = o.frames
	cfg.JPEGQuality = o.quality
	cfg.FFmpegPath = o.ffmpeg
	cfg.Verbose = o.verbose
	return cfg
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	dir, err := selectFolder(args)
	if err != nil {
		return err
	}
	cfg := opts.config()
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !opts.json {
		fmt.Fprintf(out, "Generating: %s\n", cfg.OutputPath(dir))
	}
	res, err := generator.Generate(cmd.Context(), dir, cfg)
	if err != nil {
		return err
	}

	if opts.json {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	fmt.Fprintf(out, "Done: %s (%d images, %d frames, %dx%d, %.1fs)\n",
		res.Path, res.Images, res.Frames, res.Width, res.Height, res.Seconds)
	return nil
}

// selectFolder resolves the folder argument, falling back to the working
// directory.
func selectFolder(args []string) (string, error) {
	if len(args) > 0 {
		return imageset.ResolveFolder(args[0])
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return imageset.ResolveFolder(wd)
}
