// Command multisample-convert converts sampled-instrument libraries between
// the supported container formats and SFZ.
package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aleksisuo/multisample"
	"github.com/aleksisuo/multisample/convert"
	"github.com/aleksisuo/multisample/nki"
	"github.com/aleksisuo/multisample/sfz"
	"github.com/aleksisuo/multisample/version"
	"github.com/aleksisuo/multisample/zstream"
)

var (
	flagOut      string
	flagTo       string
	flagParallel int
	flagLevel    int
	flagVerbose  bool
)

func main() {
	root := &cobra.Command{
		Use:           "multisample-convert",
		Short:         "Convert sampled-instrument libraries between formats",
		Version:       version.VersionOrHash,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [files]",
		Short: "Convert container files to the chosen destination format",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runConvert,
	}
	convertCmd.Flags().StringVarP(&flagOut, "out", "o", ".", "destination directory")
	convertCmd.Flags().StringVarP(&flagTo, "to", "t", "sfz", "destination format: sfz, kontakt1, kontakt2, monolith")
	convertCmd.Flags().IntVarP(&flagParallel, "parallel", "j", 1, "how many files to convert concurrently")
	convertCmd.Flags().IntVar(&flagLevel, "level", zstream.DefaultLevel, "metadata compression level (0-9)")

	detectCmd := &cobra.Command{
		Use:   "detect [files]",
		Short: "Print the detected container variant of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDetect,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Parse a container and dump the instrument model as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	root.AddCommand(convertCmd, detectCmd, inspectCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newNotifier() (multisample.Notifier, func(), error) {
	cfg := zap.NewDevelopmentConfig()
	if !flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return zapNotifier{logger.Sugar()}, func() { _ = logger.Sync() }, nil
}

type zapNotifier struct {
	s *zap.SugaredLogger
}

func (n zapNotifier) Info(format string, args ...interface{}) { n.s.Infof(format, args...) }
func (n zapNotifier) Warn(format string, args ...interface{}) { n.s.Warnf(format, args...) }

func destination(name string) (convert.Destination, error) {
	switch name {
	case "sfz":
		return sfz.Creator{}, nil
	case "kontakt1":
		return &nki.Creator{Variant: nki.Kontakt1, Level: flagLevel}, nil
	case "kontakt2":
		return &nki.Creator{Variant: nki.Kontakt2, Level: flagLevel}, nil
	case "monolith":
		return &nki.Creator{Variant: nki.Kontakt2Monolith, Level: flagLevel}, nil
	default:
		return nil, fmt.Errorf("unknown destination format %v", name)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	notifier, flush, err := newNotifier()
	if err != nil {
		return err
	}
	defer flush()
	dst, err := destination(flagTo)
	if err != nil {
		return err
	}
	fs := afero.NewOsFs()

	// Every conversion unit is independent, so a failed or warned file
	// never stops the rest of the batch.
	type outcome struct {
		path string
		res  *convert.Result
		err  error
	}
	jobs := flagParallel
	if jobs < 1 {
		jobs = 1
	}
	sem := make(chan struct{}, jobs)
	outcomes := make([]outcome, len(args))
	var wg sync.WaitGroup
	for i, path := range args {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			res, err := convert.File(fs, path, flagOut, dst, notifier)
			outcomes[i] = outcome{path: path, res: res, err: err}
		}(i, path)
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%v: %v\n", o.path, o.err)
			continue
		}
		fmt.Printf("%v: %v instrument(s) converted", o.path, len(o.res.Instruments))
		if len(o.res.Warnings) > 0 {
			fmt.Printf(", %v warning(s)", len(o.res.Warnings))
		}
		fmt.Println()
	}
	if failed > 0 {
		return fmt.Errorf("%v of %v file(s) failed", failed, len(args))
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		variant, err := detectFile(path)
		if err != nil {
			fmt.Printf("%v: %v\n", path, err)
			continue
		}
		fmt.Printf("%v: %v\n", path, variant)
	}
	return nil
}

func detectFile(path string) (nki.Variant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nki.VariantUnknown, err
	}
	defer f.Close()
	prefix := make([]byte, nki.SignatureLength)
	if _, err := io.ReadFull(f, prefix); err != nil {
		return nki.VariantUnknown, fmt.Errorf("file shorter than a signature")
	}
	return nki.Detect(prefix)
}

func runInspect(cmd *cobra.Command, args []string) error {
	notifier, flush, err := newNotifier()
	if err != nil {
		return err
	}
	defer flush()
	instruments, variant, err := convert.Inspect(afero.NewOsFs(), args[0], notifier)
	if err != nil {
		return err
	}
	fmt.Printf("# %v\n", variant)
	out, err := yaml.Marshal(instruments)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
