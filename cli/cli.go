package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/shpakovkv/isf-converter/ui"
)

type (
	Args struct {
		Interactive *InteractiveCmd `arg:"subcommand:interactive" help:"pick files to convert from the current directory"`

		Files         []string `arg:"-f" help:"input .isf files" placeholder:"FILE"`
		Dir           string   `arg:"-d" help:"convert every .isf file under this directory" placeholder:"DIR"`
		OutDir        string   `arg:"-o" help:"output directory (default: next to each input)" placeholder:"DIR"`
		Names         []string `arg:"-s" help:"output file names, one per -f input" placeholder:"FILE"`
		Head          bool     `arg:"--head" help:"prepend the preamble fields as # comment lines"`
		IncludeHeader bool     `arg:"--include-header" help:"same as --head"`
		Verbose       bool     `arg:"-v,--verbose" help:"report progress and a signal summary per file"`
		Jobs          int      `arg:"-j,--jobs" help:"number of files converted in parallel" default:"0"`
	}
	InteractiveCmd struct{}

	// ConvertJob is one input/output pair of a batch run.
	ConvertJob struct {
		Source string
		Dest   string
	}
)

func (Args) Description() string {
	des := strings.Join(
		[]string{
			"Converts .isf binary waveform files saved by Tektronix MDO and MSO",
			"series oscilloscopes to plain csv files.",
			"",
			"Arguments starting with @ are replaced by the contents of the named file.",
		},
		"\n",
	)
	des += "\n"
	return des
}

func Start() {
	os.Exit(Run(os.Args[1:]))
}

// Run parses the command line and executes the conversion, returning the
// process exit code. Split from Start so tests can drive it.
func Run(rawArgs []string) int {
	args := Args{}
	parser, err := arg.NewParser(arg.Config{Program: "isfconv"}, &args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	expanded, err := ExpandArgs(rawArgs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	switch err := parser.Parse(expanded); {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(os.Stdout)
		return 0
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		parser.WriteUsage(os.Stderr)
		return 2
	}

	head := args.Head || args.IncludeHeader
	if args.Interactive != nil {
		ui.Start(func(path string) error {
			job := ConvertJob{Source: path, Dest: DefaultDest(path, "")}
			return Convert(job, head, false)
		})
		return 0
	}

	jobs, err := CollectJobs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if len(jobs) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to convert: specify input files with -f or a directory with -d")
		parser.WriteUsage(os.Stderr)
		return 2
	}

	return RunBatch(jobs, head, args.Verbose, args.Jobs)
}

// ExpandArgs replaces every "@file" argument with the whitespace-separated
// tokens of the named file.
func ExpandArgs(rawArgs []string) ([]string, error) {
	expanded := make([]string, 0, len(rawArgs))
	for _, rawArg := range rawArgs {
		if !strings.HasPrefix(rawArg, "@") || len(rawArg) == 1 {
			expanded = append(expanded, rawArg)
			continue
		}
		bs, err := os.ReadFile(rawArg[1:])
		if err != nil {
			return nil, errors.Wrapf(err, `expanding argument "%s"`, rawArg)
		}
		expanded = append(expanded, strings.Fields(string(bs))...)
	}
	return expanded, nil
}

// CollectJobs turns the parsed arguments into concrete input/output pairs.
// An -s list that does not match the -f list one to one is a configuration
// error; nothing is converted in that case.
func CollectJobs(args Args) ([]ConvertJob, error) {
	if len(args.Names) > 0 && len(args.Names) != len(args.Files) {
		return nil, errors.Errorf(
			"got %d output names (-s) for %d input files (-f); the counts must be equal",
			len(args.Names), len(args.Files),
		)
	}

	jobs := lo.Map(
		args.Files,
		func(file string, i int) ConvertJob {
			if len(args.Names) > 0 {
				name := args.Names[i]
				if args.OutDir != "" && !filepath.IsAbs(name) {
					name = filepath.Join(args.OutDir, name)
				}
				return ConvertJob{Source: file, Dest: name}
			}
			return ConvertJob{Source: file, Dest: DefaultDest(file, args.OutDir)}
		},
	)

	if args.Dir != "" {
		walked, err := FindISFFiles(args.Dir)
		if err != nil {
			return nil, err
		}
		for _, file := range walked {
			jobs = append(jobs, ConvertJob{Source: file, Dest: DefaultDest(file, args.OutDir)})
		}
	}

	if args.OutDir != "" {
		if err := os.MkdirAll(args.OutDir, 0755); err != nil {
			return nil, errors.Wrap(err, "creating output directory")
		}
	}
	return jobs, nil
}

// FindISFFiles walks dir recursively and returns every *.isf path in it.
func FindISFFiles(dir string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(path), ".isf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, `scanning directory "%s"`, dir)
	}
	return files, nil
}

// DefaultDest derives the output file name from the input: same base name
// with a .csv extension, placed in outDir when given and next to the input
// otherwise.
func DefaultDest(source string, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + ".csv"
	if outDir != "" {
		return filepath.Join(outDir, base)
	}
	return filepath.Join(filepath.Dir(source), base)
}

// RunBatch converts every job, up to maxJobs files in parallel. Each job
// owns its buffer and output file, so jobs share nothing. Failures are
// reported and do not stop the rest of the batch.
func RunBatch(jobs []ConvertJob, head bool, verbose bool, maxJobs int) int {
	if maxJobs <= 0 {
		maxJobs = runtime.NumCPU()
	}

	results := make([]error, len(jobs))
	var grp errgroup.Group
	grp.SetLimit(maxJobs)
	for i, job := range jobs {
		i, job := i, job
		grp.Go(func() error {
			results[i] = Convert(job, head, verbose)
			return nil
		})
	}
	_ = grp.Wait()

	failed := 0
	lo.ForEach(
		lo.Zip2(jobs, results),
		func(tuple lo.Tuple2[ConvertJob, error], _ int) {
			if tuple.B != nil {
				failed++
				fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", tuple.A.Source, tuple.B)
			} else if verbose {
				fmt.Printf("converted %s -> %s\n", tuple.A.Source, tuple.A.Dest)
			}
		},
	)
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed\n", failed, len(jobs))
		return 1
	}
	return 0
}
