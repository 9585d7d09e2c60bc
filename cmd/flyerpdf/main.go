// Command flyerpdf builds property flyers from the command line.
//
//	flyerpdf [-config flyerpdf.yaml] [-v] <command> [flags] <args>
//
// Commands:
//
//	generate [-o path|-] [-dir dir] property.json   write the paginated PDF
//	classify property.json                          show which sections are left out
//	inspect flyer.pdf                               list pages, links and metadata
//	html [-o path] property.json                    fetch the browser flyer from the content service
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/lvillar/flyerpdf"
	"github.com/lvillar/flyerpdf/classify"
	"github.com/lvillar/flyerpdf/config"
	"github.com/lvillar/flyerpdf/flyer"
	"github.com/lvillar/flyerpdf/inspect"
	"github.com/lvillar/flyerpdf/pdfdoc"
	"github.com/lvillar/flyerpdf/property"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Config file path")
	verbose := flag.Bool("v", false, "Verbose (development) logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flyerpdf: %v\n", err)
		os.Exit(1)
	}
	log, err := cfg.Logger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flyerpdf: logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, log: log, stdout: os.Stdout}
	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "generate":
		err = a.generate(ctx, args)
	case "classify":
		err = a.classify(args)
	case "inspect":
		err = a.inspect(args)
	case "html":
		err = a.html(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "flyerpdf: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		var ge *flyerpdf.GenerateError
		if errors.As(err, &ge) {
			log.Error("generation failed", zap.String("op", ge.Op), zap.String("detail", ge.Detail()))
		}
		fmt.Fprintf(os.Stderr, "flyerpdf: %v\n", err)
		stop()
		log.Sync()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: flyerpdf [-config path] [-v] generate|classify|inspect|html [flags] <file>\n")
	flag.PrintDefaults()
}

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	stdout io.Writer
}

// oneArg parses fs and returns its single positional argument.
func oneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one %s", fs.Name(), what)
	}
	return fs.Arg(0), nil
}

func (a *app) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	out := fs.String("o", "", "Output file, or - for stdout (default: <dir>/<address slug>.pdf)")
	dir := fs.String("dir", ".", "Output directory when -o is not set")
	path, err := oneArg(fs, args, "property file")
	if err != nil {
		return err
	}
	if *out == "-" && isTerminal(a.stdout) {
		return errors.New("generate: refusing to write a PDF to a terminal")
	}

	p, err := property.Load(path)
	if err != nil {
		return err
	}
	opts, err := a.cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts, flyerpdf.WithLogger(a.log))
	if slug := p.Slug(); slug != "" && a.cfg.Output.FileName == flyerpdf.DefaultFileName {
		opts = append(opts, flyerpdf.WithFileName(slug))
	}
	g, err := flyerpdf.New(opts...)
	if err != nil {
		return err
	}
	res, err := g.GenerateProperty(ctx, p)
	if err != nil {
		return err
	}

	switch *out {
	case "-":
		_, err = res.WriteTo(a.stdout)
		return err
	case "":
		*out = filepath.Join(*dir, res.FileName)
	}
	if err := pdfdoc.WriteFile(*out, res.PDF); err != nil {
		a.log.Error("saving flyer failed", zap.String("path", *out), zap.Error(err))
		return errors.New(flyerpdf.UserMessage)
	}
	fmt.Fprintf(os.Stderr, "%s: %d pages, %d of %d sections, %d links\n",
		*out, len(res.Snapshot.Pages), res.Placed(), len(res.Sections), res.Snapshot.LinkCount())
	return nil
}

func (a *app) classify(args []string) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	path, err := oneArg(fs, args, "property file")
	if err != nil {
		return err
	}
	p, err := property.Load(path)
	if err != nil {
		return err
	}
	sections, err := flyer.Build(p)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tSTATUS\tREASON")
	for _, s := range sections {
		v := classify.Section(s, p)
		status := "placed"
		if v.Empty {
			status = "skipped"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Key.Title(), status, v.Reason)
	}
	return tw.Flush()
}

func (a *app) inspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	path, err := oneArg(fs, args, "PDF file")
	if err != nil {
		return err
	}
	doc, err := inspect.Open(path)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	fmt.Fprintf(a.stdout, "PDF %s, %d pages, %d images, %d links\n", doc.Version, len(doc.Pages), doc.Images, doc.LinkCount())
	for k, v := range doc.Info {
		fmt.Fprintf(a.stdout, "  %s: %s\n", k, v)
	}
	for _, pg := range doc.Pages {
		fmt.Fprintf(a.stdout, "page %d (%gx%g)\n", pg.Number, pg.Width, pg.Height)
		for _, l := range pg.Links {
			fmt.Fprintf(a.stdout, "  %s at %.1f,%.1f %.1fx%.1f\n", l.URI, l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H)
		}
	}
	return nil
}

func (a *app) html(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	out := fs.String("o", "", "Output file (default: stdout)")
	path, err := oneArg(fs, args, "property file")
	if err != nil {
		return err
	}
	wc := a.cfg.WebhookClient(a.log)
	if wc == nil {
		return errors.New("html: webhook.url is not configured")
	}
	p, err := property.Load(path)
	if err != nil {
		return err
	}
	doc, err := wc.Render(ctx, p)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = a.stdout.Write(doc.HTML)
		return err
	}
	return pdfdoc.WriteFile(*out, doc.HTML)
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
