// Command overlayctl edits overlays on a running overlay API from the shell.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"streamoverlay/internal/domain"
	"streamoverlay/internal/infra"
	"streamoverlay/internal/overlayclient"
)

const usage = `usage: overlayctl [-api URL] [-timeout 10s] [-v] <command> [flags]

commands:
  list                          list overlays, newest first
  get     -id ID                print one overlay as JSON
  create  -type T -name N -content C [field flags]
  edit    -id ID [field flags]
  move    -id ID -x X -y Y      persist a new position
  toggle  -id ID                show or hide an overlay
  delete  -id ID [-yes]         delete after confirmation
  health                        check the API
  stream  [URL]                 validate an RTSP URL or list sample streams

field flags: -name -type -content -x -y -width -height
             -color -font-size -font-family -bg -opacity
`

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "overlayctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	global := flag.NewFlagSet("overlayctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	apiURL := global.String("api", envOr("OVERLAY_API_URL", overlayclient.DefaultBaseURL), "overlay API base URL")
	timeout := global.Duration("timeout", envSeconds("OVERLAY_API_TIMEOUT_SECONDS", overlayclient.DefaultTimeout), "request deadline")
	verbose := global.Bool("v", false, "log requests to stderr")
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stdout, usage)
		return err
	}
	if global.NArg() == 0 {
		fmt.Fprint(stdout, usage)
		return flag.ErrHelp
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := infra.NewLogger("cli", "overlayctl").Level(level)

	client := overlayclient.NewClient(overlayclient.Options{BaseURL: *apiURL, Timeout: *timeout, Logger: logger})
	cmd := &command{
		client:  client,
		manager: overlayclient.NewManager(client, logger),
		stdin:   bufio.NewReader(stdin),
		stdout:  stdout,
	}

	name, rest := global.Arg(0), global.Args()[1:]
	switch name {
	case "list":
		return cmd.list(ctx)
	case "get":
		return cmd.get(ctx, rest)
	case "create":
		return cmd.create(ctx, rest)
	case "edit":
		return cmd.edit(ctx, rest)
	case "move":
		return cmd.move(ctx, rest)
	case "toggle":
		return cmd.toggle(ctx, rest)
	case "delete":
		return cmd.delete(ctx, rest)
	case "health":
		return cmd.health(ctx)
	case "stream":
		return cmd.stream(rest)
	}
	fmt.Fprint(stdout, usage)
	return fmt.Errorf("unknown command %q", name)
}

type command struct {
	client  *overlayclient.Client
	manager *overlayclient.Manager
	stdin   *bufio.Reader
	stdout  io.Writer
}

var typeTitle = cases.Title(language.English)

func (c *command) list(ctx context.Context) error {
	if err := c.manager.Load(ctx); err != nil {
		return err
	}
	overlays := c.manager.Overlays()
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tVISIBLE\tPOSITION\tSIZE")
	for _, o := range overlays {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%g,%g\t%gx%g\n",
			o.ID, typeTitle.String(string(o.Type)), o.Name, o.IsVisible,
			o.Position.X, o.Position.Y, o.Size.Width, o.Size.Height)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%d overlay(s)\n", len(overlays))
	return nil
}

func (c *command) get(ctx context.Context, args []string) error {
	fs, id := idFlagSet("get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("get: -id is required")
	}
	o, err := c.client.Get(ctx, *id)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, string(out))
	return nil
}

func (c *command) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fields := fieldFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c.manager.StartCreate(domain.OverlayType(fields.values["type"]))
	if err := fields.apply(fs, c.manager); err != nil {
		return err
	}
	o, err := c.manager.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "created %s overlay %s (%s)\n", typeTitle.String(string(o.Type)), o.ID, o.Name)
	return nil
}

func (c *command) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("id", "", "overlay id")
	fields := fieldFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("edit: -id is required")
	}

	if err := c.manager.Load(ctx); err != nil {
		return err
	}
	if err := c.manager.StartEdit(*id); err != nil {
		return fmt.Errorf("edit %s: %w", *id, err)
	}
	if err := fields.apply(fs, c.manager); err != nil {
		return err
	}
	o, err := c.manager.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "updated overlay %s (%s)\n", o.ID, o.Name)
	return nil
}

func (c *command) move(ctx context.Context, args []string) error {
	fs, id := idFlagSet("move")
	x := fs.Float64("x", 0, "x position")
	y := fs.Float64("y", 0, "y position")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("move: -id is required")
	}
	if err := c.manager.Load(ctx); err != nil {
		return err
	}
	if err := c.manager.DragEnd(ctx, *id, domain.Position{X: *x, Y: *y}); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "moved overlay %s to %g,%g\n", *id, *x, *y)
	return nil
}

func (c *command) toggle(ctx context.Context, args []string) error {
	fs, id := idFlagSet("toggle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("toggle: -id is required")
	}
	if err := c.manager.Load(ctx); err != nil {
		return err
	}
	if err := c.manager.ToggleVisibility(ctx, *id); err != nil {
		return err
	}
	state := "hidden"
	for _, o := range c.manager.Overlays() {
		if o.ID == *id && o.IsVisible {
			state = "shown"
		}
	}
	fmt.Fprintf(c.stdout, "overlay %s %s\n", *id, state)
	return nil
}

func (c *command) delete(ctx context.Context, args []string) error {
	fs, id := idFlagSet("delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("delete: -id is required")
	}
	if err := c.manager.Load(ctx); err != nil {
		return err
	}

	err := c.manager.Delete(ctx, *id, func(o domain.Overlay) bool {
		if *yes {
			return true
		}
		label := o.ID
		if o.Name != "" {
			label = fmt.Sprintf("%q (%s)", o.Name, o.ID)
		}
		fmt.Fprintf(c.stdout, "Are you sure you want to delete overlay %s? [y/N] ", label)
		answer, _ := c.stdin.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})
	if errors.Is(err, overlayclient.ErrDeleteNotConfirmed) {
		fmt.Fprintln(c.stdout, "cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "deleted overlay %s\n", *id)
	return nil
}

func (c *command) health(ctx context.Context) error {
	msg, err := c.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, msg)
	return nil
}

func (c *command) stream(args []string) error {
	if len(args) == 0 {
		for _, s := range overlayclient.SampleStreams {
			fmt.Fprintf(c.stdout, "%s\n  %s\n", s.Name, s.URL)
		}
		return nil
	}
	u, err := overlayclient.ValidateStreamURL(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, u)
	return nil
}

func idFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs, fs.String("id", "", "overlay id")
}

// formFlags maps command-line flags onto form field paths.
type formFlags struct {
	values map[string]string
	paths  map[string]string
}

func fieldFlags(fs *flag.FlagSet) *formFlags {
	f := &formFlags{values: map[string]string{}, paths: map[string]string{
		"name":        "name",
		"type":        "type",
		"content":     "content",
		"x":           "position.x",
		"y":           "position.y",
		"width":       "size.width",
		"height":      "size.height",
		"color":       "style.color",
		"font-size":   "style.fontSize",
		"font-family": "style.fontFamily",
		"bg":          "style.backgroundColor",
		"opacity":     "style.opacity",
	}}
	for flagName, path := range f.paths {
		fs.Func(flagName, "sets "+path, func(v string) error {
			f.values[flagName] = v
			return nil
		})
	}
	return f
}

// apply copies the flags the user actually passed into the open form.
func (f *formFlags) apply(fs *flag.FlagSet, m *overlayclient.Manager) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		path, ok := f.paths[fl.Name]
		if !ok || err != nil {
			return
		}
		err = m.SetField(path, f.values[fl.Name])
	})
	return err
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
