package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"ldtools/config"
	"ldtools/content"
	"ldtools/state"
)

// Result collects issues of all checked sources.
type Result struct {
	mu      sync.Mutex
	Checked int
	Issues  []Issue
}

func (r *Result) add(issues ...Issue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Checked++
	r.Issues = append(r.Issues, issues...)
}

// Count returns number of issues of the severity.
func (r *Result) Count(sev Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// Err combines all error level issues, nil when there are none.
func (r *Result) Err() error {
	var err error
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			err = multierr.Append(err, i)
		}
	}
	return err
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("check")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Mailformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	opts := OptionsFromConfig(&env.Cfg.Check, env.Palette)
	if m := cmd.String("missing"); len(m) > 0 {
		policy, err := config.ParseMissingPolicy(m)
		if err != nil {
			log.Warn("Unknown missing references policy requested, using configured one", zap.Error(err), zap.Stringer("policy", opts.Missing))
		} else {
			opts.Missing = policy
		}
	}

	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		}
	}

	log.Info("Checking starting", zap.String("source", src), zap.Stringer("missing", opts.Missing))
	start := time.Now()

	res, err := process(ctx, src, opts, log)
	if err != nil {
		return err
	}

	for _, i := range res.Issues {
		if i.Severity == SeverityError {
			log.Error("Problem found", zap.String("issue", i.Error()))
		} else {
			log.Warn("Problem found", zap.String("issue", i.Error()))
		}
	}
	log.Info("Checking completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("checked", res.Checked),
		zap.Int("errors", res.Count(SeverityError)),
		zap.Int("warnings", res.Count(SeverityWarning)))

	if err := res.Err(); err != nil {
		return fmt.Errorf("%d source(s) checked, %d error(s) found: %w", res.Checked, res.Count(SeverityError), err)
	}
	return nil
}

// process checks every LDraw source found under src.
func process(ctx context.Context, src string, opts Options, log *zap.Logger) (*Result, error) {
	res := &Result{}
	err := content.Walk(ctx, src, func(ctx context.Context, r io.Reader, name string) error {
		c, err := content.Prepare(ctx, r, name, log)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			res.add(ParseIssue(name, err))
			return nil
		}
		defer c.Doc.Dispose()
		res.add(Document(c.Doc, name, opts, log)...)
		return nil
	}, log)
	if err != nil {
		return nil, err
	}
	return res, nil
}
