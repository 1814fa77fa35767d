package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"pagellm/internal/executil"
)

// Fetcher performs one download attempt for a plan. A non-nil error marks
// the attempt failed and feeds the retry policy.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, p Plan) error
}

// ClientFetcher shells out to the configured download client
// (huggingface-cli by default), streaming its output.
type ClientFetcher struct {
	Client string
	Out    io.Writer

	// Run is swappable for tests; defaults to executil.Run.
	Run func(ctx context.Context, c executil.Cmd) error
}

func (f *ClientFetcher) Name() string { return f.Client }

// Args builds the client invocation: the exact filename for single-file
// quants, an include glob scoped to the quant subdirectory for sharded ones.
func (f *ClientFetcher) Args(p Plan) []string {
	args := []string{"download", p.Repo}
	if p.SingleFile {
		args = append(args, p.FileName)
	} else {
		args = append(args, "--include", p.IncludePattern)
	}
	return append(args, "--local-dir", p.DestDir)
}

func (f *ClientFetcher) Fetch(ctx context.Context, p Plan) error {
	run := f.Run
	if run == nil {
		run = executil.Run
	}
	out := f.Out
	if out == nil {
		out = os.Stdout
	}
	return run(ctx, executil.Cmd{Path: f.Client, Args: f.Args(p), Stream: out})
}

// HTTPFetcher downloads single-file artifacts straight from the hub's
// resolve endpoint. It is the fallback when no download client is installed;
// sharded artifacts need the client's include-glob support and are refused.
type HTTPFetcher struct {
	BaseURL string // default https://huggingface.co
	Client  *http.Client
	Log     zerolog.Logger
	NoBar   bool // suppress the progress bar (non-TTY)

	logEvery *rate.Limiter
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) Fetch(ctx context.Context, p Plan) error {
	if !p.SingleFile {
		return fmt.Errorf("direct HTTP download supports single-file quantizations only; install a download client for sharded %s", p.Quant)
	}
	base := f.BaseURL
	if base == "" {
		base = "https://huggingface.co"
	}
	cli := f.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	if f.logEvery == nil {
		f.logEvery = rate.NewLimiter(rate.Every(2*time.Second), 1)
	}

	u := fmt.Sprintf("%s/%s/resolve/main/%s?download=true", base, p.Repo, url.PathEscape(p.FileName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if tok := os.Getenv("HF_TOKEN"); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", u, resp.Status)
	}

	tmp := p.LocalPath() + ".part"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w := io.Writer(out)
	if !f.NoBar {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+p.FileName)
		w = io.MultiWriter(out, bar)
	}
	w = io.MultiWriter(w, &progressLogger{limiter: f.logEvery, log: f.Log, total: resp.ContentLength, name: p.FileName})
	if _, err := io.Copy(w, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p.LocalPath())
}

// progressLogger emits a throttled structured log line so non-interactive
// runs still show progress without flooding the output.
type progressLogger struct {
	limiter *rate.Limiter
	log     zerolog.Logger
	total   int64
	name    string
	done    int64
}

func (pl *progressLogger) Write(b []byte) (int, error) {
	pl.done += int64(len(b))
	if pl.limiter.Allow() {
		pl.log.Info().
			Str("file", pl.name).
			Str("done", humanize.Bytes(uint64(pl.done))).
			Str("total", humanize.Bytes(uint64(max64(pl.total, 0)))).
			Msg("downloading")
	}
	return len(b), nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
