package agent

import (
	"errors"
	"io"
	"os"
	"os/user"
	"sort"

	"github.com/hupe1980/codeloop/code"
	"github.com/hupe1980/codeloop/config"
	"github.com/hupe1980/codeloop/confirm"
	"github.com/hupe1980/codeloop/console"
	"github.com/hupe1980/codeloop/i18n"
	"github.com/hupe1980/codeloop/logging"
	"github.com/hupe1980/codeloop/metrics"
	"github.com/hupe1980/codeloop/model"
	"github.com/hupe1980/codeloop/publish"
	"github.com/hupe1980/codeloop/session"
)

var (
	// ErrNoModel is returned by New when neither Model nor NewModel is set.
	ErrNoModel = errors.New("agent: model client is required")
	// ErrNoExecutor is returned by New when Executor is nil.
	ErrNoExecutor = errors.New("agent: executor is required")
)

// Options configures an Agent.
type Options struct {
	// Model is the conversation client. When NewModel is set it is rebuilt
	// from the configuration on every Init instead.
	Model    model.Client
	NewModel func(cfg *config.Config) (model.Client, error)
	Executor code.Executor
	Console  console.Sink
	// Confirmer approves Reset. Default: a prompt on stdin/stdout.
	Confirmer confirm.Confirmer
	// Uploader publishes documents. Default: a publish.Uploader built from
	// the configuration on every Init.
	Uploader Uploader
	// Loader re-reads the configuration on Reset(path). Default: config.Load.
	Loader  func(path string) (*config.Config, error)
	Logger  logging.Logger
	Metrics *metrics.Metrics
	// Bell receives the completion signal. Default: stdout.
	Bell io.Writer
	// User returns the default publish author.
	User func() string
}

// RunOptions configures a single Run.
type RunOptions struct {
	// Provider selects a named model for the first request of the instruction.
	Provider string
}

// Agent drives the instruction loop over its collaborators.
type Agent struct {
	opts      Options
	cfg       *config.Config
	state     *session.State
	llm       model.Client
	exec      code.Executor
	sink      console.Sink
	confirmer confirm.Confirmer
	uploader  Uploader
	cat       *i18n.Catalog
	log       *logging.LoopLogger
	base      *logging.LoopLogger
	metrics   *metrics.Metrics
}

// New creates an Agent and runs Init with cfg. A nil cfg uses defaults.
//
// Default configuration:
//   - Console on stdout with recording as configured
//   - Confirmation prompt on stdin/stdout
//   - Uploader from cfg.Publish
//   - Configuration loader config.Load
//   - No-op logger, no metrics
func New(cfg *config.Config, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Loader: config.Load,
		Bell:   os.Stdout,
		User:   currentUser,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Model == nil && opts.NewModel == nil {
		return nil, ErrNoModel
	}
	if opts.Executor == nil {
		return nil, ErrNoExecutor
	}
	if opts.Confirmer == nil {
		opts.Confirmer = confirm.NewPrompter()
	}

	a := &Agent{
		opts:      opts,
		llm:       opts.Model,
		exec:      opts.Executor,
		sink:      opts.Console,
		confirmer: opts.Confirmer,
		base:      logging.NewLoopLogger(opts.Logger).WithComponent("agent"),
		metrics:   opts.Metrics,
	}
	if err := a.Init(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Init (re)initializes the session from cfg: it applies defaults, registers
// the capability environment with the executor and assembles the system
// prompt. The previous session state is replaced wholesale.
func (a *Agent) Init(cfg *config.Config) error {
	if cfg == nil {
		cfg = &config.Config{Record: true}
	}

	llm, err := a.buildModel(cfg)
	if err != nil {
		return err
	}
	a.apply(cfg, llm)
	return nil
}

// buildModel returns the client for cfg: a fresh one from NewModel when set,
// the current one otherwise.
func (a *Agent) buildModel(cfg *config.Config) (model.Client, error) {
	if a.opts.NewModel == nil {
		return a.llm, nil
	}
	return a.opts.NewModel(cfg)
}

// apply installs cfg and llm as the new session. It cannot fail.
func (a *Agent) apply(cfg *config.Config, llm model.Client) {
	state := session.New()
	state.Language = cfg.Lang
	state.Record = cfg.Record
	state.MaxRounds = cfg.MaxRounds
	if cfg.MaxTokens > 0 {
		state.MaxTokens = cfg.MaxTokens
	}

	a.llm = llm

	if a.sink == nil {
		a.sink = console.New(func(o *console.Options) { o.Record = cfg.Record })
	}

	a.uploader = a.opts.Uploader
	if a.uploader == nil {
		a.uploader = publish.New(func(o *publish.Options) {
			o.URL = cfg.Publish.URL
			o.Cert = cfg.Publish.Cert
			if cfg.Publish.CertPath != "" {
				o.CertPath = cfg.Publish.CertPath
			}
		})
	}

	a.cat = i18n.New(cfg.Lang)
	state.SystemPrompt = session.AssemblePrompt(cfg.SystemPrompt, capabilities(cfg.API), a.exec, session.Headings{
		Env:         a.cat.T(i18n.EnvDescription),
		Description: a.cat.T(i18n.Description),
	})

	a.cfg = cfg
	a.state = state
	a.log = a.base.WithSession(state.ID)
	a.log.Info("Session initialized",
		"language", a.cat.Tag().String(),
		"capabilities", len(cfg.API),
		"max_tokens", state.MaxTokens,
		"max_rounds", state.MaxRounds,
	)
}

// Reset asks for confirmation and reinitializes the agent. With a non-empty
// path the configuration is reloaded from it first. A declined confirmation
// leaves everything untouched, and so does a failure to load the
// configuration or to build the model.
func (a *Agent) Reset(path string) error {
	yes := a.confirmer.Confirm(
		"\n☠️⚠️💀 "+a.cat.T(i18n.ResetWarning),
		"🔥 "+a.cat.T(i18n.ResetConfirm),
	)
	if !yes {
		a.log.Info("Reset declined")
		return nil
	}

	cfg := a.cfg
	if path != "" {
		loaded, err := a.opts.Loader(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	llm, err := a.buildModel(cfg)
	if err != nil {
		a.log.Error("Reset aborted", "error", err.Error())
		return err
	}

	a.llm.Clear()
	a.exec.Clear()
	a.log.Info("Session reset", "config_path", path)
	a.apply(cfg, llm)
	return nil
}

// Clear drops the model history and the executor state. The system prompt is
// kept and will be attached to the next instruction. Clear is idempotent.
func (a *Agent) Clear() {
	a.llm.Clear()
	a.exec.Clear()
	a.log.Debug("Session cleared")
}

// State returns a copy of the session state.
func (a *Agent) State() session.State { return *a.state }

// Config returns the active configuration.
func (a *Agent) Config() *config.Config { return a.cfg }

// Model returns the model client.
func (a *Agent) Model() model.Client { return a.llm }

// Use switches the default model provider.
func (a *Agent) Use(name string) error { return a.llm.Use(name) }

// capabilities converts the configured APIs, skipping malformed env pairs.
func capabilities(apis map[string]config.API) []session.Capability {
	out := make([]session.Capability, 0, len(apis))
	for name, api := range apis {
		c := session.Capability{Name: name, Desc: api.Desc}
		for env, pair := range api.Env {
			if len(pair) != 2 {
				continue
			}
			c.Env = append(c.Env, session.EnvVar{Name: env, Value: pair[0], Description: pair[1]})
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
