package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/dagscale/internal/adapters/eventbus"
	"github.com/ZanzyTHEbar/dagscale/internal/adapters/shared"
	"github.com/ZanzyTHEbar/dagscale/internal/config"
	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/logging"
	"github.com/ZanzyTHEbar/dagscale/internal/plan"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

type planBlock = shared.Block[qty.Second, plan.Task, domain.DependencyKind]

// app carries state shared by the subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	bus    *eventbus.SimpleEventBus
	events eventbus.Subscriber
	traced chan struct{}
}

// newRootCmd builds the command tree. The caller must call the returned
// app's close once Execute returns, whatever the outcome; cobra skips
// post-run hooks when a command fails.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:   "dagscale",
		Short: "Order and analyse task dependency plans",
		Long: `dagscale loads a plan of tasks and dependencies, keeps it acyclic,
and reports a deterministic execution order, the critical path and the
slack of every task.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "dagscale.json", "Path to configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(a.orderCmd())
	root.AddCommand(a.criticalPathCmd())
	root.AddCommand(a.analyzeCmd())
	root.AddCommand(a.watchCmd())
	return root, a
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.System.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := logging.Setup(cfg.System, cmd.ErrOrStderr()); err != nil {
		return err
	}
	a.cfg = cfg

	a.bus = eventbus.NewSimpleEventBus(cfg.EventBus.DefaultBufferSize)
	a.events, err = a.bus.Subscribe(eventbus.AllTopics, 0)
	if err != nil {
		return err
	}
	a.traced = make(chan struct{})
	go traceEvents(log.Logger.With().Str("component", "cli").Logger(), a.events, a.traced)
	return nil
}

// traceEvents logs every event on events with l until the channel is closed,
// then closes done.
func traceEvents(l zerolog.Logger, events eventbus.Subscriber, done chan<- struct{}) {
	defer close(done)
	for ev := range events {
		l.Trace().
			Str("topic", ev.Topic).
			Str("event", ev.ID).
			Interface("data", ev.Data).
			Msg("block event")
	}
}

// close stops the bus and waits for the event tracer to drain. It is safe to
// call when setup never ran or ran only partly, and more than once.
func (a *app) close() {
	if a.bus != nil {
		a.bus.Stop()
		a.bus = nil
	}
	if a.events != nil {
		close(a.events)
		a.events = nil
	}
	if a.traced != nil {
		<-a.traced
		a.traced = nil
	}
}

// load reads the plan at path into a fresh shared block that announces its
// mutations on the bus.
func (a *app) load(path string) (*planBlock, error) {
	b, _, err := a.loadFile(path)
	return b, err
}

func (a *app) loadFile(path string) (*planBlock, *plan.File, error) {
	f, err := plan.Load(path)
	if err != nil {
		return nil, nil, err
	}
	ids := domain.IDGeneratorFor(a.cfg.Block.IDStrategy, a.cfg.Block.IDPrefix)
	b := shared.New(
		domain.NewBlock[qty.Second, plan.Task, domain.DependencyKind](domain.WithIDGenerator(ids)),
		shared.WithPublisher(a.bus),
	)
	if err := f.Populate(b); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("plan", path).Int("tasks", b.Len()).Msg("plan loaded")
	return b, f, nil
}

func (a *app) unit(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Report.Unit
}
