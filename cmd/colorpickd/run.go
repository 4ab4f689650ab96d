package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/colorpick"
	"github.com/gogpu/colorpick/config"
	"github.com/gogpu/colorpick/gpu"
)

type runOptions struct {
	nodes    int
	frames   int
	fps      int
	size     int
	dark     bool
	callback bool
	debounce time.Duration
	accel    string
	plain    bool
	watch    bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the node simulation",
		Long: `Run N nodes for a number of frames at the given rate and print the
colour each node picked. With --callback the first node reports luminance
zone changes through a client callback instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), root.manager, opts)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.nodes, "nodes", "n", 3, "number of render nodes")
	f.IntVarP(&opts.frames, "frames", "f", 120, "frames to run (0 runs until interrupted)")
	f.IntVar(&opts.fps, "fps", 60, "frames per second")
	f.IntVar(&opts.size, "size", 64, "node surface size in pixels")
	f.BoolVar(&opts.dark, "dark", false, "system dark colour mode")
	f.BoolVar(&opts.callback, "callback", false, "report node 1 through a client callback")
	f.DurationVar(&opts.debounce, "debounce", 0, "client callback debounce")
	f.StringVar(&opts.accel, "accel", "", "accelerator mode override: auto, gpu or cpu")
	f.BoolVar(&opts.plain, "plain", false, "disable colour swatches")
	f.BoolVar(&opts.watch, "watch", false, "reload node defaults when the config file changes")
	return cmd
}

// syncWriter serialises writes from the frame loop and callback printer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func runSimulation(ctx context.Context, stdout, stderr io.Writer, m *config.Manager, opts *runOptions) error {
	if opts.nodes < 1 || opts.fps < 1 || opts.size < 1 {
		return fmt.Errorf("nodes, fps and size must be positive")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := m.Get()
	if opts.accel != "" {
		cfg.Accelerator.Mode = config.AcceleratorMode(opts.accel)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	colorpick.SetLogger(cfg.Logging.NewLogger(stderr))
	defer colorpick.SetLogger(nil)

	param, err := cfg.DefaultParam()
	if err != nil {
		return err
	}
	rtOpts, err := cfg.RuntimeOptions()
	if err != nil {
		return err
	}
	accel, closeAccel, err := newAccelerator(cfg.Accelerator.Mode)
	if err != nil {
		return err
	}
	defer closeAccel()
	if accel != nil {
		rtOpts = append(rtOpts, colorpick.WithAccelerator(accel))
	}
	rtOpts = append(rtOpts, colorpick.WithGPUContext(gpu.ContextFactory(gpu.NullDevice{})))

	rt := colorpick.NewRuntime(rtOpts...)
	defer rt.Close()

	out := &syncWriter{w: stdout}
	sim := newSimulation(rt, opts.nodes, opts.size, param)
	sim.dark = opts.dark
	defer sim.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	loopCtx, endLoop := context.WithCancel(ctx)

	events := make(chan uint32, 16)
	if opts.callback {
		callbacks := colorpick.NewClientCallbacks(rt)
		defer callbacks.Close()
		interval := max(param.Interval, 100*time.Millisecond)
		err := callbacks.RegisterColorPickerCallback(sim.nodes[0].node, interval, func(lum uint32) {
			select {
			case events <- lum:
			case <-loopCtx.Done():
			default:
			}
		}, opts.debounce)
		if err != nil {
			endLoop()
			return err
		}
		g.Go(func() error {
			for {
				select {
				case lum := <-events:
					fmt.Fprintf(out, "node 1 luminance %3d (%s)\n", lum,
						colorpick.ClassifyLuminance(lum, param.NotifyThreshold))
				case <-loopCtx.Done():
					return nil
				}
			}
		})
	}
	sim.attach()

	if opts.watch {
		m.OnConfigChange(func(c *config.Config) {
			p, err := c.DefaultParam()
			if err != nil {
				return
			}
			colorpick.SetLogger(c.Logging.NewLogger(stderr))
			sim.applyParams(p)
			colorpick.Logger().Info("colorpickd: node defaults reloaded", "strategy", p.Strategy)
		})
		m.OnReloadError(func(err error) {
			colorpick.Logger().Warn("colorpickd: config reload failed", "err", err)
		})
		if err := m.Watch(); err != nil {
			colorpick.Logger().Warn("colorpickd: not watching config", "err", err)
		}
	}

	g.Go(func() error {
		defer endLoop()
		ticker := time.NewTicker(time.Second / time.Duration(opts.fps))
		defer ticker.Stop()
		for opts.frames == 0 || sim.frames < opts.frames {
			select {
			case <-loopCtx.Done():
				return nil
			case tick := <-ticker.C:
				sim.step(tick.UnixNano())
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	sim.report(out, !opts.plain)
	return nil
}
