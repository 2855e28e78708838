package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storeplan/internal/config"
	"storeplan/internal/domain"
	"storeplan/internal/engine"
	"storeplan/internal/loader"
	"storeplan/internal/service"
	"storeplan/internal/tui"
	"storeplan/internal/watcher"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type viewFlags struct {
	edit  bool
	watch bool
	write bool
	debug string
}

func newViewCommand(flags *globalFlags) *cobra.Command {
	var vf viewFlags

	cmd := &cobra.Command{
		Use:   "view [layout-file]",
		Short: "Browse the plan in the terminal",
		Long: `Opens the plan in a terminal viewer. Without a file the stored layout is shown
and edits are saved to the database. With a file, edits stay in memory unless
--write is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if vf.edit {
				cfg.Mode = config.ModeEditor
			}

			if vf.debug != "" {
				f, err := tea.LogToFile(vf.debug, "view")
				if err != nil {
					return err
				}
				defer f.Close()
			} else {
				log.SetOutput(io.Discard)
			}

			if len(args) == 1 {
				return viewFile(cfg, args[0], vf)
			}
			return viewStore(cfg)
		},
	}

	cmd.Flags().BoolVarP(&vf.edit, "edit", "e", false, "Allow editing regardless of the configured mode")
	cmd.Flags().BoolVarP(&vf.watch, "watch", "w", false, "Reload the layout file when it changes")
	cmd.Flags().BoolVar(&vf.write, "write", false, "Write edits back to the layout file on exit")
	cmd.Flags().StringVar(&vf.debug, "debug", "", "Write logs to this file")

	return cmd
}

func runProgram(m tui.Model, setup func(p *tea.Program)) (tui.Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if setup != nil {
		setup(p)
	}
	final, err := p.Run()
	if err != nil {
		return m, err
	}
	if fm, ok := final.(tui.Model); ok {
		return fm, nil
	}
	return m, nil
}

// viewStore shows the stored layout; edits flow through the coalescing writer
func viewStore(cfg *config.Config) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	layout, err := st.svc.GetLayout(ctx)
	if err != nil {
		cancel()
		return err
	}

	writer := service.NewWriter(st.svc)
	go func() {
		defer close(done)
		writer.Run(ctx)
	}()

	m := tui.New(layout, tui.Options{
		Title:     "storeplan · " + cfg.Database.Path,
		Engine:    cfg.EngineOptions(),
		Callbacks: writer.EngineCallbacks("tui"),
		Editable:  cfg.Mode.Allows(config.ModeEditor),
	})
	defer m.Engine().Close()

	_, runErr := runProgram(m, nil)

	// Stopping the writer flushes pending edits
	cancel()
	<-done
	return runErr
}

// layoutReloader forwards file reloads into a running program
type layoutReloader struct {
	p *tea.Program
}

func (r layoutReloader) ReloadLayout(ctx context.Context, layout *domain.Layout) error {
	r.p.Send(tui.LayoutMsg{Layout: layout})
	return nil
}

func viewFile(cfg *config.Config, path string, vf viewFlags) error {
	layout, err := loader.LoadFile(path)
	if err != nil {
		return err
	}

	m := tui.New(layout, tui.Options{
		Title:     "storeplan · " + path,
		Engine:    cfg.EngineOptions(),
		Callbacks: engine.Callbacks{},
		Editable:  cfg.Mode.Allows(config.ModeEditor),
	})
	defer m.Engine().Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	final, err := runProgram(m, func(p *tea.Program) {
		if !vf.watch {
			return
		}
		layoutSync := watcher.NewLayoutSync(path, layoutReloader{p: p})
		go func() {
			if err := layoutSync.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Layout watcher stopped: %v", err)
			}
		}()
	})
	if err != nil {
		return err
	}

	if vf.write {
		if err := loader.SaveFile(path, final.Engine().Layout()); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		fmt.Printf("Saved %s\n", path)
	}
	return nil
}
