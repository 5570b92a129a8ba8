package script

import (
	"context"
	"fmt"
	"io"
	"maps"
	"strings"

	"go.uber.org/zap"

	"github.com/go-drift/statekit/pkg/core"
	"github.com/go-drift/statekit/pkg/devtools"
	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/inject"
	"github.com/go-drift/statekit/pkg/state"
	"github.com/go-drift/statekit/pkg/widgets"
)

// Runner mounts a scenario's tree on its own build owner and applies its
// steps, writing every render to out.
type Runner struct {
	script    *Script
	out       io.Writer
	logger    *zap.Logger
	inspector *devtools.Server

	owner      *core.BuildOwner
	containers map[string]*state.Container[state.Map]
	root       core.Element
	renders    int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithInspector exposes the scenario's containers and tree on server.
func WithInspector(server *devtools.Server) Option {
	return func(r *Runner) {
		r.inspector = server
	}
}

// NewRunner returns a runner for s.
func NewRunner(s *Script, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		script: s,
		out:    out,
		logger: zap.NewNop(),
		owner:  core.NewBuildOwner(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Container returns the container declared as name.
func (r *Runner) Container(name string) (*state.Container[state.Map], bool) {
	c, ok := r.containers[name]
	return c, ok
}

// Renders returns the number of subscriber renders so far.
func (r *Runner) Renders() int {
	return r.renders
}

// Run mounts the tree, applies every step and prints a summary.
// A subscriber that cannot find its containers fails the run with the
// configuration error raised while mounting.
func (r *Runner) Run(ctx context.Context) error {
	r.containers = make(map[string]*state.Container[state.Map], len(r.script.Containers))
	for _, c := range r.script.Containers {
		initial := state.Map{}
		maps.Copy(initial, c.State)
		store := state.New(initial, state.WithName[state.Map](c.Name))
		r.containers[c.Name] = store
		if r.inspector != nil {
			r.inspector.Registry().Track(store)
		}
	}

	tree, err := r.build(r.script.Tree, "tree")
	if err != nil {
		return err
	}
	if err := r.frame(func() { r.root = core.MountRoot(tree, r.owner) }); err != nil {
		return err
	}
	if r.inspector != nil {
		r.inspector.SetRoot(r.root)
	}
	r.logger.Debug("scenario mounted", zap.Int("containers", len(r.containers)))

	for i, step := range r.script.Steps {
		if err := r.apply(ctx, i+1, step); err != nil {
			return err
		}
	}

	r.summary()
	return nil
}

func (r *Runner) apply(ctx context.Context, n int, step Step) error {
	if step.Unmount {
		fmt.Fprintf(r.out, "step %d: unmount\n", n)
		if r.root == nil {
			return nil
		}
		if err := r.frame(func() {
			r.root.Unmount()
			r.root = nil
		}); err != nil {
			return err
		}
		if r.inspector != nil {
			r.inspector.SetRoot(nil)
		}
		return nil
	}

	fmt.Fprintf(r.out, "step %d: set %s\n", n, step.Set)
	c, ok := r.containers[step.Set]
	if !ok {
		return fmt.Errorf("step %d: unknown container %q", n, step.Set)
	}
	var done *state.Completion
	if err := r.frame(func() {
		done = c.Mutate(state.Patch(state.Map(step.Patch)), nil)
		r.owner.FlushBuild()
	}); err != nil {
		return err
	}
	if err := done.Wait(ctx); err != nil {
		return fmt.Errorf("step %d: %w", n, err)
	}
	r.logger.Debug("step settled",
		zap.Int("step", n),
		zap.String("container", step.Set),
		zap.Uint64("version", c.Version()),
	)
	return nil
}

func (r *Runner) summary() {
	for _, decl := range r.script.Containers {
		c := r.containers[decl.Name]
		fmt.Fprintf(r.out, "%s version=%d listeners=%d state=%v\n",
			decl.Name, c.Version(), c.ListenerCount(), c.State())
	}
	fmt.Fprintf(r.out, "renders=%d\n", r.renders)
}

// frame runs fn as one host frame. A panic carrying an error, such as a
// configuration error raised while mounting, is returned instead.
func (r *Runner) frame(fn func()) (err error) {
	run := func() {
		defer func() {
			if rec := recover(); rec != nil {
				e, ok := rec.(error)
				if !ok {
					panic(rec)
				}
				err = e
			}
		}()
		fn()
	}
	if r.inspector != nil {
		r.inspector.Frame(run)
	} else {
		run()
	}
	return err
}

func (r *Runner) build(n Node, path string) (core.Widget, error) {
	switch {
	case len(n.Subscribe) > 0:
		return r.subscriber(n, path)
	case n.Text != "":
		return widgets.Text{Content: n.Text}, nil
	}

	children := make([]core.Widget, 0, len(n.Children))
	for i, child := range n.Children {
		w, err := r.build(child, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, w)
	}
	column := widgets.Column{Children: children}
	if len(n.Provide) == 0 {
		return column, nil
	}

	provided := make([]state.Store, 0, len(n.Provide))
	for _, name := range n.Provide {
		c, ok := r.containers[name]
		if !ok {
			return nil, fmt.Errorf("%s: unknown container %q", path, name)
		}
		provided = append(provided, c)
	}
	return widgets.Provider{Inject: provided, Child: column}, nil
}

func (r *Runner) subscriber(n Node, path string) (core.Widget, error) {
	tmpl, err := parseTemplate(path, n.Render)
	if err != nil {
		return nil, err
	}
	names := n.Subscribe
	to := make([]inject.Descriptor, len(names))
	for i, name := range names {
		to[i] = inject.RefNamed[*state.Container[state.Map]](name)
	}

	return widgets.Subscribe{
		To: to,
		Builder: func(_ core.BuildContext, stores ...state.Store) core.Widget {
			data := make(map[string]any, len(stores))
			for i, s := range stores {
				data[names[i]] = s.Snapshot()
			}
			var sb strings.Builder
			if err := tmpl.Execute(&sb, data); err != nil {
				errors.Report(&errors.StateError{
					Op:        "script.render " + path,
					Kind:      errors.KindCallback,
					Container: strings.Join(names, ","),
					Err:       err,
				})
				sb.Reset()
				sb.WriteString(err.Error())
			}
			r.renders++
			fmt.Fprintf(r.out, "render %s: %s\n", path, sb.String())
			return widgets.Text{Content: sb.String()}
		},
	}, nil
}
