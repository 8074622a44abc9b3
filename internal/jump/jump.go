// Package jump implements the two navigation actions: from an RPC declaration
// to its implementations and from an implementation back to its declaration.
//
// Every action returns normally. Resolution failures, unknown languages and
// panics are classified into a Result and reported through the Navigator.
package jump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mvp-joe/protolink/internal/finder"
	"github.com/mvp-joe/protolink/internal/lens"
	"github.com/mvp-joe/protolink/internal/workspace"
)

// Outcome classifies how an action ended.
type Outcome string

const (
	OutcomeNavigated   Outcome = "navigated"
	OutcomeSelected    Outcome = "selected"
	OutcomeCancelled   Outcome = "cancelled"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeFailed      Outcome = "failed"
)

// Result describes one action invocation.
type Result struct {
	ID        string               `json:"id"`
	Outcome   Outcome              `json:"outcome"`
	Locations []workspace.Location `json:"locations"`
	Selected  *workspace.Location  `json:"selected,omitempty"`
	Message   string               `json:"message,omitempty"`
	// Err is set for OutcomeUnsupported and OutcomeFailed.
	Err error `json:"-"`
}

// ImplementationArgs are the arguments of the jump to implementation.
type ImplementationArgs struct {
	Service        string
	Method         string
	InputType      string
	OutputType     string
	DefinitionPath string
	// Language selects a registered finder; empty means the default.
	Language string
}

// DefinitionArgs are the arguments of the jump to definition.
type DefinitionArgs struct {
	Method             string
	ReceiverType       string
	ImplementationPath string
}

// DefinitionResolver finds proto declarations of a Go method.
type DefinitionResolver interface {
	FindDefinitions(ctx context.Context, method, receiverType string) ([]workspace.Location, error)
}

// Actions runs jumps against a finder registry and a navigator.
type Actions struct {
	registry    *finder.Registry
	definitions DefinitionResolver
	files       workspace.FileEnumerator
	nav         workspace.Navigator
	logger      *slog.Logger
}

// New creates the actions. files is only used to render relative paths in
// selection lists.
func New(registry *finder.Registry, definitions DefinitionResolver, files workspace.FileEnumerator, nav workspace.Navigator, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Actions{
		registry:    registry,
		definitions: definitions,
		files:       files,
		nav:         nav,
		logger:      logger,
	}
}

// WithNavigator returns a copy of a that reports through nav.
func (a *Actions) WithNavigator(nav workspace.Navigator) *Actions {
	c := *a
	c.nav = nav
	return &c
}

// Languages lists the registered implementation languages.
func (a *Actions) Languages() []string {
	return a.registry.Languages()
}

// JumpToImplementation resolves an RPC to its implementations and navigates.
func (a *Actions) JumpToImplementation(ctx context.Context, args ImplementationArgs) (res Result) {
	id := uuid.NewString()
	logger := a.logger.With("invocation", id, "action", lens.ActionJumpToImplementation)
	defer a.recoverPanic(ctx, logger, id, &res)

	language := args.Language
	if language == "" {
		language = finder.DefaultLanguage
	}

	f, err := a.registry.Lookup(language)
	if err != nil {
		msg := fmt.Sprintf("Unsupported language: %s. Supported languages: %s", language, strings.Join(a.registry.Languages(), ", "))
		logger.Warn("unsupported language", "language", language)
		a.nav.Notify(ctx, workspace.NoticeWarning, msg)
		return Result{ID: id, Outcome: OutcomeUnsupported, Message: msg, Err: err}
	}

	logger.Info("jump to implementation",
		"service", args.Service,
		"method", args.Method,
		"language", language)

	locations, err := f.FindImplementations(ctx, finder.ImplementationQuery{
		Service:        args.Service,
		Method:         args.Method,
		InputType:      args.InputType,
		OutputType:     args.OutputType,
		DefinitionPath: args.DefinitionPath,
	})
	if err != nil {
		return a.fail(ctx, logger, id, err)
	}

	notFound := fmt.Sprintf("No %s implementation found for %s.%s", language, args.Service, args.Method)
	return a.present(ctx, logger, id, locations, "implementations", notFound)
}

// JumpToDefinition resolves a Go method to its proto declarations and
// navigates.
func (a *Actions) JumpToDefinition(ctx context.Context, args DefinitionArgs) (res Result) {
	id := uuid.NewString()
	logger := a.logger.With("invocation", id, "action", lens.ActionJumpToDefinition)
	defer a.recoverPanic(ctx, logger, id, &res)

	logger.Info("jump to definition", "method", args.Method, "receiver", args.ReceiverType)

	locations, err := a.definitions.FindDefinitions(ctx, args.Method, args.ReceiverType)
	if err != nil {
		return a.fail(ctx, logger, id, err)
	}

	notFound := fmt.Sprintf("No proto definition found for method %s", args.Method)
	return a.present(ctx, logger, id, locations, "proto definitions", notFound)
}

// Invoke runs an annotation's action with its positional arguments.
func (a *Actions) Invoke(ctx context.Context, action string, arguments []any) Result {
	switch action {
	case lens.ActionJumpToImplementation:
		s, err := stringArgs(arguments, 6)
		if err != nil {
			return a.fail(ctx, a.logger, uuid.NewString(), err)
		}
		return a.JumpToImplementation(ctx, ImplementationArgs{
			Service:        s[0],
			Method:         s[1],
			InputType:      s[2],
			OutputType:     s[3],
			DefinitionPath: s[4],
			Language:       s[5],
		})
	case lens.ActionJumpToDefinition:
		s, err := stringArgs(arguments, 3)
		if err != nil {
			return a.fail(ctx, a.logger, uuid.NewString(), err)
		}
		return a.JumpToDefinition(ctx, DefinitionArgs{
			Method:             s[0],
			ReceiverType:       s[1],
			ImplementationPath: s[2],
		})
	default:
		return a.fail(ctx, a.logger, uuid.NewString(), fmt.Errorf("unknown action %q", action))
	}
}

// stringArgs reads up to n positional string arguments; missing ones are
// empty.
func stringArgs(arguments []any, n int) ([]string, error) {
	out := make([]string, n)
	for i := 0; i < n && i < len(arguments); i++ {
		switch v := arguments[i].(type) {
		case nil:
		case string:
			out[i] = v
		case fmt.Stringer:
			out[i] = v.String()
		default:
			return nil, fmt.Errorf("argument %d: expected string, got %T", i, arguments[i])
		}
	}
	return out, nil
}

// present applies the zero/one/many policy to locations.
func (a *Actions) present(ctx context.Context, logger *slog.Logger, id string, locations []workspace.Location, kind, notFound string) Result {
	res := Result{ID: id, Locations: locations}

	switch len(locations) {
	case 0:
		logger.Info("no results")
		a.nav.Notify(ctx, workspace.NoticeInfo, notFound)
		res.Outcome = OutcomeNotFound
		res.Message = notFound
		return res

	case 1:
		if err := a.nav.Navigate(ctx, locations[0]); err != nil {
			return a.fail(ctx, logger, id, err)
		}
		res.Outcome = OutcomeNavigated
		res.Selected = &locations[0]
		return res
	}

	items := make([]workspace.PickItem, len(locations))
	for i, loc := range locations {
		items[i] = workspace.PickItem{
			Label:       a.files.RelativePath(loc.Path),
			Description: fmt.Sprintf("line %d", loc.Line()+1),
			Detail:      loc.Path,
			Location:    loc,
		}
	}
	placeholder := fmt.Sprintf("Found %d %s, select one", len(locations), kind)

	idx, ok, err := a.nav.Pick(ctx, placeholder, items)
	if err != nil {
		return a.fail(ctx, logger, id, err)
	}
	if !ok || idx < 0 || idx >= len(locations) {
		logger.Info("selection dismissed", "results", len(locations))
		res.Outcome = OutcomeCancelled
		return res
	}

	if err := a.nav.Navigate(ctx, locations[idx]); err != nil {
		return a.fail(ctx, logger, id, err)
	}
	logger.Info("selected result", "index", idx, "results", len(locations))
	res.Outcome = OutcomeSelected
	res.Selected = &locations[idx]
	return res
}

func (a *Actions) fail(ctx context.Context, logger *slog.Logger, id string, err error) Result {
	msg := "Jump failed: " + err.Error()
	if errors.Is(err, context.Canceled) {
		logger.Info("jump cancelled", "error", err)
	} else {
		logger.Error("jump failed", "error", err)
	}
	a.nav.Notify(ctx, workspace.NoticeError, msg)
	return Result{ID: id, Outcome: OutcomeFailed, Message: msg, Err: err}
}

func (a *Actions) recoverPanic(ctx context.Context, logger *slog.Logger, id string, res *Result) {
	if r := recover(); r != nil {
		*res = a.fail(ctx, logger, id, fmt.Errorf("panic: %v", r))
	}
}
