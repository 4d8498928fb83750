package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"workflowbuilder/application/commands"
	"workflowbuilder/application/commands/bus"
	querybus "workflowbuilder/application/queries/bus"
	"workflowbuilder/pkg/common"
	pkgerrors "workflowbuilder/pkg/errors"
	"workflowbuilder/pkg/observability"
)

// Deps is shared by every handler
type Deps struct {
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Errors       *pkgerrors.ErrorHandler
	Logger       *zap.Logger
	Tracer       *observability.Tracer
	MaxBodyBytes int64
}

type base struct {
	Deps
}

func newBase(d Deps) base {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Errors == nil {
		d.Errors = pkgerrors.NewErrorHandler(d.Logger, false)
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 1 << 20
	}
	return base{Deps: d}
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

// decode reads the JSON body into v. Malformed JSON is a validation error.
func (b base) decode(r *http.Request, v interface{}) error {
	if err := common.ParseJSONBody(r, v, b.MaxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.NewValidationError("request body too large").WithCode("BODY_TOO_LARGE")
		}
		return pkgerrors.NewValidationError("invalid request body").WithCode("INVALID_JSON").WithCause(err)
	}
	return nil
}

// send dispatches cmd and writes the result envelope
func (b base) send(w http.ResponseWriter, r *http.Request, cmd bus.Command, status int) {
	res, err := b.dispatch(r.Context(), cmd)
	if err != nil {
		b.Errors.Handle(w, r, err)
		return
	}
	meta := common.NewMeta(r)
	applied := res.Applied
	meta.Applied = &applied
	common.RespondWithMeta(w, status, res, meta)
}

func (b base) dispatch(ctx context.Context, cmd bus.Command) (*commands.Result, error) {
	var out interface{}
	err := b.Tracer.TraceFunction(ctx, fmt.Sprintf("%T", cmd), func(ctx context.Context) error {
		var err error
		out, err = b.CommandBus.Send(ctx, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	res, ok := out.(*commands.Result)
	if !ok {
		return nil, pkgerrors.NewInternalError("unexpected command result")
	}
	if res.SessionID != "" {
		b.Tracer.AddAnnotation(ctx, "session_id", res.SessionID)
	}
	return res, nil
}

// ask runs q and writes its result
func (b base) ask(w http.ResponseWriter, r *http.Request, q querybus.Query) {
	out, err := b.QueryBus.Ask(r.Context(), q)
	if err != nil {
		b.Errors.Handle(w, r, err)
		return
	}
	common.RespondWithMeta(w, http.StatusOK, out, common.NewMeta(r))
}
