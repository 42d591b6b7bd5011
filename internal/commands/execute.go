package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Done    func(TaskArgs) (Result, error)
	Undo    func(TaskArgs) (Result, error)
	Delete  func(TaskArgs) (Result, error)
	Pause   func(TaskArgs) (Result, error)
	Resume  func(TaskArgs) (Result, error)
	Snooze  func(TaskArgs) (Result, error)
	Retime  func(RetimeArgs) (Result, error)
	Visit   func(VisitArgs) (Result, error)
	Unvisit func(UnvisitArgs) (Result, error)
	Refresh func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone, TypeUndo, TypeDelete, TypePause, TypeResume, TypeSnooze:
		handler := taskHandler(cmd.Type, handlers)
		if handler == nil {
			return Result{}, missing(cmd.Type)
		}
		return handler(*cmd.Task)
	case TypeRetime:
		if handlers.Retime == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Retime(*cmd.Retime)
	case TypeVisit:
		if handlers.Visit == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Visit(*cmd.Visit)
	case TypeUnvisit:
		if handlers.Unvisit == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Unvisit(*cmd.Unvisit)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func taskHandler(kind Type, h Handlers) func(TaskArgs) (Result, error) {
	switch kind {
	case TypeDone:
		return h.Done
	case TypeUndo:
		return h.Undo
	case TypeDelete:
		return h.Delete
	case TypePause:
		return h.Pause
	case TypeResume:
		return h.Resume
	case TypeSnooze:
		return h.Snooze
	default:
		return nil
	}
}

func missing(kind Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", kind)}
}
