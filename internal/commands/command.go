package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/nudge/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeUndo    Type = "undo"
	TypeDelete  Type = "delete"
	TypePause   Type = "pause"
	TypeResume  Type = "resume"
	TypeRetime  Type = "retime"
	TypeSnooze  Type = "snooze"
	TypeVisit   Type = "visit"
	TypeUnvisit Type = "unvisit"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

// DefaultVisitTime is used when a visit is given as a bare date.
var DefaultVisitTime = model.TimeOfDay{Hour: 9}

const (
	visitDateLayout     = "2006-01-02"
	visitDateTimeLayout = "2006-01-02T15:04"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	At    model.TimeOfDay
	Title string
}

// TaskArgs names one task by id, id prefix, or title.
type TaskArgs struct {
	Target string
}

type RetimeArgs struct {
	Target string
	At     model.TimeOfDay
}

type VisitArgs struct {
	At    time.Time
	Title string
}

type UnvisitArgs struct {
	Target string
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Task    *TaskArgs
	Retime  *RetimeArgs
	Visit   *VisitArgs
	Unvisit *UnvisitArgs
}

func Parse(input string) (Command, error) {
	return ParseIn(input, time.Local)
}

// ParseIn reads visit dates in loc.
func ParseIn(input string, loc *time.Location) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeUndo, TypeDelete, TypePause, TypeResume, TypeSnooze:
		return parseTask(input, head, args)
	case TypeRetime:
		return parseRetime(input, args)
	case TypeVisit:
		return parseVisit(input, args, loc)
	case TypeUnvisit:
		return parseUnvisit(input, args)
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires HH:MM and a title"}
	}
	at, err := model.ParseTimeOfDay(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid time %q, want HH:MM", args[0])}
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{At: at, Title: title}}, nil
}

func parseTask(raw string, kind Type, args []string) (Command, error) {
	target := strings.TrimSpace(strings.Join(args, " "))
	if target == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a task", kind)}
	}
	return Command{Type: kind, Raw: raw, Task: &TaskArgs{Target: target}}, nil
}

// parseRetime takes the time from the last word so titles may contain spaces.
func parseRetime(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "retime requires a task and HH:MM"}
	}
	last := args[len(args)-1]
	at, err := model.ParseTimeOfDay(last)
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid time %q, want HH:MM", last)}
	}
	target := strings.Join(args[:len(args)-1], " ")
	return Command{Type: TypeRetime, Raw: raw, Retime: &RetimeArgs{Target: target, At: at}}, nil
}

func parseVisit(raw string, args []string, loc *time.Location) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "visit requires YYYY-MM-DD[THH:MM]"}
	}
	at, err := parseVisitTime(args[0], loc)
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid visit date %q, want YYYY-MM-DD[THH:MM]", args[0])}
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	return Command{Type: TypeVisit, Raw: raw, Visit: &VisitArgs{At: at, Title: title}}, nil
}

func parseVisitTime(value string, loc *time.Location) (time.Time, error) {
	if strings.Contains(value, "T") {
		return time.ParseInLocation(visitDateTimeLayout, value, loc)
	}
	day, err := time.ParseInLocation(visitDateLayout, value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return DefaultVisitTime.On(day)
}

func parseUnvisit(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "unvisit requires a visit id"}
	}
	return Command{Type: TypeUnvisit, Raw: raw, Unvisit: &UnvisitArgs{Target: args[0]}}, nil
}
