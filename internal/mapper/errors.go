package mapper

import (
	"errors"
	"fmt"
)

// Row-level failures. They are returned wrapped in a *RowError; the row is
// skipped and the import continues.
var (
	ErrOrphan           = errors.New("parent not found earlier in the file")
	ErrDuplicateKey     = errors.New("code appears more than once in the file")
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrUnknownType      = errors.New("unknown question type")
	ErrMissingCode      = errors.New("code is empty")
	ErrWrongChild       = errors.New("row kind not allowed below this question type")
	ErrUnknownKey       = errors.New("no entity with this code")
	ErrInvalidValue     = errors.New("invalid cell value")
	ErrMalformedOptions = errors.New("attribute cell is not valid JSON")
	ErrSaveFailed       = errors.New("save failed")
)

// RowError ties a failure to the sheet row it came from.
type RowError struct {
	Line int
	Kind string
	Code string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s %s): %v", e.Line, e.Kind, e.Code, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// UserMessage is the operator-facing description of a row failure.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Stable reference, e.g. ROW001
}

type errorEntry struct {
	err error
	msg UserMessage
}

// catalogue is matched in order with errors.Is; the first hit wins.
var catalogue = []errorEntry{
	{ErrOrphan, UserMessage{
		Message: "The row has no parent above it",
		Action:  "Place sub-question and answer rows below their question, and questions below a group",
		Code:    "ROW001",
	}},
	{ErrDuplicateKey, UserMessage{
		Message: "The same code is used twice in one scope",
		Action:  "Give every group, question, sub-question and answer a unique code",
		Code:    "ROW002",
	}},
	{ErrInvalidAttribute, UserMessage{
		Message: "An attribute value does not fit its type",
		Action:  "Check the options cells against the help sheet",
		Code:    "ROW003",
	}},
	{ErrUnknownType, UserMessage{
		Message: "The question type is not known",
		Action:  "Use one of the type codes listed on the help sheet",
		Code:    "ROW004",
	}},
	{ErrMissingCode, UserMessage{
		Message: "The code cell is empty",
		Action:  "Fill in the code column",
		Code:    "ROW005",
	}},
	{ErrWrongChild, UserMessage{
		Message: "This question type does not take rows of this kind",
		Action:  "Remove the row or change the question type",
		Code:    "ROW006",
	}},
	{ErrUnknownKey, UserMessage{
		Message: "The referenced group or question does not exist",
		Action:  "Import the questions file first or correct the code",
		Code:    "ROW007",
	}},
	{ErrInvalidValue, UserMessage{
		Message: "A cell holds a value that is not allowed",
		Action:  "Correct the value and import again",
		Code:    "ROW008",
	}},
	{ErrMalformedOptions, UserMessage{
		Message: "An options cell could not be read as JSON",
		Action:  "Fix the JSON or import without strict mode",
		Code:    "ROW009",
	}},
	{ErrSaveFailed, UserMessage{
		Message: "The row could not be saved",
		Action:  "Check the server log for details",
		Code:    "ROW010",
	}},
}

// MapError returns the user message for a row failure.
func MapError(err error) UserMessage {
	for _, e := range catalogue {
		if errors.Is(err, e.err) {
			return e.msg
		}
	}
	return UserMessage{
		Message: "The row could not be processed",
		Action:  "Check the row against the help sheet",
		Code:    "ROW000",
	}
}
