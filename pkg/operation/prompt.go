package operation

import (
	"context"
	"errors"

	"github.com/ncruces/zenity"
)

type prompt struct{}

// Prompt is the exported instance.
var Prompt prompt

// Confirm asks the user a yes/no question. Cancelling the dialog is a "no",
// not an error.
func (p *prompt) Confirm(ctx context.Context, title, text string) (bool, error) {
	err := zenity.Question(text,
		zenity.Context(ctx),
		zenity.Title(title),
		zenity.OKLabel("Allow"),
		zenity.CancelLabel("Deny"),
		zenity.QuestionIcon,
	)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, zenity.ErrCanceled):
		return false, nil
	default:
		return false, err
	}
}

// Inform shows a blocking message box.
func (p *prompt) Inform(ctx context.Context, title, text string) error {
	err := zenity.Info(text,
		zenity.Context(ctx),
		zenity.Title(title),
		zenity.InfoIcon,
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	return err
}
