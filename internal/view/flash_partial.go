package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// FlashPartial renders flash messages as a list of dismissible notices.
func FlashPartial(messages []FlashMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(messages) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, `<div class="flash-messages" role="status">`); err != nil {
			return err
		}
		for _, m := range messages {
			_, err := io.WriteString(w, `<p class="flash flash-`+templ.EscapeString(m.Kind)+`">`+
				templ.EscapeString(m.Text)+`</p>`)
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
