package view

import (
	"fmt"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	flashSessionName = "flash-session"
	flashKeySuccess  = "success"
	flashKeyError    = "error"
)

// FlashMessage is a single flash message with its kind.
type FlashMessage struct {
	Kind string
	Text string
}

// FlashData holds the flash messages read from the session.
type FlashData struct {
	Success  []string
	Error    []string
	Messages []FlashMessage
}

// setFlash sets a flash message in the session.
func setFlash(c echo.Context, key, message string) {
	sess, err := session.Get(flashSessionName, c)
	if err != nil {
		c.Logger().Warnf("flash session unavailable: %v", err)
		return
	}
	sess.AddFlash(message, key)
	_ = sess.Save(c.Request(), c.Response())
}

// SetFlashSuccess sets a success flash message.
func SetFlashSuccess(c echo.Context, message string) {
	setFlash(c, flashKeySuccess, message)
}

// SetFlashError sets an error flash message.
func SetFlashError(c echo.Context, message string) {
	setFlash(c, flashKeyError, message)
}

// GetFlashData retrieves and clears flash messages from the session.
func GetFlashData(c echo.Context) FlashData {
	var data FlashData

	sess, err := session.Get(flashSessionName, c)
	if err != nil {
		return data
	}

	// Flashes() reads and clears in one step.
	successFlashes := sess.Flashes(flashKeySuccess)
	errorFlashes := sess.Flashes(flashKeyError)
	if len(successFlashes) == 0 && len(errorFlashes) == 0 {
		return data
	}
	_ = sess.Save(c.Request(), c.Response())

	for _, f := range successFlashes {
		text := fmt.Sprint(f)
		data.Success = append(data.Success, text)
		data.Messages = append(data.Messages, FlashMessage{Kind: flashKeySuccess, Text: text})
	}
	for _, f := range errorFlashes {
		text := fmt.Sprint(f)
		data.Error = append(data.Error, text)
		data.Messages = append(data.Messages, FlashMessage{Kind: flashKeyError, Text: text})
	}
	return data
}
