package prompt

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// ScreenFactory creates the screen an input box draws on.
type ScreenFactory func() (tcell.Screen, error)

// InputBox is a full screen single line editor.
type InputBox struct {
	newScreen ScreenFactory

	// ready is called once the box is drawn; tests inject keys here.
	ready func(tcell.Screen)
}

// InputBoxOption configures an InputBox.
type InputBoxOption func(*InputBox)

// WithScreen replaces the screen factory.
func WithScreen(factory ScreenFactory) InputBoxOption {
	return func(b *InputBox) {
		if factory != nil {
			b.newScreen = factory
		}
	}
}

// NewInputBox creates an input box on the process terminal.
func NewInputBox(opts ...InputBoxOption) *InputBox {
	b := &InputBox{newScreen: tcell.NewScreen}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	promptStyle      = tcell.StyleDefault.Bold(true)
	inputStyle       = tcell.StyleDefault
	placeHolderStyle = tcell.StyleDefault.Dim(true)
	hintStyle        = tcell.StyleDefault.Dim(true)
)

// ShowInputBox takes over the screen until Enter (accept) or Escape /
// Ctrl-C (cancel) is pressed, or ctx is done.
func (b *InputBox) ShowInputBox(ctx context.Context, opts InputBoxOptions) (string, bool, error) {
	screen, err := b.newScreen()
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrNoTerminal, err)
	}
	if err := screen.Init(); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrNoTerminal, err)
	}
	defer screen.Fini()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
		case <-stop:
		}
	}()

	value := []rune(opts.Value)
	draw(screen, opts, value)
	if b.ready != nil {
		b.ready(screen)
	}

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return "", false, nil
		case *tcell.EventInterrupt:
			return "", false, ctx.Err()
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEnter:
				return string(value), true, nil
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return "", false, nil
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if len(value) > 0 {
					value = value[:len(value)-1]
				}
			case tcell.KeyCtrlU:
				value = value[:0]
			case tcell.KeyRune:
				value = append(value, ev.Rune())
			}
		}
		draw(screen, opts, value)
	}
}

func draw(screen tcell.Screen, opts InputBoxOptions, value []rune) {
	screen.Clear()
	width, _ := screen.Size()

	putString(screen, 0, 0, width, opts.Prompt, promptStyle)
	putString(screen, 0, 1, width, "> ", inputStyle)
	if len(value) == 0 {
		putString(screen, 2, 1, width, opts.PlaceHolder, placeHolderStyle)
	} else {
		putString(screen, 2, 1, width, string(value), inputStyle)
	}
	putString(screen, 0, 3, width, "Enter to confirm, Esc to cancel", hintStyle)

	screen.ShowCursor(2+len(value), 1)
	screen.Show()
}

func putString(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	for _, r := range s {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
