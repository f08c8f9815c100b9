package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	fcolor "github.com/fatih/color"
)

// MessageType selects the symbol and color of a message.
type MessageType int

const (
	// ErrorType is a red line starting with ✗.
	ErrorType MessageType = iota
	// WarningType is a yellow line starting with ⚠.
	WarningType
	// ActivityType is a plain line starting with ►.
	ActivityType
	// GenerateType is a plain line starting with ✚, used when files are written.
	GenerateType
	// SuccessType is a green line starting with ✔.
	SuccessType
	// InfoType is a blue line starting with ℹ.
	InfoType
	// TitleType is a bold stage title starting with an emoji.
	TitleType
)

const defaultTitleEmoji = "ℹ️"

// Message is a single notification.
type Message struct {
	Type    MessageType
	Content string
	// Args are applied to Content with fmt.Sprintf when present.
	Args []any
	// Timer adds a timing block below SuccessType messages.
	Timer timer.Timer
	// Emoji replaces the default emoji of TitleType messages.
	Emoji string
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

type style struct {
	symbol string
	color  *fcolor.Color
}

//nolint:gochecknoglobals // immutable lookup table
var styles = map[MessageType]style{
	ErrorType:    {symbol: "✗ ", color: fcolor.New(fcolor.FgRed)},
	WarningType:  {symbol: "⚠ ", color: fcolor.New(fcolor.FgYellow)},
	ActivityType: {symbol: "► ", color: fcolor.New(fcolor.Reset)},
	GenerateType: {symbol: "✚ ", color: fcolor.New(fcolor.Reset)},
	SuccessType:  {symbol: "✔ ", color: fcolor.New(fcolor.FgGreen)},
	InfoType:     {symbol: "ℹ ", color: fcolor.New(fcolor.FgBlue)},
	TitleType:    {symbol: "", color: fcolor.New(fcolor.Reset, fcolor.Bold)},
}

func styleFor(msgType MessageType) style {
	s, ok := styles[msgType]
	if !ok {
		return style{color: fcolor.New(fcolor.Reset)}
	}

	return s
}

// WriteMessage renders msg to its writer.
func WriteMessage(msg Message) {
	writer := msg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	content := msg.Content
	if len(msg.Args) > 0 {
		content = fmt.Sprintf(msg.Content, msg.Args...)
	}

	s := styleFor(msg.Type)

	if msg.Type == TitleType {
		emoji := msg.Emoji
		if emoji == "" {
			emoji = defaultTitleEmoji
		}

		printLine(writer, s.color, emoji+" "+content)

		return
	}

	printLine(writer, s.color, s.symbol+indentContinuation(content, s.symbol))

	if msg.Type == SuccessType && msg.Timer != nil {
		total, stage := msg.Timer.GetTiming()
		printLine(writer, s.color, "⏲ current: "+stage.String())
		printLine(writer, s.color, "  total:  "+total.String())
	}
}

// Errorf writes an error line.
func Errorf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ErrorType, Content: format, Args: args, Writer: writer})
}

// Warningf writes a warning line.
func Warningf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: WarningType, Content: format, Args: args, Writer: writer})
}

// Activityf writes an activity line.
func Activityf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ActivityType, Content: format, Args: args, Writer: writer})
}

// Generatef writes a file generation line.
func Generatef(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: GenerateType, Content: format, Args: args, Writer: writer})
}

// Successf writes a success line.
func Successf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Writer: writer})
}

// SuccessWithTimerf writes a success line followed by the timing block of tmr.
func SuccessWithTimerf(writer io.Writer, tmr timer.Timer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Timer: tmr, Writer: writer})
}

// Infof writes an info line.
func Infof(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: InfoType, Content: format, Args: args, Writer: writer})
}

// Titlef writes a stage title.
func Titlef(writer io.Writer, emoji, format string, args ...any) {
	WriteMessage(Message{
		Type:    TitleType,
		Content: fmt.Sprintf(format, args...),
		Emoji:   emoji,
		Writer:  writer,
	})
}

func printLine(writer io.Writer, color *fcolor.Color, line string) {
	_, err := color.Fprintln(writer, line)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "notify: failed to print message: %v\n", err)
	}
}

// indentContinuation aligns every line after the first with the text after symbol.
func indentContinuation(content, symbol string) string {
	if symbol == "" || !strings.Contains(content, "\n") {
		return content
	}

	indent := strings.Repeat(" ", len([]rune(symbol)))
	lines := strings.Split(content, "\n")

	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}

	return strings.Join(lines, "\n")
}
