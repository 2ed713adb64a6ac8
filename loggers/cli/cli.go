package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	color2 "github.com/fatih/color"
	"github.com/mattn/go-colorable"
)

var Default = New(os.Stderr, true)

var (
	bold    = color2.New(color2.Bold)
	boldred = color2.New(color2.Bold, color2.FgRed)
	faint   = color2.New(color2.Faint)
)

var Strings = [...]string{
	log.DebugLevel: "DEBUG",
	log.InfoLevel:  " INFO",
	log.WarnLevel:  " WARN",
	log.ErrorLevel: "ERROR",
	log.FatalLevel: "FATAL",
}

type Handler struct {
	mu      sync.Mutex
	Writer  io.Writer
	Padding int
}

func New(w io.Writer, useColors bool) *Handler {
	if f, ok := w.(*os.File); ok && useColors {
		return &Handler{Writer: colorable.NewColorable(f), Padding: 2}
	}
	return &Handler{Writer: colorable.NewNonColorable(w), Padding: 2}
}

// HandleLog implements log.Handler. The subsystem field is printed in front
// of the message, every other field follows it as key=value pairs. Errors
// are printed with their stack trace below the entry.
func (h *Handler) HandleLog(e *log.Entry) error {
	color := cli.Colors[e.Level]
	level := Strings[e.Level]
	names := e.Fields.Names()

	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(h.Writer, "%s: [%s] ", bold.Sprintf("%*s", h.Padding+1, level), time.Now().Format(time.StampMilli))
	if s, ok := e.Fields.Get("subsystem").(string); ok && s != "" {
		faint.Fprintf(h.Writer, "%s: ", s)
	}
	color.Fprintf(h.Writer, "%-25s", e.Message)

	var stack error
	for _, name := range names {
		switch name {
		case "subsystem":
			continue
		case "error":
			if err, ok := e.Fields.Get(name).(error); ok {
				stack = err
			}
		}
		fmt.Fprintf(h.Writer, " %s=%v", color.Sprint(name), e.Fields.Get(name))
	}
	fmt.Fprintln(h.Writer)

	if stack != nil && e.Level >= log.WarnLevel {
		// Attach the stacktrace if it is missing at this point, but don't point
		// it specifically to this line since that is irrelevant.
		stack = errors.WithStackDepthIf(stack, 1)
		fmt.Fprintf(h.Writer, "\n%s\n%+v\n\n", boldred.Sprintf("Stacktrace:"), stack)
	}

	return nil
}
