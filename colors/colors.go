package colors

import "os"

// COLOR is an ANSI escape prefix. Printing through a COLOR resets the terminal afterwards.
type COLOR string

const (
	RESET COLOR = "\033[0m"
	BOLD  COLOR = "\033[1m"

	RED    COLOR = "\033[31m"
	GREEN  COLOR = "\033[32m"
	YELLOW COLOR = "\033[33m"
	BLUE   COLOR = "\033[34m"
	PURPLE COLOR = "\033[35m"
	CYAN   COLOR = "\033[36m"
	WHITE  COLOR = "\033[37m"
	GREY   COLOR = "\033[90m"
	ORANGE COLOR = "\033[38;5;208m"

	BOLD_RED    COLOR = "\033[1;31m"
	BOLD_GREEN  COLOR = "\033[1;32m"
	BOLD_YELLOW COLOR = "\033[1;33m"
	BOLD_BLUE   COLOR = "\033[1;34m"
	BOLD_CYAN   COLOR = "\033[1;36m"
)

// Enabled reports whether escapes are written at all. NO_COLOR turns them off.
var Enabled = os.Getenv("NO_COLOR") == ""

func (c COLOR) prefix() string {
	if !Enabled {
		return ""
	}
	return string(c)
}

func (c COLOR) suffix() string {
	if !Enabled {
		return ""
	}
	return string(RESET)
}
