package cli

import (
	"bufio"
	"os"
	"strings"

	"github.com/fatih/color"
)

// confirmStdin asks a yes/no question on stderr and reads the answer from
// stdin. Anything but an explicit yes is a no.
func confirmStdin(prompt string) bool {
	color.New(color.FgYellow).Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}
