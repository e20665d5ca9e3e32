package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// dmenuLikeBackend pipes items to rofi or dmenu. rofi reports the chosen row
// index; dmenu echoes the label back.
type dmenuLikeBackend struct {
	command string
	rofi    bool
}

func (b *dmenuLikeBackend) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	input, selected := b.formatInput(items)
	cmd := exec.Command(b.command, b.buildArgs(prompt, message, selected)...)
	cmd.Stdin = strings.NewReader(input)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", b.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", b.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return b.parseSelection(selection, items)
}

func (b *dmenuLikeBackend) buildArgs(prompt, message string, selected int) []string {
	if !b.rofi {
		args := []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}

	// Index output keeps selection parsing independent of labels.
	args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
	if prompt != "" {
		args = append(args, "-p", prompt)
	}
	if selected >= 0 {
		args = append(args, "-a", strconv.Itoa(selected), "-selected-row", strconv.Itoa(selected))
	}
	if message != "" {
		args = append(args, "-mesg", message)
	}
	return args
}

// formatInput renders one line per item and returns the row to preselect:
// the first active item, else the first selectable one, else -1.
func (b *dmenuLikeBackend) formatInput(items []Item) (string, int) {
	lines := make([]string, len(items))
	selected, firstSelectable := -1, -1
	for i, item := range items {
		lines[i] = b.formatItem(item)
		if item.IsHeader {
			continue
		}
		if firstSelectable == -1 {
			firstSelectable = i
		}
		if item.IsActive && selected == -1 {
			selected = i
		}
	}
	if selected == -1 {
		selected = firstSelectable
	}
	return strings.Join(lines, "\n"), selected
}

func (b *dmenuLikeBackend) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if !b.rofi {
		return display
	}

	display = html.EscapeString(display)
	// rofi row properties: a single NUL, then key/value pairs split by \x1f.
	var attrs []string
	if item.IsHeader {
		display = "<b>" + display + "</b>"
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (b *dmenuLikeBackend) parseSelection(selection string, items []Item) (Item, error) {
	if b.rofi {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if !item.IsHeader && sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
