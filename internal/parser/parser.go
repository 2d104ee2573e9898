package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/August26/proxytrial/internal/model"
)

// LoadUnits reads the candidate list and turns it into trial units.
// A non-empty path is read with LoadFromFile and taken as written.
// Otherwise candidates come from stdin via ReadInteractive, and lines
// without a port are expanded to the common proxy ports.
func LoadUnits(path string, stdin io.Reader) ([]model.Unit, error) {
	if path != "" {
		candidates, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		return BuildUnits(candidates), nil
	}

	lines, err := ReadInteractive(stdin)
	if err != nil {
		return nil, err
	}
	var candidates []string
	for _, l := range lines {
		candidates = append(candidates, ExpandPorts(l)...)
	}
	return BuildUnits(candidates), nil
}

// LoadFromFile reads one candidate per line from path.
//
// Empty lines and lines starting with '#' are ignored. No port
// inference is done in file mode: lines are taken as written.
func LoadFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan input file: %w", err)
	}
	return out, nil
}

// ReadInteractive collects candidates line by line until the first
// empty or whitespace-only line, or EOF. Anything after the blank
// line is left unread.
func ReadInteractive(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			break
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read standard input: %w", err)
	}
	return out, nil
}
